package page

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestPrompt(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes ", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"sure\n", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		p := Prompt{In: strings.NewReader(tt.input), Out: &out}

		got, err := p.Confirm(context.Background(), FillConsentMessage)
		if err != nil {
			t.Fatalf("Confirm(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if out.String() != FillConsentMessage+" [y/N] " {
			t.Errorf("prompt = %q", out.String())
		}
	}
}
