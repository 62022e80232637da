package page

import "testing"

func TestMatchOption(t *testing.T) {
	yesNo := []Option{{Text: "Select...", Value: ""}, {Text: "Yes", Value: "Y"}, {Text: "No", Value: "N"}}
	sizes := []Option{{Text: "1-10 employees", Value: "small"}, {Text: "11-500 employees", Value: "medium"}}

	tests := []struct {
		name   string
		opts   []Option
		answer string
		want   string
		ok     bool
	}{
		{"exact text", yesNo, "Yes", "Y", true},
		{"case insensitive", yesNo, "nO", "N", true},
		{"answer contains option", yesNo, "no thanks", "N", true},
		{"option word at end", yesNo, "My answer is yes.", "Y", true},
		{"word inside word", yesNo, "I know Go", "", false},
		{"longer answer with word inside word", yesNo, "I know Python and Go well", "", false},
		{"prefix of a word", yesNo, "Not at this time", "", false},
		{"multi-word option", sizes, "we have 1-10 employees today", "small", true},
		{"option contains answer", sizes, "11-500", "medium", true},
		{"matches value", sizes, "SMALL", "small", true},
		{"first match wins", sizes, "employees", "small", true},
		{"no match", sizes, "enterprise", "", false},
		{"blank answer", yesNo, "  ", "", false},
		{"no options", nil, "Yes", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := matchOption(tt.opts, tt.answer)
			if ok != tt.ok || got.Value != tt.want {
				t.Errorf("matchOption(%q) = %q, %v; want %q, %v", tt.answer, got.Value, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestContainsWords(t *testing.T) {
	tests := []struct {
		s, sub string
		want   bool
	}{
		{"no thanks", "no", true},
		{"know", "no", false},
		{"i know, no", "no", true},
		{"nono", "no", false},
		{"(no)", "no", true},
		{"yes", "", false},
		{"café no", "no", true},
		{"écho", "cho", false},
	}
	for _, tt := range tests {
		if got := containsWords(tt.s, tt.sub); got != tt.want {
			t.Errorf("containsWords(%q, %q) = %v, want %v", tt.s, tt.sub, got, tt.want)
		}
	}
}

func TestApplyAnswer(t *testing.T) {
	doc := mustParse(t, `<form>
<input id="text">
<input id="upload" type="file">
<button id="go">Go</button>
<select id="s"><option value="opt1">Alpha</option></select>
</form>`, "")

	tests := []struct {
		sel    string
		answer string
		want   bool
	}{
		{"#text", "hello", true},
		{"#upload", "cv.pdf", false},
		{"#go", "click", false},
		{"#s", "alpha", true},
		{"#s", "omega", false},
	}
	for _, tt := range tests {
		el, ok := doc.Query(tt.sel)
		if !ok {
			t.Fatalf("%s not found", tt.sel)
		}
		if got := applyAnswer(el, tt.answer); got != tt.want {
			t.Errorf("applyAnswer(%s, %q) = %v, want %v", tt.sel, tt.answer, got, tt.want)
		}
	}
	if el, _ := doc.Query("#text"); el.Value() != "hello" {
		t.Errorf("text value = %q", el.Value())
	}
}
