package page

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		url    string
		want   Kind
	}{
		{"title keyword", `<title>Backend Position - Acme</title>`, "https://acme.example/x", KindJobListing},
		{"url keyword", `<title>Acme</title>`, "https://acme.example/careers/42", KindJobListing},
		{"application form", `<title>Apply now</title><form></form>`, "https://acme.example/x", KindApplicationForm},
		{"form keyword without form", `<title>Apply now</title>`, "https://acme.example/x", KindUnknown},
		{"listing wins", `<title>Apply for this job</title><form></form>`, "https://acme.example/x", KindJobListing},
		{"unrelated", `<title>Recipes</title><form></form>`, "https://food.example/", KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, tt.markup, tt.url)
			if got := Detect(doc); got != tt.want {
				t.Errorf("Detect = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindLabel(t *testing.T) {
	if KindJobListing.Label() != "Job Page Detected" || KindApplicationForm.Label() != "Application Form Detected" || KindUnknown.Label() != "" {
		t.Error("unexpected labels")
	}
}
