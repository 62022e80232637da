package page

import "strings"

// Kind classifies a page.
type Kind string

const (
	KindUnknown         Kind = ""
	KindJobListing      Kind = "job-listing"
	KindApplicationForm Kind = "application-form"
)

// Label is the short user-facing name of a detected kind.
func (k Kind) Label() string {
	switch k {
	case KindJobListing:
		return "Job Page Detected"
	case KindApplicationForm:
		return "Application Form Detected"
	}
	return ""
}

var (
	listingTitleWords = []string{"job", "career", "position", "opening", "hiring", "employment"}
	listingURLWords   = []string{"jobs", "careers", "positions", "hiring"}
	formWords         = []string{"apply", "application", "submit", "form"}
)

// Detect guesses the page kind from its title, URL and forms. Listing
// keywords win over application keywords.
func Detect(doc Document) Kind {
	url := doc.URL()
	title := strings.ToLower(doc.Title())

	if containsAny(title, listingTitleWords) || containsAny(url, listingURLWords) {
		return KindJobListing
	}
	if (containsAny(title, formWords) || containsAny(url, formWords)) && len(doc.QueryAll("form")) > 0 {
		return KindApplicationForm
	}
	return KindUnknown
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
