// Package model defines the records exchanged between the page agent,
// the coordinator and the control panel.
package model

import (
	"strings"
	"time"
)

// Provider names an LLM vendor.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderXAI    Provider = "xai"
)

// ParseProvider normalises a provider name. ok is false for unknown vendors.
func ParseProvider(s string) (Provider, bool) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case ProviderOpenAI, ProviderXAI:
		return p, true
	}
	return Provider(s), false
}

// ProviderConfig is the user's provider selection and key. It travels with
// every request that needs the LLM.
type ProviderConfig struct {
	Provider Provider `json:"provider"`
	APIKey   string   `json:"apiKey"`
}

// JobRecord is a structured job posting.
type JobRecord struct {
	ID             string    `json:"id,omitempty"`
	Title          string    `json:"title"`
	Company        string    `json:"company"`
	Description    string    `json:"description"`
	Requirements   []string  `json:"requirements"`
	Location       string    `json:"location"`
	EmploymentType string    `json:"employmentType"`
	Salary         string    `json:"salary"`
	Technologies   []string  `json:"technologies"`
	ScrapedAt      time.Time `json:"scrapedAt,omitzero"`
	SourceURL      string    `json:"sourceUrl,omitempty"`

	// Fallback marks a record built from placeholders because the model
	// reply could not be parsed.
	Fallback bool `json:"fallback,omitempty"`
}

// DescriptionLimit is the maximum description length in runes.
const DescriptionLimit = 500

// FieldDescriptor is one form field as reported by form analysis.
type FieldDescriptor struct {
	Selector string `json:"selector"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Purpose  string `json:"purpose"`
	Required bool   `json:"required"`
}

// FilledField pairs a field with the answer generated for it.
type FilledField struct {
	FieldDescriptor
	Answer string `json:"answer"`
}

// FillResult summarises an auto-fill run.
type FillResult struct {
	FilledCount int `json:"filledCount"`
	TotalFields int `json:"totalFields"`
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n < 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
