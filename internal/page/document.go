// Package page scrapes job postings from, and auto-fills application forms
// on, a single loaded page. All page access goes through the Document and
// Element interfaces.
package page

import "time"

// Document is the page access surface used by the agent.
type Document interface {
	URL() string
	Title() string
	// Query returns the first element matching a CSS selector. Invalid
	// selectors match nothing.
	Query(selector string) (Element, bool)
	QueryAll(selector string) []Element
	// RemoveAll detaches every element matching selector and reports how
	// many were removed.
	RemoveAll(selector string) int
	// Clone returns an independent working copy.
	Clone() Document
	Body() Element
}

// Element is one element of a Document.
type Element interface {
	Tag() string
	Attr(name string) (string, bool)
	// Text is the rendered text of the element and its descendants.
	Text() string
	OuterHTML() (string, error)

	Value() string
	SetValue(v string)
	Checked() bool
	SetChecked(checked bool)
	Options() []Option

	// Dispatch notifies page listeners that the element changed.
	Dispatch(eventType string)
	// Highlight marks the element visibly for d.
	Highlight(d time.Duration)
}

// Option is one <option> of a select element.
type Option struct {
	Text     string
	Value    string
	Selected bool
}

// Event is a change notification dispatched on an element.
type Event struct {
	Type  string
	Tag   string
	ID    string
	Name  string
	Value string
}
