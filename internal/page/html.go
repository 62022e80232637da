package page

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

const highlightStyle = "border: 2px solid #10b981"

// HTMLDocument is a Document over parsed HTML. Dispatched events are
// recorded and delivered to listeners registered with OnEvent. All methods
// are safe for concurrent use; highlight timers mutate the tree from their
// own goroutines.
type HTMLDocument struct {
	mu        sync.Mutex
	doc       *goquery.Document
	url       string
	listeners []func(Event)
	events    []Event
	pending   map[*html.Node]*highlight
	logger    *slog.Logger
}

type highlight struct {
	timer    *time.Timer
	style    string
	hadStyle bool
}

// NewHTMLDocument parses r as the page located at pageURL.
func NewHTMLDocument(r io.Reader, pageURL string) (*HTMLDocument, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}
	return newHTMLDocument(doc, pageURL), nil
}

// ParseHTML parses markup held in a string.
func ParseHTML(markup, pageURL string) (*HTMLDocument, error) {
	return NewHTMLDocument(strings.NewReader(markup), pageURL)
}

func newHTMLDocument(doc *goquery.Document, pageURL string) *HTMLDocument {
	return &HTMLDocument{
		doc:     doc,
		url:     pageURL,
		pending: make(map[*html.Node]*highlight),
		logger:  slog.Default(),
	}
}

func (d *HTMLDocument) URL() string { return d.url }

func (d *HTMLDocument) Title() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return collapseSpace(d.doc.Find("title").First().Text())
}

func (d *HTMLDocument) matcher(selector string) (cascadia.Selector, bool) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		d.logger.Debug("invalid selector", "selector", selector, "error", err)
		return nil, false
	}
	return sel, true
}

func (d *HTMLDocument) Query(selector string) (Element, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	m, ok := d.matcher(selector)
	if !ok {
		return nil, false
	}
	found := d.doc.FindMatcher(m)
	if found.Length() == 0 {
		return nil, false
	}
	return &htmlElement{d: d, n: found.Nodes[0]}, true
}

func (d *HTMLDocument) QueryAll(selector string) []Element {
	d.mu.Lock()
	defer d.mu.Unlock()

	m, ok := d.matcher(selector)
	if !ok {
		return nil
	}
	found := d.doc.FindMatcher(m)
	out := make([]Element, 0, found.Length())
	for _, n := range found.Nodes {
		out = append(out, &htmlElement{d: d, n: n})
	}
	return out
}

func (d *HTMLDocument) RemoveAll(selector string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	m, ok := d.matcher(selector)
	if !ok {
		return 0
	}
	found := d.doc.FindMatcher(m)
	n := found.Length()
	found.Remove()
	return n
}

// Clone copies the tree. Listeners, recorded events and pending highlights
// stay with the original.
func (d *HTMLDocument) Clone() Document {
	d.mu.Lock()
	defer d.mu.Unlock()

	c := newHTMLDocument(goquery.CloneDocument(d.doc), d.url)
	c.logger = d.logger
	return c
}

func (d *HTMLDocument) Body() Element {
	d.mu.Lock()
	defer d.mu.Unlock()

	if body := d.doc.Find("body").First(); body.Length() > 0 {
		return &htmlElement{d: d, n: body.Nodes[0]}
	}
	return &htmlElement{d: d, n: d.doc.Nodes[0]}
}

// OnEvent registers fn to receive every dispatched event.
func (d *HTMLDocument) OnEvent(fn func(Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, fn)
}

// Events returns the events dispatched so far.
func (d *HTMLDocument) Events() []Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Event(nil), d.events...)
}

// Settle ends every pending highlight immediately.
func (d *HTMLDocument) Settle() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for n, h := range d.pending {
		h.timer.Stop()
		d.restore(n, h)
	}
}

// Render settles pending highlights and writes the page as HTML.
func (d *HTMLDocument) Render(w io.Writer) error {
	d.Settle()
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.doc.Nodes[0])
}

// restore must be called with d.mu held.
func (d *HTMLDocument) restore(n *html.Node, h *highlight) {
	if h.hadStyle {
		setAttr(n, "style", h.style)
	} else {
		removeAttr(n, "style")
	}
	delete(d.pending, n)
}

type htmlElement struct {
	d *HTMLDocument
	n *html.Node
}

func (e *htmlElement) Tag() string { return e.n.Data }

func (e *htmlElement) Attr(name string) (string, bool) {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	return getAttr(e.n, name)
}

func (e *htmlElement) Text() string {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	return innerText(e.n)
}

func (e *htmlElement) OuterHTML() (string, error) {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	return goquery.OuterHtml(goquery.NewDocumentFromNode(e.n).Selection)
}

func (e *htmlElement) Value() string {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	return e.value()
}

func (e *htmlElement) value() string {
	switch e.n.Data {
	case "textarea":
		return textContent(e.n)
	case "select":
		opts := descendants(e.n, "option")
		for _, o := range opts {
			if hasAttr(o, "selected") {
				return optionValue(o)
			}
		}
		if len(opts) > 0 {
			return optionValue(opts[0])
		}
		return ""
	}
	v, _ := getAttr(e.n, "value")
	return v
}

// SetValue sets the value property. For a select it selects the first
// option carrying value; an unknown value leaves the select unchanged.
func (e *htmlElement) SetValue(v string) {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()

	switch e.n.Data {
	case "textarea":
		setTextContent(e.n, v)
	case "select":
		opts := descendants(e.n, "option")
		var target *html.Node
		for _, o := range opts {
			if optionValue(o) == v {
				target = o
				break
			}
		}
		if target == nil {
			return
		}
		for _, o := range opts {
			removeAttr(o, "selected")
		}
		setAttr(target, "selected", "")
	default:
		setAttr(e.n, "value", v)
	}
}

func (e *htmlElement) Checked() bool {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	return hasAttr(e.n, "checked")
}

// SetChecked toggles the checked state. Checking a radio button unchecks
// the other radios of its group.
func (e *htmlElement) SetChecked(checked bool) {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()

	if !checked {
		removeAttr(e.n, "checked")
		return
	}
	if typ, _ := getAttr(e.n, "type"); strings.EqualFold(typ, "radio") {
		if name, ok := getAttr(e.n, "name"); ok && name != "" {
			for _, other := range descendants(e.d.doc.Nodes[0], "input") {
				otherType, _ := getAttr(other, "type")
				otherName, _ := getAttr(other, "name")
				if other != e.n && strings.EqualFold(otherType, "radio") && otherName == name {
					removeAttr(other, "checked")
				}
			}
		}
	}
	setAttr(e.n, "checked", "")
}

func (e *htmlElement) Options() []Option {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()

	var out []Option
	for _, o := range descendants(e.n, "option") {
		out = append(out, Option{
			Text:     collapseSpace(textContent(o)),
			Value:    optionValue(o),
			Selected: hasAttr(o, "selected"),
		})
	}
	return out
}

func (e *htmlElement) Dispatch(eventType string) {
	e.d.mu.Lock()
	ev := Event{Type: eventType, Tag: e.n.Data, Value: e.value()}
	ev.ID, _ = getAttr(e.n, "id")
	ev.Name, _ = getAttr(e.n, "name")
	e.d.events = append(e.d.events, ev)
	listeners := slices.Clone(e.d.listeners)
	e.d.mu.Unlock()

	for _, fn := range listeners {
		fn(ev)
	}
}

// Highlight adds a green border for d, then restores the previous style.
func (e *htmlElement) Highlight(d time.Duration) {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()

	if h, ok := e.d.pending[e.n]; ok {
		h.timer.Stop()
		e.d.restore(e.n, h)
	}

	style, hadStyle := getAttr(e.n, "style")
	h := &highlight{style: style, hadStyle: hadStyle}
	if s := strings.TrimRight(strings.TrimSpace(style), ";"); s != "" {
		setAttr(e.n, "style", s+"; "+highlightStyle)
	} else {
		setAttr(e.n, "style", highlightStyle)
	}

	n := e.n
	h.timer = time.AfterFunc(d, func() {
		e.d.mu.Lock()
		defer e.d.mu.Unlock()
		if cur, ok := e.d.pending[n]; ok && cur == h {
			e.d.restore(n, h)
		}
	})
	e.d.pending[n] = h
}

// optionValue follows the DOM rule: the value attribute, else the text.
func optionValue(o *html.Node) string {
	if v, ok := getAttr(o, "value"); ok {
		return v
	}
	return collapseSpace(textContent(o))
}
