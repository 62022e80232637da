package page

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestHTMLDocument_Query(t *testing.T) {
	doc := mustParse(t, `<html><head><title>  Careers
 at Acme </title></head><body>
<div class="job">one</div><div class="job">two</div>
</body></html>`, "https://acme.example/careers")

	if got := doc.Title(); got != "Careers at Acme" {
		t.Errorf("Title = %q", got)
	}
	if got := doc.URL(); got != "https://acme.example/careers" {
		t.Errorf("URL = %q", got)
	}

	el, ok := doc.Query(".job")
	if !ok || collapseSpace(el.Text()) != "one" || el.Tag() != "div" {
		t.Fatalf("Query = %v, %v", el, ok)
	}
	if n := len(doc.QueryAll(".job")); n != 2 {
		t.Errorf("QueryAll = %d, want 2", n)
	}
	if _, ok := doc.Query("#nope"); ok {
		t.Error("Query matched a missing element")
	}
	if _, ok := doc.Query("div[[["); ok {
		t.Error("invalid selector matched")
	}
	if all := doc.QueryAll("div[[["); len(all) != 0 {
		t.Errorf("QueryAll with invalid selector = %d", len(all))
	}
}

func TestHTMLDocument_RemoveAndClone(t *testing.T) {
	doc := mustParse(t, `<html><body><p>keep</p><script>drop()</script><aside class="ad">ad</aside></body></html>`, "")

	clone := doc.Clone()
	if n := clone.RemoveAll("script, .ad"); n != 2 {
		t.Errorf("RemoveAll = %d, want 2", n)
	}
	if _, ok := clone.Query("script"); ok {
		t.Error("script still present in clone")
	}
	if _, ok := doc.Query("script"); !ok {
		t.Error("removing from the clone changed the original")
	}
	if n := doc.RemoveAll("table"); n != 0 {
		t.Errorf("RemoveAll of nothing = %d", n)
	}
}

func TestHTMLElement_Text(t *testing.T) {
	doc := mustParse(t, `<html><body><h2>Role</h2><p>Line one<br>Line two</p><p hidden>secret</p><style>p{}</style></body></html>`, "")

	got := collapseSpace(doc.Body().Text())
	if got != "Role Line one Line two" {
		t.Errorf("Text = %q", got)
	}
}

func TestHTMLElement_Values(t *testing.T) {
	doc := mustParse(t, `<form>
<input id="email" type="email" value="old@example.com">
<textarea id="bio">draft</textarea>
<select id="level"><option>Junior</option><option value="sr" selected>Senior</option></select>
<select id="empty"></select>
</form>`, "")

	email, _ := doc.Query("#email")
	bio, _ := doc.Query("#bio")
	level, _ := doc.Query("#level")
	empty, _ := doc.Query("#empty")

	if email.Value() != "old@example.com" || bio.Value() != "draft" || level.Value() != "sr" || empty.Value() != "" {
		t.Fatalf("values = %q %q %q %q", email.Value(), bio.Value(), level.Value(), empty.Value())
	}

	email.SetValue("jane@example.com")
	bio.SetValue("Hello <world>")
	level.SetValue("Junior")
	if email.Value() != "jane@example.com" || bio.Value() != "Hello <world>" || level.Value() != "Junior" {
		t.Errorf("after set = %q %q %q", email.Value(), bio.Value(), level.Value())
	}

	level.SetValue("principal")
	if level.Value() != "Junior" {
		t.Errorf("unknown option changed the select to %q", level.Value())
	}

	opts := level.Options()
	if len(opts) != 2 || opts[0] != (Option{Text: "Junior", Value: "Junior", Selected: true}) || opts[1].Value != "sr" || opts[1].Selected {
		t.Errorf("options = %+v", opts)
	}
}

func TestHTMLElement_OuterHTML(t *testing.T) {
	doc := mustParse(t, `<html><body><form id="f"><input name="q"></form></body></html>`, "")
	form, _ := doc.Query("form")

	got, err := form.OuterHTML()
	if err != nil {
		t.Fatalf("OuterHTML: %v", err)
	}
	if got != `<form id="f"><input name="q"/></form>` {
		t.Errorf("OuterHTML = %q", got)
	}
}

func TestHTMLElement_Dispatch(t *testing.T) {
	doc := mustParse(t, `<input id="city" name="city" value="Berlin">`, "")
	var got []Event
	doc.OnEvent(func(ev Event) { got = append(got, ev) })

	el, _ := doc.Query("#city")
	el.Dispatch("input")

	want := Event{Type: "input", Tag: "input", ID: "city", Name: "city", Value: "Berlin"}
	if len(got) != 1 || got[0] != want {
		t.Errorf("listener got %+v, want %+v", got, want)
	}
	if ev := doc.Events(); len(ev) != 1 || ev[0] != want {
		t.Errorf("Events = %+v", ev)
	}
}

func TestHTMLElement_Highlight(t *testing.T) {
	doc := mustParse(t, `<input id="a" style="color: red;"><input id="b">`, "")
	a, _ := doc.Query("#a")
	b, _ := doc.Query("#b")

	a.Highlight(time.Hour)
	if style, _ := a.Attr("style"); style != "color: red; "+highlightStyle {
		t.Errorf("style = %q", style)
	}
	doc.Settle()
	if style, _ := a.Attr("style"); style != "color: red;" {
		t.Errorf("restored style = %q", style)
	}

	b.Highlight(5 * time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for hasStyle(b) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hasStyle(b) {
		t.Error("highlight did not expire")
	}
}

func TestHTMLElement_HighlightTwice(t *testing.T) {
	doc := mustParse(t, `<input id="a" style="width: 10px">`, "")
	a, _ := doc.Query("#a")

	a.Highlight(time.Hour)
	a.Highlight(time.Hour)
	if style, _ := a.Attr("style"); style != "width: 10px; "+highlightStyle {
		t.Errorf("style = %q, want a single highlight", style)
	}
	doc.Settle()
	if style, _ := a.Attr("style"); style != "width: 10px" {
		t.Errorf("restored style = %q", style)
	}
}

func TestHTMLDocument_Render(t *testing.T) {
	doc := mustParse(t, `<html><body><input id="a"></body></html>`, "")
	a, _ := doc.Query("#a")
	a.SetValue("filled")
	a.Highlight(time.Hour)

	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `value="filled"`) {
		t.Errorf("render missing value: %s", out)
	}
	if strings.Contains(out, "border") {
		t.Errorf("render kept the highlight: %s", out)
	}
}
