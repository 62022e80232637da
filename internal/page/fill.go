package page

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// applyAnswer writes answer into el according to its tag and reports
// whether the element was filled.
func applyAnswer(el Element, answer string) bool {
	switch el.Tag() {
	case "input":
		typ, _ := el.Attr("type")
		switch strings.ToLower(strings.TrimSpace(typ)) {
		case "checkbox", "radio":
			el.SetChecked(true)
			return true
		case "file":
			return false
		}
		el.SetValue(answer)
		el.Dispatch("input")
		return true

	case "textarea":
		el.SetValue(answer)
		el.Dispatch("input")
		return true

	case "select":
		opt, ok := matchOption(el.Options(), answer)
		if !ok {
			return false
		}
		el.SetValue(opt.Value)
		el.Dispatch("change")
		return true
	}
	return false
}

// matchOption picks the first option whose text or value contains the
// answer, then the first option whose non-empty text or value appears in the
// answer as whole words. Comparison ignores case.
func matchOption(opts []Option, answer string) (Option, bool) {
	a := strings.ToLower(strings.TrimSpace(answer))
	if a == "" {
		return Option{}, false
	}

	for _, o := range opts {
		if strings.Contains(strings.ToLower(o.Text), a) || strings.Contains(strings.ToLower(o.Value), a) {
			return o, true
		}
	}
	for _, o := range opts {
		text := strings.ToLower(strings.TrimSpace(o.Text))
		value := strings.ToLower(strings.TrimSpace(o.Value))
		if containsWords(a, text) || containsWords(a, value) {
			return o, true
		}
	}
	return Option{}, false
}

// containsWords reports whether sub occurs in s with no letter or digit
// directly on either side, so "no" matches "no thanks" but not "know".
func containsWords(s, sub string) bool {
	if sub == "" {
		return false
	}
	for from := 0; ; {
		i := strings.Index(s[from:], sub)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(sub)
		before, _ := utf8.DecodeLastRuneInString(s[:start])
		after, _ := utf8.DecodeRuneInString(s[end:])
		if !isWordRune(before) && !isWordRune(after) {
			return true
		}
		_, size := utf8.DecodeRuneInString(s[start:])
		from = start + size
	}
}

func isWordRune(r rune) bool {
	return r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsDigit(r))
}
