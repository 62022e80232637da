// Package parse turns free-form LLM replies into typed records. Replies often
// wrap the requested JSON in prose, so the first balanced JSON substring is
// decoded and anything unusable degrades to a deterministic placeholder.
package parse

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"github.com/kalambet/jobfill/internal/model"
)

// Fallback placeholder values.
const (
	FallbackTitle          = "Job Title"
	FallbackCompany        = "Company Name"
	FallbackLocation       = "Not specified"
	FallbackSalary         = "Not specified"
	FallbackEmploymentType = "Full-time"
)

// JobRecord decodes the first balanced {...} in raw. When no object is found
// or it does not decode, the fallback record is returned with Fallback set.
func JobRecord(raw string) model.JobRecord {
	obj, ok := firstBalanced(raw, '{', '}')
	if !ok {
		slog.Warn("no JSON object in extraction reply, using fallback record")
		return fallbackJob(raw)
	}

	var rj rawJob
	if err := json.Unmarshal([]byte(obj), &rj); err != nil {
		slog.Warn("failed to decode job record from LLM response", "error", err)
		return fallbackJob(raw)
	}

	return model.JobRecord{
		Title:          string(rj.Title),
		Company:        string(rj.Company),
		Description:    model.Truncate(string(rj.Description), model.DescriptionLimit),
		Requirements:   rj.Requirements.strings(),
		Location:       string(rj.Location),
		EmploymentType: string(rj.EmploymentType),
		Salary:         string(rj.Salary),
		Technologies:   rj.Technologies.strings(),
	}
}

// Fields decodes the first balanced [...] in raw into field descriptors.
// Any failure yields an empty, non-nil slice.
func Fields(raw string) []model.FieldDescriptor {
	arr, ok := firstBalanced(raw, '[', ']')
	if !ok {
		slog.Warn("no JSON array in form analysis reply")
		return []model.FieldDescriptor{}
	}

	var rfs []rawField
	if err := json.Unmarshal([]byte(arr), &rfs); err != nil {
		slog.Warn("failed to decode form fields from LLM response", "error", err)
		return []model.FieldDescriptor{}
	}

	fields := make([]model.FieldDescriptor, 0, len(rfs))
	for _, rf := range rfs {
		fields = append(fields, model.FieldDescriptor{
			Selector: strings.TrimSpace(string(rf.Selector)),
			Label:    string(rf.Label),
			Type:     string(rf.Type),
			Purpose:  string(rf.Purpose),
			Required: bool(rf.Required),
		})
	}
	return fields
}

func fallbackJob(raw string) model.JobRecord {
	return model.JobRecord{
		Title:          FallbackTitle,
		Company:        FallbackCompany,
		Description:    model.Truncate(raw, model.DescriptionLimit),
		Requirements:   []string{},
		Location:       FallbackLocation,
		EmploymentType: FallbackEmploymentType,
		Salary:         FallbackSalary,
		Technologies:   []string{},
		Fallback:       true,
	}
}

// firstBalanced returns the substring from the first open byte that has a
// matching close, honouring JSON string literals and escapes.
func firstBalanced(s string, open, close byte) (string, bool) {
	for start := 0; start < len(s); start++ {
		if s[start] != open {
			continue
		}
		if end := matchClose(s, start, open, close); end >= 0 {
			return s[start : end+1], true
		}
	}
	return "", false
}

func matchClose(s string, start int, open, close byte) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

type rawJob struct {
	Title          looseString `json:"title"`
	Company        looseString `json:"company"`
	Description    looseString `json:"description"`
	Requirements   looseList   `json:"requirements"`
	Location       looseString `json:"location"`
	EmploymentType looseString `json:"employmentType"`
	Salary         looseString `json:"salary"`
	Technologies   looseList   `json:"technologies"`
}

type rawField struct {
	Selector looseString `json:"selector"`
	Label    looseString `json:"label"`
	Type     looseString `json:"type"`
	Purpose  looseString `json:"purpose"`
	Required looseBool   `json:"required"`
}

// looseString accepts strings, numbers, booleans, null and string arrays.
type looseString string

func (l *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*l = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = looseString(s)
		return nil
	case len(data) > 0 && data[0] == '[':
		var items looseList
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = looseString(strings.Join(items.strings(), ", "))
		return nil
	case len(data) > 0 && data[0] == '{':
		*l = looseString(data)
		return nil
	}
	*l = looseString(data)
	return nil
}

// looseList accepts an array of scalars or a single string.
type looseList []looseString

func (l *looseList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var items []looseString
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var one looseString
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	if one == "" {
		*l = nil
		return nil
	}
	*l = looseList{one}
	return nil
}

func (l looseList) strings() []string {
	out := make([]string, 0, len(l))
	for _, s := range l {
		if v := strings.TrimSpace(string(s)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// looseBool accepts booleans, "true"/"false" strings and null.
type looseBool bool

func (l *looseBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = false
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*l = looseBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		b = strings.EqualFold(strings.TrimSpace(s), "yes")
	}
	*l = looseBool(b)
	return nil
}
