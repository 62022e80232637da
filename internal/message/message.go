// Package message defines the requests and responses exchanged between the
// page agent, the coordinator and the control panel. Requests form a closed
// set: every variant is declared here and carries an action tag on the wire.
package message

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kalambet/jobfill/internal/model"
)

// Action tags.
const (
	ActionScrapeJobPage  = "scrapeJobPage"
	ActionAutoFillForm   = "autoFillForm"
	ActionExtractJobData = "extractJobData"
	ActionAnalyzeForm    = "analyzeForm"
	ActionGenerateAnswer = "generateAnswer"
)

// ErrUnknownAction is reported for tags or variants a receiver does not handle.
var ErrUnknownAction = errors.New("Unknown action")

// Request is implemented only by the variants in this package.
type Request interface {
	Action() string
	isRequest()
}

// ScrapeJobPage asks the page agent to scrape the current page.
type ScrapeJobPage struct {
	Config model.ProviderConfig `json:"config"`
}

// AutoFillForm asks the page agent to fill the first form on the page.
type AutoFillForm struct {
	Config     model.ProviderConfig `json:"config"`
	ResumeData string               `json:"resumeData"`
	Jobs       []model.JobRecord    `json:"jobs"`
}

// ExtractJobData asks the coordinator to turn page text into a JobRecord.
type ExtractJobData struct {
	Content string               `json:"content"`
	URL     string               `json:"url"`
	Config  model.ProviderConfig `json:"config"`
}

// AnalyzeForm asks the coordinator to describe a form's fields.
type AnalyzeForm struct {
	FormHTML string               `json:"formHtml"`
	Config   model.ProviderConfig `json:"config"`
}

// GenerateAnswer asks the coordinator to answer one form field.
type GenerateAnswer struct {
	Field      model.FieldDescriptor `json:"field"`
	Job        model.JobRecord       `json:"job"`
	ResumeData string                `json:"resumeData"`
	Config     model.ProviderConfig  `json:"config"`
}

func (ScrapeJobPage) Action() string  { return ActionScrapeJobPage }
func (AutoFillForm) Action() string   { return ActionAutoFillForm }
func (ExtractJobData) Action() string { return ActionExtractJobData }
func (AnalyzeForm) Action() string    { return ActionAnalyzeForm }
func (GenerateAnswer) Action() string { return ActionGenerateAnswer }

func (ScrapeJobPage) isRequest()  {}
func (AutoFillForm) isRequest()   {}
func (ExtractJobData) isRequest() {}
func (AnalyzeForm) isRequest()    {}
func (GenerateAnswer) isRequest() {}

// Response is the single reply shape for every request. Success responses
// populate only the fields relevant to the request; fields is always on the
// wire so an analysis that finds nothing reads as [].
type Response struct {
	Success     bool                    `json:"success"`
	Error       string                  `json:"error,omitempty"`
	JobData     *model.JobRecord        `json:"jobData,omitempty"`
	Fields      []model.FieldDescriptor `json:"fields"`
	Answer      string                  `json:"answer,omitempty"`
	FilledCount *int                    `json:"filledCount,omitempty"`
	TotalFields *int                    `json:"totalFields,omitempty"`
}

// Fail builds a failure response carrying err's text.
func Fail(err error) Response {
	return Response{Success: false, Error: err.Error()}
}

// Err returns the response failure as an error, or nil on success.
func (r Response) Err() error {
	if r.Success {
		return nil
	}
	if r.Error == "" {
		return errors.New("request failed")
	}
	return errors.New(r.Error)
}

// Filled builds the success response for an auto-fill run.
func Filled(res model.FillResult) Response {
	filled, total := res.FilledCount, res.TotalFields
	return Response{Success: true, FilledCount: &filled, TotalFields: &total}
}

// Encode serialises req with its action tag.
func Encode(req Request) ([]byte, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", req.Action(), err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", req.Action(), err)
	}
	tag, _ := json.Marshal(req.Action())
	fields["action"] = tag
	return json.Marshal(fields)
}

// Decode parses a tagged request. An unrecognised tag yields ErrUnknownAction.
func Decode(data []byte) (Request, error) {
	var head struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}

	var req Request
	switch head.Action {
	case ActionScrapeJobPage:
		var r ScrapeJobPage
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", head.Action, err)
		}
		req = r
	case ActionAutoFillForm:
		var r AutoFillForm
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", head.Action, err)
		}
		req = r
	case ActionExtractJobData:
		var r ExtractJobData
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", head.Action, err)
		}
		req = r
	case ActionAnalyzeForm:
		var r AnalyzeForm
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", head.Action, err)
		}
		req = r
	case ActionGenerateAnswer:
		var r GenerateAnswer
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", head.Action, err)
		}
		req = r
	default:
		return nil, ErrUnknownAction
	}
	return req, nil
}
