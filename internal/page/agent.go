package page

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kalambet/jobfill/internal/message"
	"github.com/kalambet/jobfill/internal/model"
)

// Consent prompts.
const (
	ScrapeConsentMessage = "This extension wants to scrape job information from this page. Continue?"
	FillConsentMessage   = "This extension wants to auto-fill the form on this page. Continue?"
)

const (
	// MaxContentLength bounds the page text sent for extraction, in runes.
	MaxContentLength = 10000
	// HighlightDuration is how long filled fields stay highlighted.
	HighlightDuration = 2 * time.Second
)

var (
	ErrScrapeConsent = errors.New("User consent required for scraping")
	ErrFillConsent   = errors.New("User consent required for form filling")
	ErrNoContent     = errors.New("No content found on page")
	ErrNoForms       = errors.New("No forms found on page")
	ErrNoJobs        = errors.New("No jobs stored. Please scrape a job page first.")
)

// Stripped before text extraction.
var strippedSelectors = []string{"script", "style", "nav", "header", "footer", ".ad", ".advertisement"}

// Candidate main-content regions, most specific first. The body is the last resort.
var contentSelectors = []string{
	"main",
	`[role="main"]`,
	".content",
	".main-content",
	".job-description",
	".job-details",
	".posting",
	"article",
}

// Coordinator carries requests to the coordinator. A non-nil error means the
// request could not be delivered; operation failures come back in the
// response.
type Coordinator interface {
	Send(ctx context.Context, req message.Request) (message.Response, error)
}

// JobAppender records scraped jobs.
type JobAppender interface {
	Append(ctx context.Context, job model.JobRecord) error
}

// Agent scrapes and fills one page.
type Agent struct {
	doc       Document
	coord     Coordinator
	consent   Consenter
	jobs      JobAppender
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
	highlight time.Duration
}

// AgentOption configures an Agent.
type AgentOption func(*Agent)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) AgentOption {
	return func(a *Agent) { a.logger = l }
}

// WithClock replaces time.Now for scrape timestamps.
func WithClock(now func() time.Time) AgentOption {
	return func(a *Agent) { a.now = now }
}

// WithHighlightDuration overrides HighlightDuration.
func WithHighlightDuration(d time.Duration) AgentOption {
	return func(a *Agent) { a.highlight = d }
}

// NewAgent creates an Agent for doc. jobs may be nil when scraped records
// need not be stored.
func NewAgent(doc Document, coord Coordinator, consent Consenter, jobs JobAppender, opts ...AgentOption) *Agent {
	a := &Agent{
		doc:       doc,
		coord:     coord,
		consent:   consent,
		jobs:      jobs,
		logger:    slog.Default(),
		now:       time.Now,
		newID:     uuid.NewString,
		highlight: HighlightDuration,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Scrape extracts the job posting on the page, stamps it and stores it.
// A storage failure is logged and does not fail the scrape.
func (a *Agent) Scrape(ctx context.Context, cfg model.ProviderConfig) (model.JobRecord, error) {
	ok, err := a.consent.Confirm(ctx, ScrapeConsentMessage)
	if err != nil {
		return model.JobRecord{}, fmt.Errorf("asking for consent: %w", err)
	}
	if !ok {
		return model.JobRecord{}, ErrScrapeConsent
	}

	content := ExtractContent(a.doc)
	if content == "" {
		return model.JobRecord{}, ErrNoContent
	}
	a.logger.Debug("page content extracted", "url", a.doc.URL(), "runes", len([]rune(content)))

	resp, err := a.coord.Send(ctx, message.ExtractJobData{
		Content: content,
		URL:     a.doc.URL(),
		Config:  cfg,
	})
	if err != nil {
		return model.JobRecord{}, err
	}
	if err := resp.Err(); err != nil {
		return model.JobRecord{}, err
	}
	if resp.JobData == nil {
		return model.JobRecord{}, errors.New("coordinator returned no job data")
	}

	job := *resp.JobData
	job.ID = a.newID()
	job.ScrapedAt = a.now().UTC()
	job.SourceURL = a.doc.URL()

	if a.jobs != nil {
		if err := a.jobs.Append(ctx, job); err != nil {
			a.logger.Error("storing scraped job", "error", err)
		}
	}
	return job, nil
}

// ExtractContent returns the cleaned main text of doc. doc itself is not
// modified.
func ExtractContent(doc Document) string {
	work := doc.Clone()
	work.RemoveAll(strings.Join(strippedSelectors, ", "))

	var text string
	for _, sel := range contentSelectors {
		if el, ok := work.Query(sel); ok {
			text = el.Text()
			break
		}
	}
	if strings.TrimSpace(text) == "" {
		text = work.Body().Text()
	}
	return model.Truncate(collapseSpace(text), MaxContentLength)
}

// AutoFill fills the first form on the page with answers written for the
// most recent job. Fields whose answer cannot be generated or applied are
// skipped; only consent, a missing form, a missing job and a failed form
// analysis abort the run.
func (a *Agent) AutoFill(ctx context.Context, jobs []model.JobRecord, resume string, cfg model.ProviderConfig) (model.FillResult, error) {
	ok, err := a.consent.Confirm(ctx, FillConsentMessage)
	if err != nil {
		return model.FillResult{}, fmt.Errorf("asking for consent: %w", err)
	}
	if !ok {
		return model.FillResult{}, ErrFillConsent
	}

	forms := a.doc.QueryAll("form")
	if len(forms) == 0 {
		return model.FillResult{}, ErrNoForms
	}
	if len(jobs) == 0 {
		return model.FillResult{}, ErrNoJobs
	}

	formHTML, err := forms[0].OuterHTML()
	if err != nil {
		return model.FillResult{}, fmt.Errorf("serializing form: %w", err)
	}

	resp, err := a.coord.Send(ctx, message.AnalyzeForm{FormHTML: formHTML, Config: cfg})
	if err != nil {
		return model.FillResult{}, err
	}
	if err := resp.Err(); err != nil {
		return model.FillResult{}, err
	}
	fields := resp.Fields

	filled, err := a.answer(ctx, fields, jobs[0], resume, cfg)
	if err != nil {
		return model.FillResult{}, err
	}

	count := 0
	for _, f := range filled {
		if a.fill(f) {
			count++
		}
	}

	a.logger.Info("form filled", "filled", count, "total", len(fields))
	return model.FillResult{FilledCount: count, TotalFields: len(fields)}, nil
}

// answer generates answers one field at a time.
func (a *Agent) answer(ctx context.Context, fields []model.FieldDescriptor, job model.JobRecord, resume string, cfg model.ProviderConfig) ([]model.FilledField, error) {
	var filled []model.FilledField
	for _, f := range fields {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := a.coord.Send(ctx, message.GenerateAnswer{
			Field:      f,
			Job:        job,
			ResumeData: resume,
			Config:     cfg,
		})
		if err == nil {
			err = resp.Err()
		}
		if err != nil {
			a.logger.Warn("answer generation failed, skipping field", "selector", f.Selector, "error", err)
			continue
		}
		if resp.Answer == "" {
			a.logger.Debug("empty answer, skipping field", "selector", f.Selector)
			continue
		}
		filled = append(filled, model.FilledField{FieldDescriptor: f, Answer: resp.Answer})
	}
	return filled, nil
}

func (a *Agent) fill(f model.FilledField) bool {
	el, ok := a.doc.Query(f.Selector)
	if !ok {
		a.logger.Debug("selector not found, skipping field", "selector", f.Selector)
		return false
	}
	if !applyAnswer(el, f.Answer) {
		a.logger.Debug("field left unfilled", "selector", f.Selector, "tag", el.Tag())
		return false
	}
	el.Highlight(a.highlight)
	return true
}

// Dispatch handles the page-side requests. Anything else is an unknown action.
func (a *Agent) Dispatch(ctx context.Context, req message.Request) message.Response {
	switch r := req.(type) {
	case message.ScrapeJobPage:
		job, err := a.Scrape(ctx, r.Config)
		if err != nil {
			return message.Fail(err)
		}
		return message.Response{Success: true, JobData: &job}

	case message.AutoFillForm:
		res, err := a.AutoFill(ctx, r.Jobs, r.ResumeData, r.Config)
		if err != nil {
			return message.Fail(err)
		}
		return message.Filled(res)
	}
	return message.Fail(message.ErrUnknownAction)
}

// Send delivers req to the agent in-process.
func (a *Agent) Send(ctx context.Context, req message.Request) (message.Response, error) {
	return a.Dispatch(ctx, req), nil
}
