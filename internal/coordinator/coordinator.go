// Package coordinator runs the LLM-backed operations on behalf of the page
// agent. It holds no page state; every request carries the provider config
// it needs.
package coordinator

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kalambet/jobfill/internal/llm"
	"github.com/kalambet/jobfill/internal/message"
	"github.com/kalambet/jobfill/internal/model"
	"github.com/kalambet/jobfill/internal/parse"
	"github.com/kalambet/jobfill/internal/prompt"
)

// Completer sends a prompt to an LLM.
type Completer interface {
	Complete(ctx context.Context, prompt string, cfg model.ProviderConfig, opts ...llm.CallOption) (string, error)
}

// Service is the coordinator. It is safe for concurrent use as long as the
// Completer is.
type Service struct {
	llm      Completer
	jsonMode bool
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithJSONMode requests JSON-object output for job extraction.
func WithJSONMode(on bool) Option {
	return func(s *Service) { s.jsonMode = on }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a Service over c.
func New(c Completer, opts ...Option) *Service {
	s := &Service{llm: c, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExtractJobData turns page text into a JobRecord. An unparseable reply is
// not an error: the fallback record comes back with Fallback set.
func (s *Service) ExtractJobData(ctx context.Context, content, url string, cfg model.ProviderConfig) (model.JobRecord, error) {
	var opts []llm.CallOption
	if s.jsonMode {
		opts = append(opts, llm.JSONObject())
	}

	raw, err := s.llm.Complete(ctx, prompt.Extraction(content, url), cfg, opts...)
	if err != nil {
		return model.JobRecord{}, err
	}

	job := parse.JobRecord(raw)
	if job.Fallback {
		s.logger.Warn("job extraction fell back to placeholder record", "url", url)
	}
	return job, nil
}

// AnalyzeForm describes the fields of a serialized form.
func (s *Service) AnalyzeForm(ctx context.Context, formHTML string, cfg model.ProviderConfig) ([]model.FieldDescriptor, error) {
	raw, err := s.llm.Complete(ctx, prompt.FormAnalysis(formHTML), cfg)
	if err != nil {
		return nil, err
	}
	fields := parse.Fields(raw)
	s.logger.Debug("form analysed", "fields", len(fields))
	return fields, nil
}

// GenerateAnswer writes an answer for one field. The reply is trimmed.
func (s *Service) GenerateAnswer(ctx context.Context, field model.FieldDescriptor, job model.JobRecord, resume string, cfg model.ProviderConfig) (string, error) {
	raw, err := s.llm.Complete(ctx, prompt.Answer(field, job, resume), cfg)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

// Dispatch routes a request to its operation. Failures are reported in the
// response; Dispatch never panics or returns an error out of band.
func (s *Service) Dispatch(ctx context.Context, req message.Request) message.Response {
	switch r := req.(type) {
	case message.ExtractJobData:
		job, err := s.ExtractJobData(ctx, r.Content, r.URL, r.Config)
		if err != nil {
			return message.Fail(err)
		}
		return message.Response{Success: true, JobData: &job}

	case message.AnalyzeForm:
		fields, err := s.AnalyzeForm(ctx, r.FormHTML, r.Config)
		if err != nil {
			return message.Fail(err)
		}
		return message.Response{Success: true, Fields: fields}

	case message.GenerateAnswer:
		answer, err := s.GenerateAnswer(ctx, r.Field, r.Job, r.ResumeData, r.Config)
		if err != nil {
			return message.Fail(err)
		}
		return message.Response{Success: true, Answer: answer}

	case message.ScrapeJobPage, message.AutoFillForm, nil:
		return message.Fail(message.ErrUnknownAction)
	}
	return message.Fail(message.ErrUnknownAction)
}

// Local delivers requests to an in-process Service.
type Local struct {
	Service *Service
}

// Send dispatches req. In-process delivery cannot fail, so the error is
// always nil.
func (l Local) Send(ctx context.Context, req message.Request) (message.Response, error) {
	return l.Service.Dispatch(ctx, req), nil
}
