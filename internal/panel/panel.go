// Package panel implements the control panel: settings, résumé, the job
// list, the activity log and the scrape / auto-fill commands sent to a tab.
package panel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/kalambet/jobfill/internal/llm"
	"github.com/kalambet/jobfill/internal/message"
	"github.com/kalambet/jobfill/internal/model"
	"github.com/kalambet/jobfill/internal/page"
	"github.com/kalambet/jobfill/internal/storage"
)

// Storage keys.
const (
	KeyProvider = "apiProvider"
	KeyAPIKey   = "apiKey"
	KeyResume   = "resumeData"
)

// Level grades status indicators and log lines.
type Level string

const (
	LevelReady   Level = "ready"
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

var (
	ErrEmptyAPIKey     = errors.New("Please enter an API key")
	ErrEmptyResume     = errors.New("Please enter your resume/CV data")
	ErrAPIKeyRequired  = errors.New("Please configure your API key first")
	ErrResumeRequired  = errors.New("Please add your resume/CV data first")
	ErrMissingJobData  = errors.New("page returned no job data")
	ErrMissingFillData = errors.New("page returned no fill result")
)

// Tab delivers a request to the page agent of the active page.
type Tab interface {
	Send(ctx context.Context, req message.Request) (message.Response, error)
}

// KV is the persistent settings store.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// JobList is the stored job history.
type JobList interface {
	Read(ctx context.Context) ([]model.JobRecord, error)
	Clear(ctx context.Context) error
}

// ActivityLog persists user-facing log lines.
type ActivityLog interface {
	AppendLog(ctx context.Context, e storage.LogEntry) error
	RecentLogs(ctx context.Context, limit int) ([]storage.LogEntry, error)
	ClearLogs(ctx context.Context) error
}

// Status is the panel's current indicator.
type Status struct {
	Text  string
	Level Level
}

// Settings is the effective configuration the panel sends with requests.
type Settings struct {
	Provider model.Provider
	APIKey   string
	Resume   string
}

// Config returns the provider selection carried by requests.
func (s Settings) Config() model.ProviderConfig {
	return model.ProviderConfig{Provider: s.Provider, APIKey: s.APIKey}
}

// Panel is the control panel. Its methods are safe for concurrent use.
type Panel struct {
	kv       KV
	jobs     JobList
	activity ActivityLog
	defaults model.ProviderConfig
	notify   func(storage.LogEntry)
	logger   *slog.Logger
	now      func() time.Time

	mu     sync.Mutex
	status Status
}

// Option configures a Panel.
type Option func(*Panel)

// WithDefaults sets the provider and API key used when none is saved.
func WithDefaults(cfg model.ProviderConfig) Option {
	return func(p *Panel) { p.defaults = cfg }
}

// WithNotifier receives every log line as it is written.
func WithNotifier(fn func(storage.LogEntry)) Option {
	return func(p *Panel) { p.notify = fn }
}

// WithLogger sets the diagnostic logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Panel) { p.logger = l }
}

// WithClock replaces time.Now for log timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Panel) { p.now = now }
}

// New creates a Panel in the Ready state.
func New(kv KV, jobs JobList, activity ActivityLog, opts ...Option) *Panel {
	p := &Panel{
		kv:       kv,
		jobs:     jobs,
		activity: activity,
		defaults: model.ProviderConfig{Provider: model.ProviderOpenAI},
		logger:   slog.Default(),
		now:      time.Now,
		status:   Status{Text: "Ready", Level: LevelReady},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Settings returns saved values, falling back to the configured defaults.
func (p *Panel) Settings(ctx context.Context) (Settings, error) {
	s := Settings{Provider: p.defaults.Provider, APIKey: p.defaults.APIKey}

	if v, ok, err := p.kv.Get(ctx, KeyProvider); err != nil {
		return Settings{}, fmt.Errorf("loading provider: %w", err)
	} else if ok && v != "" {
		s.Provider = model.Provider(v)
	}
	if v, ok, err := p.kv.Get(ctx, KeyAPIKey); err != nil {
		return Settings{}, fmt.Errorf("loading API key: %w", err)
	} else if ok && v != "" {
		s.APIKey = v
	}
	v, _, err := p.kv.Get(ctx, KeyResume)
	if err != nil {
		return Settings{}, fmt.Errorf("loading resume: %w", err)
	}
	s.Resume = v
	return s, nil
}

// SaveConfiguration stores the provider and API key.
func (p *Panel) SaveConfiguration(ctx context.Context, provider, apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		p.Log(ctx, LevelWarning, ErrEmptyAPIKey.Error())
		return ErrEmptyAPIKey
	}
	prov, ok := model.ParseProvider(provider)
	if !ok {
		p.Log(ctx, LevelError, "Error saving configuration: "+llm.ErrUnknownProvider.Error())
		return llm.ErrUnknownProvider
	}

	if err := p.kv.Set(ctx, KeyProvider, string(prov)); err != nil {
		p.Log(ctx, LevelError, "Error saving configuration: "+err.Error())
		return err
	}
	if err := p.kv.Set(ctx, KeyAPIKey, apiKey); err != nil {
		p.Log(ctx, LevelError, "Error saving configuration: "+err.Error())
		return err
	}
	p.Log(ctx, LevelSuccess, "Configuration saved successfully")
	p.setStatus("Configured", LevelReady)
	return nil
}

// SaveResume stores the trimmed résumé text.
func (p *Panel) SaveResume(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		p.Log(ctx, LevelWarning, ErrEmptyResume.Error())
		return ErrEmptyResume
	}
	if err := p.kv.Set(ctx, KeyResume, text); err != nil {
		p.Log(ctx, LevelError, "Error saving resume: "+err.Error())
		return err
	}
	p.Log(ctx, LevelSuccess, "Resume data saved successfully")
	return nil
}

// ScrapeCurrentPage asks tab to scrape its page.
func (p *Panel) ScrapeCurrentPage(ctx context.Context, tab Tab) (model.JobRecord, error) {
	p.setStatus("Scraping...", LevelWarning)

	s, err := p.Settings(ctx)
	if err != nil {
		return model.JobRecord{}, p.fail(ctx, "Error scraping page: ", "Error", err)
	}
	if s.APIKey == "" {
		p.Log(ctx, LevelError, ErrAPIKeyRequired.Error())
		p.setStatus("API Key Required", LevelError)
		return model.JobRecord{}, ErrAPIKeyRequired
	}

	resp, err := tab.Send(ctx, message.ScrapeJobPage{Config: s.Config()})
	if err != nil {
		return model.JobRecord{}, p.fail(ctx, "Error scraping page: ", "Error", err)
	}
	if err := resp.Err(); err != nil {
		return model.JobRecord{}, p.fail(ctx, "Failed to scrape job page: ", "Scrape Failed", err)
	}
	if resp.JobData == nil {
		return model.JobRecord{}, p.fail(ctx, "Failed to scrape job page: ", "Scrape Failed", ErrMissingJobData)
	}

	p.Log(ctx, LevelSuccess, "Job page scraped successfully")
	p.setStatus("Scraped", LevelSuccess)
	return *resp.JobData, nil
}

// AutoFillCurrentForm asks tab to fill its form using the stored jobs and
// the saved résumé.
func (p *Panel) AutoFillCurrentForm(ctx context.Context, tab Tab) (model.FillResult, error) {
	p.setStatus("Filling Form...", LevelWarning)

	jobs, err := p.jobs.Read(ctx)
	if err != nil {
		return model.FillResult{}, p.fail(ctx, "Error filling form: ", "Error", err)
	}
	if len(jobs) == 0 {
		p.Log(ctx, LevelWarning, page.ErrNoJobs.Error())
		p.setStatus("No Jobs Stored", LevelWarning)
		return model.FillResult{}, page.ErrNoJobs
	}

	s, err := p.Settings(ctx)
	if err != nil {
		return model.FillResult{}, p.fail(ctx, "Error filling form: ", "Error", err)
	}
	if s.Resume == "" {
		p.Log(ctx, LevelWarning, ErrResumeRequired.Error())
		p.setStatus("Resume Required", LevelWarning)
		return model.FillResult{}, ErrResumeRequired
	}

	resp, err := tab.Send(ctx, message.AutoFillForm{
		Config:     s.Config(),
		ResumeData: s.Resume,
		Jobs:       jobs,
	})
	if err != nil {
		return model.FillResult{}, p.fail(ctx, "Error filling form: ", "Error", err)
	}
	if err := resp.Err(); err != nil {
		return model.FillResult{}, p.fail(ctx, "Failed to fill form: ", "Fill Failed", err)
	}
	if resp.FilledCount == nil || resp.TotalFields == nil {
		return model.FillResult{}, p.fail(ctx, "Failed to fill form: ", "Fill Failed", ErrMissingFillData)
	}

	res := model.FillResult{FilledCount: *resp.FilledCount, TotalFields: *resp.TotalFields}
	p.Log(ctx, LevelSuccess, fmt.Sprintf("Form filled successfully (%d of %d fields)", res.FilledCount, res.TotalFields))
	p.setStatus("Form Filled", LevelSuccess)
	return res, nil
}

// StoredJobs returns the job history, newest first.
func (p *Panel) StoredJobs(ctx context.Context) ([]model.JobRecord, error) {
	jobs, err := p.jobs.Read(ctx)
	if err != nil {
		p.Log(ctx, LevelError, "Error loading stored jobs: "+err.Error())
		return nil, err
	}
	return jobs, nil
}

// ClearStoredJobs empties the job history.
func (p *Panel) ClearStoredJobs(ctx context.Context) error {
	if err := p.jobs.Clear(ctx); err != nil {
		p.Log(ctx, LevelError, "Error clearing jobs: "+err.Error())
		return err
	}
	p.Log(ctx, LevelInfo, "All stored jobs cleared")
	return nil
}

// Status returns the current indicator.
func (p *Panel) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Panel) setStatus(text string, level Level) {
	p.mu.Lock()
	p.status = Status{Text: text, Level: level}
	p.mu.Unlock()
	p.logger.Debug("panel status", "status", text, "level", level)
}

// fail logs prefix+err, sets the status and returns err.
func (p *Panel) fail(ctx context.Context, prefix, status string, err error) error {
	p.Log(ctx, LevelError, prefix+err.Error())
	p.setStatus(status, LevelError)
	return err
}
