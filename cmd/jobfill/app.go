package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/kalambet/jobfill/internal/api"
	"github.com/kalambet/jobfill/internal/config"
	"github.com/kalambet/jobfill/internal/coordinator"
	"github.com/kalambet/jobfill/internal/jobstore"
	"github.com/kalambet/jobfill/internal/llm"
	"github.com/kalambet/jobfill/internal/model"
	"github.com/kalambet/jobfill/internal/page"
	"github.com/kalambet/jobfill/internal/panel"
	"github.com/kalambet/jobfill/internal/storage"
)

const defaultFetchTimeout = 30 * time.Second

// app is the local control panel wiring shared by the commands.
type app struct {
	cfg   config.Config
	store *storage.Store
	jobs  *jobstore.Store
	panel *panel.Panel
	coord page.Coordinator
}

var openApp = func(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	setupLogging(cfg.Log.Level)

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	coord, err := newCoordinator(cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return newApp(cfg, store, coord), nil
}

func newApp(cfg config.Config, store *storage.Store, coord page.Coordinator) *app {
	jobs := jobstore.New(store)
	return &app{
		cfg:   cfg,
		store: store,
		jobs:  jobs,
		panel: newPanel(cfg, store, jobs, panel.WithNotifier(printLogEntry)),
		coord: coord,
	}
}

func newPanel(cfg config.Config, store *storage.Store, jobs *jobstore.Store, opts ...panel.Option) *panel.Panel {
	defaults := model.ProviderConfig{Provider: model.Provider(cfg.LLM.Provider), APIKey: cfg.LLM.APIKey}
	return panel.New(store, jobs, store, append([]panel.Option{panel.WithDefaults(defaults)}, opts...)...)
}

// newCoordinator returns the remote coordinator when --coordinator is set
// and an in-process one otherwise.
func newCoordinator(cfg config.Config) (page.Coordinator, error) {
	if coordinatorURL == "" {
		return coordinator.Local{Service: newService(cfg)}, nil
	}
	token, err := config.GetAPIToken(config.NewKeychain())
	if err != nil {
		return nil, fmt.Errorf("getting API token: %w", err)
	}
	return api.NewClient(coordinatorURL, token, &http.Client{}), nil
}

func newService(cfg config.Config) *coordinator.Service {
	providers := llm.DefaultProviders()
	for name, p := range providers {
		ep, ok := cfg.Endpoint(string(name))
		if !ok {
			continue
		}
		if ep.BaseURL != "" {
			p.BaseURL = ep.BaseURL
		}
		if ep.Model != "" {
			p.Model = ep.Model
		}
		providers[name] = p
	}
	return coordinator.New(llm.NewGateway(providers), coordinator.WithJSONMode(cfg.LLM.JSONMode))
}

// storedJobs reads the job history from the coordinator server when one is
// configured and from local storage otherwise.
func (a *app) storedJobs(ctx context.Context) ([]model.JobRecord, error) {
	if c, ok := a.coord.(*api.Client); ok {
		return c.Jobs(ctx)
	}
	jobs, err := a.panel.StoredJobs(ctx)
	return jobs, reported(err)
}

func (a *app) Close() error {
	return a.store.Close()
}

func (a *app) fetchTimeout() time.Duration {
	if a.cfg.Page.FetchTimeout == "" {
		return defaultFetchTimeout
	}
	d, err := time.ParseDuration(a.cfg.Page.FetchTimeout)
	if err != nil || d <= 0 {
		slog.Warn("invalid fetch timeout, using default 30s", "value", a.cfg.Page.FetchTimeout, "error", err)
		return defaultFetchTimeout
	}
	return d
}

// openPage loads src and reports what kind of page it looks like.
func (a *app) openPage(ctx context.Context, src string) (*page.HTMLDocument, error) {
	printStep("Loading %s", src)
	doc, err := page.Load(ctx, &http.Client{Timeout: a.fetchTimeout()}, src)
	if err != nil {
		return nil, err
	}
	if kind := page.Detect(doc); kind != page.KindUnknown {
		printStep("%s", kind.Label())
	}
	return doc, nil
}

func (a *app) agent(doc page.Document) *page.Agent {
	var consent page.Consenter = page.Prompt{In: os.Stdin, Out: os.Stderr}
	if assumeYes {
		consent = page.Always(true)
	}
	return page.NewAgent(doc, a.coord, consent, a.jobs)
}
