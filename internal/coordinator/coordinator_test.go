package coordinator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/kalambet/jobfill/internal/llm"
	"github.com/kalambet/jobfill/internal/message"
	"github.com/kalambet/jobfill/internal/model"
)

var ctx = context.Background()

var testCfg = model.ProviderConfig{Provider: model.ProviderOpenAI, APIKey: "sk-test"}

// mockCompleter returns a canned reply and records prompts.
type mockCompleter struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
	opts    int
	cfgs    []model.ProviderConfig
}

func (m *mockCompleter) Complete(_ context.Context, prompt string, cfg model.ProviderConfig, opts ...llm.CallOption) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	m.cfgs = append(m.cfgs, cfg)
	m.opts += len(opts)
	return m.reply, m.err
}

func TestExtractJobData(t *testing.T) {
	mc := &mockCompleter{reply: `Here you go: {"title":"Senior Go Engineer","company":"Acme","requirements":["Go"]}`}
	s := New(mc)

	job, err := s.ExtractJobData(ctx, "Senior Go Engineer at Acme", "https://acme.example/jobs/1", testCfg)
	if err != nil {
		t.Fatalf("ExtractJobData: %v", err)
	}
	if job.Title != "Senior Go Engineer" || job.Company != "Acme" {
		t.Errorf("job = %+v", job)
	}
	if !strings.Contains(mc.prompts[0], "URL: https://acme.example/jobs/1") {
		t.Error("prompt missing URL")
	}
	if mc.cfgs[0] != testCfg {
		t.Errorf("cfg = %+v, want %+v", mc.cfgs[0], testCfg)
	}
	if mc.opts != 0 {
		t.Errorf("opts = %d, want 0 without JSON mode", mc.opts)
	}
}

func TestExtractJobData_JSONMode(t *testing.T) {
	mc := &mockCompleter{reply: `{"title":"x"}`}
	s := New(mc, WithJSONMode(true))

	if _, err := s.ExtractJobData(ctx, "c", "u", testCfg); err != nil {
		t.Fatal(err)
	}
	if mc.opts != 1 {
		t.Errorf("opts = %d, want 1", mc.opts)
	}

	if _, err := s.AnalyzeForm(ctx, "<form></form>", testCfg); err != nil {
		t.Fatal(err)
	}
	if mc.opts != 1 {
		t.Errorf("form analysis must not request JSON-object output, opts = %d", mc.opts)
	}
}

func TestExtractJobData_Fallback(t *testing.T) {
	mc := &mockCompleter{reply: "Sorry, there is no job here."}
	job, err := New(mc).ExtractJobData(ctx, "c", "u", testCfg)
	if err != nil {
		t.Fatalf("fallback should not be an error: %v", err)
	}
	if !job.Fallback || job.Title != "Job Title" {
		t.Errorf("job = %+v, want fallback", job)
	}
}

func TestGenerateAnswer_Trimmed(t *testing.T) {
	mc := &mockCompleter{reply: "\n  I have eight years of Go experience.  \n"}
	answer, err := New(mc).GenerateAnswer(ctx, model.FieldDescriptor{Label: "Experience"}, model.JobRecord{Title: "Go"}, "cv", testCfg)
	if err != nil {
		t.Fatal(err)
	}
	if answer != "I have eight years of Go experience." {
		t.Errorf("answer = %q", answer)
	}
}

func TestDispatch(t *testing.T) {
	mc := &mockCompleter{reply: `[{"selector":"#email","label":"Email","type":"email","purpose":"email","required":true}]`}
	s := New(mc)

	resp := s.Dispatch(ctx, message.AnalyzeForm{FormHTML: "<form></form>", Config: testCfg})
	if !resp.Success {
		t.Fatalf("resp = %+v", resp)
	}
	if len(resp.Fields) != 1 || resp.Fields[0].Selector != "#email" {
		t.Errorf("Fields = %+v", resp.Fields)
	}

	mc.reply = "  Yes  "
	resp = s.Dispatch(ctx, message.GenerateAnswer{Field: resp.Fields[0], ResumeData: "cv", Config: testCfg})
	if !resp.Success || resp.Answer != "Yes" {
		t.Errorf("resp = %+v", resp)
	}

	mc.reply = `{"title":"T"}`
	resp = s.Dispatch(ctx, message.ExtractJobData{Content: "c", URL: "u", Config: testCfg})
	if !resp.Success || resp.JobData == nil || resp.JobData.Title != "T" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestDispatch_FailureInPayload(t *testing.T) {
	mc := &mockCompleter{err: llm.ErrAPIKeyMissing}
	s := New(mc)

	for _, req := range []message.Request{
		message.ExtractJobData{},
		message.AnalyzeForm{},
		message.GenerateAnswer{},
	} {
		resp := s.Dispatch(ctx, req)
		if resp.Success || resp.Error != "API key not configured" {
			t.Errorf("%s: resp = %+v", req.Action(), resp)
		}
	}
}

func TestDispatch_UnknownAction(t *testing.T) {
	s := New(&mockCompleter{})

	for _, req := range []message.Request{message.ScrapeJobPage{}, message.AutoFillForm{}, nil} {
		resp := s.Dispatch(ctx, req)
		if resp.Success || resp.Error != "Unknown action" {
			t.Errorf("resp = %+v, want Unknown action", resp)
		}
	}
}

func TestLocal(t *testing.T) {
	mc := &mockCompleter{err: errors.New("OpenAI API error: boom")}
	resp, err := Local{Service: New(mc)}.Send(ctx, message.AnalyzeForm{})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if resp.Error != "OpenAI API error: boom" {
		t.Errorf("resp = %+v", resp)
	}
}
