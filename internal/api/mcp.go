package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/jobfill/internal/model"
	"github.com/kalambet/jobfill/internal/page"
)

// MCPCoordinator is the coordinator surface exposed as MCP tools.
type MCPCoordinator interface {
	ExtractJobData(ctx context.Context, content, url string, cfg model.ProviderConfig) (model.JobRecord, error)
	AnalyzeForm(ctx context.Context, formHTML string, cfg model.ProviderConfig) ([]model.FieldDescriptor, error)
	GenerateAnswer(ctx context.Context, field model.FieldDescriptor, job model.JobRecord, resume string, cfg model.ProviderConfig) (string, error)
}

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Coordinator MCPCoordinator
	Jobs        JobReader
	// Settings resolves the provider and API key for each call.
	Settings func(ctx context.Context) (model.ProviderConfig, error)
	// Resume returns the saved résumé, used when a call does not pass one.
	Resume func(ctx context.Context) (string, error)
}

// NewMCPServer creates an MCP server exposing the coordinator operations
// and the stored job list.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"jobfill",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("jobfill extracts job postings, analyzes application forms and drafts answers from a résumé."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("extract_job_data",
			mcp.WithDescription("Extract a structured job posting from page text."),
			mcp.WithString("content", mcp.Description("Visible text of the job page"), mcp.Required()),
			mcp.WithString("url", mcp.Description("Page URL")),
		),
		mcpExtractJobData(deps),
	)

	s.AddTool(
		mcp.NewTool("analyze_form",
			mcp.WithDescription("List the fillable fields of an HTML form."),
			mcp.WithString("form_html", mcp.Description("Outer HTML of the form"), mcp.Required()),
		),
		mcpAnalyzeForm(deps),
	)

	s.AddTool(
		mcp.NewTool("generate_answer",
			mcp.WithDescription("Draft an answer for one form field from the résumé and a stored job."),
			mcp.WithString("label", mcp.Description("Field label"), mcp.Required()),
			mcp.WithString("type", mcp.Description("Field type, e.g. text, textarea, select")),
			mcp.WithString("purpose", mcp.Description("What the field asks for")),
			mcp.WithString("selector", mcp.Description("CSS selector of the field")),
			mcp.WithBoolean("required", mcp.Description("Whether the field is required")),
			mcp.WithNumber("job_index", mcp.Description("Index into the stored jobs, newest first (default 0)")),
			mcp.WithString("resume", mcp.Description("Résumé text; the saved résumé is used when omitted")),
		),
		mcpGenerateAnswer(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"jobs://recent",
			"Stored Jobs",
			mcp.WithResourceDescription("Most recently scraped jobs, newest first"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceJobs(deps),
	)

	return s
}

func mcpExtractJobData(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		content, err := req.RequireString("content")
		if err != nil || content == "" {
			return mcpError("content is required"), nil
		}
		cfg, err := deps.Settings(ctx)
		if err != nil {
			return mcpError(fmt.Sprintf("loading settings: %v", err)), nil
		}

		job, err := deps.Coordinator.ExtractJobData(ctx, content, req.GetString("url", ""), cfg)
		if err != nil {
			return mcpError(err.Error()), nil
		}
		return mcpJSON(job)
	}
}

func mcpAnalyzeForm(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		formHTML, err := req.RequireString("form_html")
		if err != nil || formHTML == "" {
			return mcpError("form_html is required"), nil
		}
		cfg, err := deps.Settings(ctx)
		if err != nil {
			return mcpError(fmt.Sprintf("loading settings: %v", err)), nil
		}

		fields, err := deps.Coordinator.AnalyzeForm(ctx, formHTML, cfg)
		if err != nil {
			return mcpError(err.Error()), nil
		}
		return mcpJSON(fields)
	}
}

func mcpGenerateAnswer(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		label, err := req.RequireString("label")
		if err != nil || label == "" {
			return mcpError("label is required"), nil
		}
		field := model.FieldDescriptor{
			Selector: req.GetString("selector", ""),
			Label:    label,
			Type:     req.GetString("type", "text"),
			Purpose:  req.GetString("purpose", ""),
			Required: req.GetBool("required", false),
		}

		jobs, err := deps.Jobs.Read(ctx)
		if err != nil {
			return mcpError(fmt.Sprintf("reading stored jobs: %v", err)), nil
		}
		if len(jobs) == 0 {
			return mcpError(page.ErrNoJobs.Error()), nil
		}
		idx := req.GetInt("job_index", 0)
		if idx < 0 || idx >= len(jobs) {
			return mcpError(fmt.Sprintf("job_index must be between 0 and %d", len(jobs)-1)), nil
		}

		resume := req.GetString("resume", "")
		if resume == "" && deps.Resume != nil {
			if resume, err = deps.Resume(ctx); err != nil {
				return mcpError(fmt.Sprintf("loading resume: %v", err)), nil
			}
		}
		if resume == "" {
			return mcpError("resume is required: pass it or save one first"), nil
		}

		cfg, err := deps.Settings(ctx)
		if err != nil {
			return mcpError(fmt.Sprintf("loading settings: %v", err)), nil
		}

		answer, err := deps.Coordinator.GenerateAnswer(ctx, field, jobs[idx], resume, cfg)
		if err != nil {
			return mcpError(err.Error()), nil
		}
		return mcpText(answer), nil
	}
}

func mcpResourceJobs(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jobs, err := deps.Jobs.Read(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read stored jobs: %w", err)
		}

		b, err := json.Marshal(jobs)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal jobs: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpJSON(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcpText(string(b)), nil
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
