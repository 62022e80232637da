package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/jobfill/internal/message"
	"github.com/kalambet/jobfill/internal/model"
)

// Page content and form markup travel in the body.
const maxRequestBodySize = 8 << 20 // 8MB

// Dispatcher handles one coordinator request. Failures are reported in the
// response.
type Dispatcher interface {
	Dispatch(ctx context.Context, req message.Request) message.Response
}

// JobReader lists stored jobs.
type JobReader interface {
	Read(ctx context.Context) ([]model.JobRecord, error)
}

// HandlerDeps holds dependencies for the coordinator HTTP API.
type HandlerDeps struct {
	Coordinator Dispatcher
	Jobs        JobReader // optional; if nil, /v1/jobs is not served
	Token       string
}

// NewHandler returns the coordinator HTTP API. /health is public; every
// /v1 route requires the bearer token.
func NewHandler(deps HandlerDeps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))
		r.Post("/v1/messages", handleMessage(deps.Coordinator))
		if deps.Jobs != nil {
			r.Get("/v1/jobs", handleListJobs(deps.Jobs))
		}
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleMessage answers with a message.Response and status 200 for every
// well-formed request, including unknown actions and failed operations.
func handleMessage(d Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		body, err := io.ReadAll(r.Body)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "reading request body: %v", err)
			return
		}

		req, err := message.Decode(body)
		switch {
		case errors.Is(err, message.ErrUnknownAction):
			slog.Debug("unknown action received")
			writeJSON(w, message.Fail(err))
			return
		case err != nil:
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		resp := d.Dispatch(r.Context(), req)
		slog.Debug("message handled", "action", req.Action(), "success", resp.Success)
		writeJSON(w, resp)
	}
}

func handleListJobs(jobs JobReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := jobs.Read(r.Context())
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "reading stored jobs: %v", err)
			return
		}
		writeJSON(w, list)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("writing response", "error", err)
	}
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
