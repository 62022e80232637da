package page

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/old":
			http.Redirect(w, r, "/jobs/1", http.StatusFound)
		case "/jobs/1":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<html><head><title>Go Engineer</title></head><body><main>Build things</main></body></html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	doc, err := Load(context.Background(), srv.Client(), srv.URL+"/old")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.URL() != srv.URL+"/jobs/1" {
		t.Errorf("URL = %q, want the redirect target", doc.URL())
	}
	if doc.Title() != "Go Engineer" {
		t.Errorf("Title = %q", doc.Title())
	}

	if _, err := Load(context.Background(), srv.Client(), srv.URL+"/missing"); err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("err = %v, want status error", err)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apply.html")
	if err := os.WriteFile(path, []byte(`<form><input id="x"></form>`), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := Load(context.Background(), nil, path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !strings.HasPrefix(doc.URL(), "file://") || !strings.HasSuffix(doc.URL(), "/apply.html") {
		t.Errorf("URL = %q", doc.URL())
	}
	if _, ok := doc.Query("#x"); !ok {
		t.Error("input not parsed")
	}

	if _, err := Load(context.Background(), nil, filepath.Join(t.TempDir(), "nope.html")); err == nil {
		t.Error("expected error for missing file")
	}
}
