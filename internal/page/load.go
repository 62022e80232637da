package page

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const maxPageSize = 5 << 20

// Load fetches src when it is an http(s) URL and reads it from disk
// otherwise.
func Load(ctx context.Context, client *http.Client, src string) (*HTMLDocument, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return fetch(ctx, client, src)
	}

	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}
	defer f.Close()

	abs, err := filepath.Abs(src)
	if err != nil {
		abs = src
	}
	return NewHTMLDocument(io.LimitReader(f, maxPageSize), "file://"+filepath.ToSlash(abs))
}

func fetch(ctx context.Context, client *http.Client, pageURL string) (*HTMLDocument, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("User-Agent", "jobfill/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", pageURL, resp.StatusCode)
	}

	// Redirects change the page location.
	final := pageURL
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	return NewHTMLDocument(io.LimitReader(resp.Body, maxPageSize), final)
}
