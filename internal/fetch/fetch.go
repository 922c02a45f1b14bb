package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	appLog "confcal/internal/log"
)

// Document identifies one page the converter needs.
type Document struct {
	// ID is a short label used for logging (e.g., "schedule").
	ID string
	// URL is the page location.
	URL string
}

// Result contains the outcome of fetching a single document.
type Result struct {
	Document  Document
	Body      []byte // page payload (either freshly fetched or from cache)
	FromCache bool   // true if the body came from the disk cache
}

// Renderer loads a page through something other than plain HTTP, such as a
// headless browser. It returns the page markup.
type Renderer interface {
	Render(ctx context.Context, url string) ([]byte, error)
}

// cacheEntry holds HTTP cache metadata for a single URL.
type cacheEntry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Options configures a Fetcher.
type Options struct {
	// CacheDir is the base directory for per-URL cache subdirectories.
	CacheDir string

	// Refresh revalidates cached documents with the origin instead of
	// reusing them as-is.
	Refresh bool

	// Renderer, if set, replaces HTTP for fetching page bodies. Rendered
	// bodies are cached like HTTP bodies but carry no validators.
	Renderer Renderer

	// Client overrides the default HTTP client.
	Client *http.Client
}

// Fetcher retrieves documents with a disk-backed cache. By default a cached
// body is reused without touching the network, so repeated runs work
// offline. With Refresh set it revalidates using ETag / Last-Modified.
type Fetcher struct {
	client   *http.Client
	cacheDir string
	refresh  bool
	renderer Renderer
}

// New creates a Fetcher.
func New(opts Options) *Fetcher {
	if opts.CacheDir == "" {
		// Development fallback; callers should set this explicitly.
		opts.CacheDir = "./var/page-cache"
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{
			Timeout: 15 * time.Second,
		}
	}
	return &Fetcher{
		client:   client,
		cacheDir: opts.CacheDir,
		refresh:  opts.Refresh,
		renderer: opts.Renderer,
	}
}

// Fetch returns the body of doc, from cache when possible.
func (f *Fetcher) Fetch(ctx context.Context, doc Document) (Result, error) {
	if doc.URL == "" {
		return Result{}, fmt.Errorf("fetch %s: URL is empty", doc.ID)
	}

	cachePath := f.cachePathForURL(doc.URL)
	if err := os.MkdirAll(cachePath, 0o700); err != nil {
		return Result{}, err
	}

	meta, _ := f.loadCacheMeta(cachePath)
	cachedBody, _ := f.loadCacheBody(cachePath)

	if len(cachedBody) > 0 && !f.refresh {
		appLog.Debug("fetch: using cached document", "id", doc.ID, "url", doc.URL, "cached_at", meta.UpdatedAt)
		return Result{Document: doc, Body: cachedBody, FromCache: true}, nil
	}

	if f.renderer != nil {
		return f.render(ctx, doc, cachePath, cachedBody)
	}
	return f.get(ctx, doc, cachePath, meta, cachedBody)
}

func (f *Fetcher) render(ctx context.Context, doc Document, cachePath string, cachedBody []byte) (Result, error) {
	appLog.Info("fetch render start", "id", doc.ID, "url", doc.URL)

	body, err := f.renderer.Render(ctx, doc.URL)
	if err != nil {
		if len(cachedBody) > 0 {
			appLog.Error("fetch render failed, using cached body", err, "id", doc.ID, "url", doc.URL)
			return Result{Document: doc, Body: cachedBody, FromCache: true}, nil
		}
		return Result{}, err
	}

	if err := f.saveCache(cachePath, cacheEntry{URL: doc.URL}, body); err != nil {
		appLog.Error("fetch cache save failed", err, "id", doc.ID, "url", doc.URL)
	}
	return Result{Document: doc, Body: body}, nil
}

func (f *Fetcher) get(ctx context.Context, doc Document, cachePath string, meta cacheEntry, cachedBody []byte) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, doc.URL, nil)
	if err != nil {
		return Result{}, err
	}

	// Conditional headers only make sense if there is a body to fall back on.
	if len(cachedBody) > 0 {
		if meta.ETag != "" {
			req.Header.Set("If-None-Match", meta.ETag)
		}
		if meta.LastModified != "" {
			req.Header.Set("If-Modified-Since", meta.LastModified)
		}
	}

	appLog.Info("fetch start", "id", doc.ID, "url", doc.URL)

	resp, err := f.client.Do(req)
	if err != nil {
		// Network error; if we have a cached body, fall back to it.
		if len(cachedBody) > 0 {
			appLog.Error("fetch network error, using cached body", err, "id", doc.ID, "url", doc.URL)
			return Result{Document: doc, Body: cachedBody, FromCache: true}, nil
		}
		return Result{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return Result{}, readErr
		}

		newMeta := cacheEntry{
			URL:          doc.URL,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
		}
		if err := f.saveCache(cachePath, newMeta, body); err != nil {
			// Log but still return the freshly fetched body.
			appLog.Error("fetch cache save failed", err, "id", doc.ID, "url", doc.URL)
		}

		appLog.Info("fetch success", "id", doc.ID, "url", doc.URL, "status", resp.StatusCode, "bytes", len(body))
		return Result{Document: doc, Body: body}, nil

	case http.StatusNotModified:
		if len(cachedBody) == 0 {
			return Result{}, errors.New("received 304 Not Modified but no cached body available")
		}
		appLog.Info("fetch not modified; using cache", "id", doc.ID, "url", doc.URL)
		return Result{Document: doc, Body: cachedBody, FromCache: true}, nil

	default:
		if len(cachedBody) > 0 {
			appLog.Error("fetch non-OK, using cached body", errors.New(resp.Status), "id", doc.ID, "url", doc.URL, "status", resp.StatusCode)
			return Result{Document: doc, Body: cachedBody, FromCache: true}, nil
		}
		return Result{}, fmt.Errorf("fetch %s: %s", doc.ID, resp.Status)
	}
}

func (f *Fetcher) cachePathForURL(url string) string {
	sum := sha256.Sum256([]byte(url))
	// Use first 16 hex chars as directory name.
	return filepath.Join(f.cacheDir, hex.EncodeToString(sum[:8]))
}

func (f *Fetcher) loadCacheMeta(cachePath string) (cacheEntry, error) {
	var meta cacheEntry
	data, err := os.ReadFile(filepath.Join(cachePath, "meta.json"))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return cacheEntry{}, err
	}
	return meta, nil
}

func (f *Fetcher) loadCacheBody(cachePath string) ([]byte, error) {
	return os.ReadFile(filepath.Join(cachePath, "body.html"))
}

func (f *Fetcher) saveCache(cachePath string, meta cacheEntry, body []byte) error {
	// Write body first so meta never points at missing body.
	if err := os.WriteFile(filepath.Join(cachePath, "body.html"), body, 0o600); err != nil {
		return err
	}

	meta.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cachePath, "meta.json"), data, 0o600)
}
