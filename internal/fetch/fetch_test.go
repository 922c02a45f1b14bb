package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pageServer struct {
	hits   atomic.Int32
	status atomic.Int32
}

func newPageServer(t *testing.T) (*pageServer, *httptest.Server) {
	t.Helper()
	ps := &pageServer{}
	ps.status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ps.hits.Add(1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		status := int(ps.status.Load())
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte("<html>schedule</html>"))
	}))
	t.Cleanup(srv.Close)
	return ps, srv
}

func TestFetchCachesBody(t *testing.T) {
	ps, srv := newPageServer(t)
	dir := t.TempDir()
	doc := Document{ID: "schedule", URL: srv.URL + "/dc-23-schedule.html"}

	res, err := New(Options{CacheDir: dir}).Fetch(context.Background(), doc)
	require.NoError(t, err)
	assert.False(t, res.FromCache)
	assert.Equal(t, "<html>schedule</html>", string(res.Body))

	// Second run reuses the cache without touching the network.
	res, err = New(Options{CacheDir: dir}).Fetch(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	assert.Equal(t, "<html>schedule</html>", string(res.Body))
	assert.Equal(t, int32(1), ps.hits.Load())
}

func TestFetchRefreshRevalidates(t *testing.T) {
	ps, srv := newPageServer(t)
	dir := t.TempDir()
	doc := Document{ID: "schedule", URL: srv.URL}

	_, err := New(Options{CacheDir: dir}).Fetch(context.Background(), doc)
	require.NoError(t, err)

	res, err := New(Options{CacheDir: dir, Refresh: true}).Fetch(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, res.FromCache, "304 keeps the cached body")
	assert.Equal(t, "<html>schedule</html>", string(res.Body))
	assert.Equal(t, int32(2), ps.hits.Load())
}

func TestFetchErrorFallsBackToCache(t *testing.T) {
	ps, srv := newPageServer(t)
	dir := t.TempDir()
	doc := Document{ID: "speakers", URL: srv.URL + "/speakers"}

	// No cache yet: a server error is fatal.
	ps.status.Store(http.StatusInternalServerError)
	_, err := New(Options{CacheDir: dir}).Fetch(context.Background(), doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")

	ps.status.Store(http.StatusOK)
	_, err = New(Options{CacheDir: dir}).Fetch(context.Background(), doc)
	require.NoError(t, err)

	// Origin outage during refresh.
	srv.Close()
	res, err := New(Options{CacheDir: dir, Refresh: true}).Fetch(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, res.FromCache)
}

type stubRenderer struct {
	body  []byte
	err   error
	calls int
}

func (s *stubRenderer) Render(_ context.Context, _ string) ([]byte, error) {
	s.calls++
	return s.body, s.err
}

func TestFetchWithRenderer(t *testing.T) {
	dir := t.TempDir()
	doc := Document{ID: "schedule", URL: "https://example.invalid/schedule"}
	r := &stubRenderer{body: []byte("<html>rendered</html>")}

	res, err := New(Options{CacheDir: dir, Renderer: r}).Fetch(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, "<html>rendered</html>", string(res.Body))

	r.err = errors.New("browser crashed")
	res, err = New(Options{CacheDir: dir, Renderer: r, Refresh: true}).Fetch(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	assert.Equal(t, 2, r.calls)
}

func TestFetchEmptyURL(t *testing.T) {
	_, err := New(Options{CacheDir: t.TempDir()}).Fetch(context.Background(), Document{ID: "x"})
	assert.Error(t, err)
}
