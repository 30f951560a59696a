package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-pkgz/lcw/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/mill/app/docs"
	"github.com/umputun/mill/app/enum"
	"github.com/umputun/mill/app/server/mocks"
)

func TestServer_Routes(t *testing.T) {
	rd := newMockRenderer()
	srv, err := New(rd, nil, nil, Config{Version: "test"})
	require.NoError(t, err)
	h := srv.routes()

	t.Run("ping", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", http.NoBody))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "pong", rec.Body.String())
	})

	t.Run("app info headers", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", http.NoBody))
		assert.Equal(t, "mill", rec.Header().Get("App-Name"))
		assert.Equal(t, "test", rec.Header().Get("App-Version"))
	})

	t.Run("index redirects to workspace root", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/view/", rec.Header().Get("Location"))
	})

	t.Run("view page", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/view/readme.md", http.NoBody))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "<p>hello</p>")
		assert.Contains(t, rec.Body.String(), `class="theme-toggle"`)
	})

	t.Run("static files", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/theme.js", http.NoBody))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "prefers-color-scheme")
	})

	t.Run("generated chroma stylesheet", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/chroma.css", http.NoBody))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, ".chroma {}", rec.Body.String())
	})

	t.Run("toggle", func(t *testing.T) {
		form := url.Values{"current": {"dark"}}
		req := httptest.NewRequest(http.MethodPost, "/web/theme", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		require.Len(t, rec.Result().Cookies(), 1)
		assert.Equal(t, "light", rec.Result().Cookies()[0].Value)
	})

	t.Run("metrics", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
		assert.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "mill_render_cache_hits_total 3")
		assert.Contains(t, body, "mill_render_cache_misses_total 2")
		assert.Contains(t, body, "mill_render_cache_keys 1")
		assert.Contains(t, body, `mill_theme_events_total{event="ready"} 1`)
		assert.Contains(t, body, `mill_theme_events_total{event="toggle"} 1`)
		assert.Contains(t, body, "go_goroutines")
	})
}

func TestServer_BodySizeLimit(t *testing.T) {
	srv, err := New(newMockRenderer(), nil, nil, Config{BodySizeLimit: 16})
	require.NoError(t, err)

	body := "current=" + strings.Repeat("x", 64)
	req := httptest.NewRequest(http.MethodPost, "/web/theme", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestServer_Defaults(t *testing.T) {
	srv, err := New(newMockRenderer(), nil, nil, Config{})
	require.NoError(t, err)
	assert.Equal(t, int64(64*1024), srv.bodySizeLimit())
	assert.Equal(t, int64(1000), srv.requestsPerSec())

	srv, err = New(newMockRenderer(), nil, nil, Config{BodySizeLimit: 10, RequestsPerSec: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(10), srv.bodySizeLimit())
	assert.Equal(t, int64(5), srv.requestsPerSec())
}

func TestServer_DBBackendRequiresStore(t *testing.T) {
	_, err := New(newMockRenderer(), nil, nil, Config{Backend: enum.BackendDB})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create web handler")
}

func TestServer_BaseURL(t *testing.T) {
	srv, err := New(newMockRenderer(), nil, nil, Config{BaseURL: "/mill"})
	require.NoError(t, err)
	h := srv.handler()

	t.Run("redirect base to base slash", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mill", http.NoBody))
		assert.Equal(t, http.StatusMovedPermanently, rec.Code)
		assert.Equal(t, "/mill/", rec.Header().Get("Location"))
	})

	t.Run("index under base", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mill/", http.NoBody))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/mill/view/", rec.Header().Get("Location"))
	})

	t.Run("view under base", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mill/view/readme.md", http.NoBody))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `href="/mill/static/style.css"`)
	})

	t.Run("outside base", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/view/readme.md", http.NoBody))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestServer_StartCleanup(t *testing.T) {
	var calls atomic.Int32
	exp := &mocks.ExpirerMock{
		DeleteExpiredFunc: func(ctx context.Context, cutoff time.Time) (int64, error) {
			if calls.Add(1) == 1 {
				return 0, errors.New("db locked")
			}
			return 2, nil
		},
	}
	srv, err := New(newMockRenderer(), nil, exp, Config{PrefsTTL: time.Hour, CleanupInterval: 10 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv.StartCleanup(ctx)

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	cutoff := exp.DeleteExpiredCalls()[0].Cutoff
	assert.WithinDuration(t, time.Now().Add(-time.Hour), cutoff, 5*time.Second)
}

func TestServer_Run(t *testing.T) {
	rd := newMockRenderer()
	watcherDone := make(chan struct{})
	rd.StartWatcherFunc = func(ctx context.Context) (<-chan struct{}, error) {
		go func() {
			<-ctx.Done()
			close(watcherDone)
		}()
		return watcherDone, nil
	}
	port := freePort(t)
	srv, err := New(rd, nil, nil, Config{Address: fmt.Sprintf("127.0.0.1:%d", port), Watch: true,
		ShutdownTimeout: time.Second})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- srv.Run(ctx) }()

	pingURL := fmt.Sprintf("http://127.0.0.1:%d/ping", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(pingURL) //nolint:gosec // test url
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && string(body) == "pong"
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-runErr:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	<-watcherDone
	assert.Len(t, rd.StartWatcherCalls(), 1)
}

func TestServer_RunWatcherError(t *testing.T) {
	rd := newMockRenderer()
	rd.StartWatcherFunc = func(ctx context.Context) (<-chan struct{}, error) {
		return nil, errors.New("no inotify")
	}
	srv, err := New(rd, nil, nil, Config{Address: "127.0.0.1:0", Watch: true})
	require.NoError(t, err)

	err = srv.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start workspace watcher")
}

func newMockRenderer() *mocks.RendererMock {
	return &mocks.RendererMock{
		RenderFunc: func(rel string) (docs.Document, error) {
			return docs.Document{Title: "Readme", Path: "readme.md", HTML: "<p>hello</p>"}, nil
		},
		RawFunc:        func(rel string) (string, error) { return "hello", nil },
		StyleSheetFunc: func() (string, error) { return ".chroma {}", nil },
		StatsFunc:      func() lcw.CacheStat { return lcw.CacheStat{Hits: 3, Misses: 2, Keys: 1} },
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}
