package web

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/mill/app/docs"
	"github.com/umputun/mill/app/enum"
	"github.com/umputun/mill/app/server/web/mocks"
)

func TestHandler_HandleIndex(t *testing.T) {
	h := newTestHandler(t, &mocks.RendererMock{}, Config{BaseURL: "/mill"})
	rec := httptest.NewRecorder()
	h.handleIndex(rec, httptest.NewRequest(http.MethodGet, "/mill/", http.NoBody))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/mill/view/", rec.Header().Get("Location"))
}

func TestHandler_HandleView_Theme(t *testing.T) {
	rd := &mocks.RendererMock{
		RenderFunc: func(rel string) (docs.Document, error) {
			return docs.Document{Title: "Readme", Path: "readme.md", HTML: "<p>hello</p>"}, nil
		},
	}

	tests := []struct {
		name        string
		cookie      string
		hint        string
		systemLight bool
		wantAttr    string // empty means no data-theme attribute
		wantIcon    string
		wantCookie  string // empty means no theme cookie written
	}{
		{name: "nothing stored, dark system", wantIcon: "☀️"},
		{name: "nothing stored, light hint", hint: `"light"`, wantIcon: "🌙"},
		{name: "nothing stored, light default", systemLight: true, wantIcon: "🌙"},
		{name: "stored light", cookie: "light", wantAttr: "light", wantIcon: "🌙", wantCookie: "light"},
		{name: "stored dark beats light hint", cookie: "dark", hint: `"light"`, wantAttr: "dark", wantIcon: "☀️",
			wantCookie: "dark"},
		{name: "stored auto", cookie: "auto", hint: `"light"`, wantIcon: "☀️", wantCookie: "auto"},
		{name: "stored system alias", cookie: "system", wantIcon: "☀️", wantCookie: "auto"},
		{name: "invalid stored value", cookie: "blue", hint: `"light"`, wantIcon: "🌙"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{}
			if tc.systemLight {
				cfg.SystemTheme = enum.ThemeLight
			}
			h := newTestHandler(t, rd, cfg)
			req := httptest.NewRequest(http.MethodGet, "/view/readme.md", http.NoBody)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "theme", Value: tc.cookie})
			}
			if tc.hint != "" {
				req.Header.Set(colorSchemeHint, tc.hint)
			}
			rec := httptest.NewRecorder()
			newTestRouter(h).ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			body := rec.Body.String()
			if tc.wantAttr == "" {
				assert.Contains(t, body, `<html lang="en">`)
				assert.NotContains(t, body, "data-theme=")
			} else {
				assert.Contains(t, body, `<html lang="en" data-theme="`+tc.wantAttr+`">`)
				assert.Contains(t, body, `name="current" value="`+tc.wantAttr+`"`)
			}
			assert.Contains(t, body, `<span class="icon">`+tc.wantIcon+`</span>`)

			c := responseCookie(rec, "theme")
			if tc.wantCookie == "" {
				assert.Nil(t, c)
			} else {
				require.NotNil(t, c)
				assert.Equal(t, tc.wantCookie, c.Value)
			}
			assert.Equal(t, colorSchemeHint, rec.Header().Get("Accept-CH"))
			assert.Contains(t, rec.Header().Values("Vary"), colorSchemeHint)
		})
	}
}

func TestHandler_HandleView_Document(t *testing.T) {
	rd := &mocks.RendererMock{
		RenderFunc: func(rel string) (docs.Document, error) {
			return docs.Document{Title: "Guide", Path: "notes/guide.md", HTML: "<h2>Intro</h2>"}, nil
		},
	}
	h := newTestHandler(t, rd, Config{BaseURL: "/mill"})
	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/view/notes/guide.md", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, rd.RenderCalls(), 1)
	assert.Equal(t, "notes/guide.md", rd.RenderCalls()[0].Rel)
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Guide - mill</title>")
	assert.Contains(t, body, "<h2>Intro</h2>")
	assert.Contains(t, body, `href="/mill/view/notes/guide.md?raw=1"`)
	assert.Contains(t, body, `href="/mill/view/notes/"`)
	assert.Contains(t, body, `action="/mill/web/theme"`)
	assert.Contains(t, body, `class="theme-toggle"`)
	assert.Contains(t, body, `src="/mill/static/theme.js"`)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestHandler_HandleView_Directory(t *testing.T) {
	rd := &mocks.RendererMock{
		RenderFunc: func(rel string) (docs.Document, error) {
			return docs.Document{Title: "notes", Path: "notes", HTML: `<ul class="listing"></ul>`, Dir: true}, nil
		},
	}
	h := newTestHandler(t, rd, Config{})
	router := newTestRouter(h)

	t.Run("redirects to trailing slash", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/view/notes", http.NoBody))
		assert.Equal(t, http.StatusMovedPermanently, rec.Code)
		assert.Equal(t, "/view/notes/", rec.Header().Get("Location"))
	})

	t.Run("renders listing without raw link", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/view/notes/", http.NoBody))
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `<ul class="listing"></ul>`)
		assert.NotContains(t, body, "raw=1")
		assert.Contains(t, body, `href="/view/"`)
	})
}

func TestHandler_HandleView_Raw(t *testing.T) {
	rd := &mocks.RendererMock{
		RawFunc: func(rel string) (string, error) { return "package main\n// <b>\n", nil },
	}
	h := newTestHandler(t, rd, Config{})
	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/view/cmd/main.go?raw=true", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, rd.RawCalls(), 1)
	assert.Equal(t, "cmd/main.go", rd.RawCalls()[0].Rel)
	body := rec.Body.String()
	assert.Contains(t, body, "<title>main.go - mill</title>")
	assert.Contains(t, body, "// &lt;b&gt;")
	assert.Contains(t, body, `class="content raw"`)
	assert.Contains(t, body, `class="theme-toggle"`)
	assert.NotContains(t, body, "raw=1")
}

func TestHandler_HandleView_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantText   string
	}{
		{name: "not found", err: docs.ErrNotFound, wantStatus: http.StatusNotFound, wantText: "document not found"},
		{name: "binary", err: docs.ErrBinary, wantStatus: http.StatusUnsupportedMediaType,
			wantText: "binary documents can&#39;t be displayed"},
		{name: "wrapped not found", err: errors.Join(errors.New("stat"), docs.ErrNotFound), wantStatus: http.StatusNotFound,
			wantText: "document not found"},
		{name: "other", err: errors.New("disk failure"), wantStatus: http.StatusInternalServerError, wantText: "internal error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rd := &mocks.RendererMock{
				RenderFunc: func(rel string) (docs.Document, error) { return docs.Document{}, tc.err },
			}
			h := newTestHandler(t, rd, Config{})
			req := httptest.NewRequest(http.MethodGet, "/view/missing.md", http.NoBody)
			req.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})
			rec := httptest.NewRecorder()
			newTestRouter(h).ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			body := rec.Body.String()
			assert.Contains(t, body, tc.wantText)
			assert.Contains(t, body, `data-theme="dark"`, "error pages keep the theme")
			assert.NotContains(t, body, `class="theme-toggle"`, "error pages have no toggle")
			assert.NotContains(t, body, "disk failure")
		})
	}
}

func TestHandler_HandleChromaCSS(t *testing.T) {
	t.Run("serves stylesheet", func(t *testing.T) {
		rd := &mocks.RendererMock{StyleSheetFunc: func() (string, error) { return ".chroma { color: red }", nil }}
		h := newTestHandler(t, rd, Config{})
		rec := httptest.NewRecorder()
		newTestRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/chroma.css", http.NoBody))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/css; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, ".chroma { color: red }", rec.Body.String())
	})

	t.Run("generation error", func(t *testing.T) {
		rd := &mocks.RendererMock{StyleSheetFunc: func() (string, error) { return "", errors.New("no style") }}
		h := newTestHandler(t, rd, Config{})
		rec := httptest.NewRecorder()
		h.handleChromaCSS(rec, httptest.NewRequest(http.MethodGet, "/static/chroma.css", http.NoBody))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHandler_UpURL(t *testing.T) {
	h := newTestHandler(t, &mocks.RendererMock{}, Config{BaseURL: "/m"})
	tests := []struct {
		rel      string
		expected string
	}{
		{rel: "", expected: ""},
		{rel: "/", expected: ""},
		{rel: "a.md", expected: "/m/view/"},
		{rel: "dir/", expected: "/m/view/"},
		{rel: "dir/sub/a.md", expected: "/m/view/dir/sub/"},
		{rel: "my dir/a.md", expected: "/m/view/my%20dir/"},
	}
	for _, tc := range tests {
		t.Run(tc.rel, func(t *testing.T) {
			assert.Equal(t, tc.expected, h.upURL(tc.rel))
		})
	}
}

func TestIsRaw(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", "yes"} {
		assert.True(t, isRaw(v), v)
	}
	for _, v := range []string{"", "0", "false", "no", "on", "raw"} {
		assert.False(t, isRaw(v), v)
	}
}

func TestEscapePath(t *testing.T) {
	assert.Equal(t, "a/b%20c/d%3Fe.md", escapePath("a/b c/d?e.md"))
	assert.Equal(t, "plain.md", escapePath("plain.md"))
}
