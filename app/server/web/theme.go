package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	log "github.com/go-pkgz/lgr"
	"github.com/google/uuid"

	"github.com/umputun/mill/app/enum"
	"github.com/umputun/mill/app/page"
	"github.com/umputun/mill/app/store"
	"github.com/umputun/mill/app/theme"
)

const (
	visitorCookie   = "visitor"
	cookieMaxAge    = 365 * 24 * 60 * 60 // 1 year
	colorSchemeHint = "Sec-CH-Prefers-Color-Scheme"
)

// handleThemeToggle switches the page theme to the opposite of the one the caller rendered.
// The form field "current" carries the data-theme attribute of that page, empty if none.
func (h *Handler) handleThemeToggle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	doc := page.New("")
	if current := r.FormValue("current"); current != "" {
		doc.SetAttr(page.ThemeAttr, current)
	}
	mode := h.controller(w, r, doc).Toggle(r.Context())
	h.metrics.observe(theme.EventToggle, mode.String())
	log.Printf("[DEBUG] theme toggled to %s", mode)

	if r.Header.Get("HX-Request") == "true" {
		// trigger full page refresh
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, h.backURL(r), http.StatusSeeOther)
}

// handleSystemChange reacts to a change of the system color scheme reported by the browser.
func (h *Handler) handleSystemChange(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}
	if p := r.FormValue("prefers"); p != "" && p != enum.ThemeLight.String() && p != enum.ThemeDark.String() {
		http.Error(w, "prefers must be light or dark", http.StatusBadRequest)
		return
	}

	h.controller(w, r, page.New("")).OnSystemPreferenceChange(r.Context())
	h.metrics.observe(theme.EventSystemChange, "")
	w.WriteHeader(http.StatusNoContent)
}

// controller makes a request-scoped theme controller over doc.
func (h *Handler) controller(w http.ResponseWriter, r *http.Request, doc *page.Document) *theme.Controller {
	return theme.New(h.storage(w, r), doc, h.systemSignal(r))
}

// storage returns the preference storage for the request visitor according to the backend.
func (h *Handler) storage(w http.ResponseWriter, r *http.Request) theme.Storage {
	if h.backend == enum.BackendDB {
		return &visitorStorage{prefs: h.prefs, visitor: h.visitor(w, r)}
	}
	return &cookieStorage{r: r, w: w, cookie: h.cookie, written: map[string]string{}}
}

// visitor returns the visitor id from cookie, issuing a new one if missing or malformed.
func (h *Handler) visitor(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(visitorCookie); err == nil {
		if id, perr := uuid.Parse(c.Value); perr == nil {
			return id.String()
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, h.cookie(visitorCookie, id))
	log.Printf("[DEBUG] new visitor %s", id)
	return id
}

func (h *Handler) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     h.cookiePath(),
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

// systemSignal returns the system color scheme signal for the request.
func (h *Handler) systemSignal(r *http.Request) theme.SystemSignal {
	return clientHint{r: r, fallback: h.systemLight}
}

// backURL returns the local page the request came from, or the workspace root.
func (h *Handler) backURL(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != r.Host) {
		return h.url("/view/")
	}
	if !strings.HasPrefix(ref.Path, h.cookiePath()) {
		return h.url("/view/")
	}
	back := ref.Path
	if ref.RawQuery != "" {
		back += "?" + ref.RawQuery
	}
	return back
}

// advertiseHints asks the browser to send the color scheme client hint on next requests.
func advertiseHints(w http.ResponseWriter) {
	w.Header().Set("Accept-CH", colorSchemeHint)
	w.Header().Set("Critical-CH", colorSchemeHint)
	w.Header().Add("Vary", colorSchemeHint)
}

// clientHint reports the system preference from the request. The color scheme client hint wins,
// then the "prefers" form value, then the configured fallback.
type clientHint struct {
	r        *http.Request
	fallback bool
}

// PrefersLight implements theme.SystemSignal.
func (c clientHint) PrefersLight() bool {
	if v := strings.Trim(strings.TrimSpace(c.r.Header.Get(colorSchemeHint)), `"`); v != "" {
		switch v {
		case enum.ThemeLight.String():
			return true
		case enum.ThemeDark.String():
			return false
		}
	}
	switch c.r.FormValue("prefers") {
	case enum.ThemeLight.String():
		return true
	case enum.ThemeDark.String():
		return false
	}
	return c.fallback
}

// cookieStorage keeps preferences in request cookies. Values set during the request are read back
// from the response, since the request cookies still hold the old ones.
type cookieStorage struct {
	r       *http.Request
	w       http.ResponseWriter
	cookie  func(name, value string) *http.Cookie
	written map[string]string
}

// Get implements theme.Storage.
func (s *cookieStorage) Get(_ context.Context, key string) (string, error) {
	if v, ok := s.written[key]; ok {
		return v, nil
	}
	c, err := s.r.Cookie(key)
	if errors.Is(err, http.ErrNoCookie) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return c.Value, nil
}

// Set implements theme.Storage.
func (s *cookieStorage) Set(_ context.Context, key, value string) error {
	s.written[key] = value
	http.SetCookie(s.w, s.cookie(key, value))
	return nil
}

// visitorStorage keeps preferences in the preference store under the visitor id.
type visitorStorage struct {
	prefs   PrefStore
	visitor string
}

// Get implements theme.Storage.
func (s *visitorStorage) Get(ctx context.Context, key string) (string, error) {
	return s.prefs.Get(ctx, s.visitor, key)
}

// Set implements theme.Storage.
func (s *visitorStorage) Set(ctx context.Context, key, value string) error {
	return s.prefs.Set(ctx, s.visitor, key, value)
}
