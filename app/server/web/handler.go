// Package web provides HTTP handlers for the document viewer UI.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/go-pkgz/routegroup"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/umputun/mill/app/docs"
	"github.com/umputun/mill/app/enum"
	"github.com/umputun/mill/app/page"
)

//go:generate moq -out mocks/renderer.go -pkg mocks -skip-ensure -fmt goimports . Renderer
//go:generate moq -out mocks/prefstore.go -pkg mocks -skip-ensure -fmt goimports . PrefStore

//go:embed static
var staticFS embed.FS

//go:embed templates
var templatesFS embed.FS

// StaticFS returns the embedded static filesystem for external use.
func StaticFS() (fs.FS, error) {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to get static sub-filesystem: %w", err)
	}
	return sub, nil
}

// Renderer defines the interface for workspace document rendering.
type Renderer interface {
	Render(rel string) (docs.Document, error)
	Raw(rel string) (string, error)
	StyleSheet() (string, error)
}

// PrefStore defines the interface for visitor-scoped preference storage, used by the db backend.
type PrefStore interface {
	Get(ctx context.Context, visitor, key string) (string, error)
	Set(ctx context.Context, visitor, key, value string) error
}

// Config holds web handler configuration.
type Config struct {
	BaseURL      string
	Title        string       // site title shown in the header
	Backend      enum.Backend // where theme preferences are kept
	SystemTheme  enum.Theme   // system preference assumed when the client sends no hint
	SecureCookie bool
	Registerer   prometheus.Registerer // metrics registry, nil disables metrics
}

// Handler handles web UI requests.
type Handler struct {
	docs         Renderer
	prefs        PrefStore
	tmpl         *template.Template
	baseURL      string
	title        string
	backend      enum.Backend
	systemLight  bool
	secureCookie bool
	metrics      *metrics
}

// New creates a new web handler. prefs is required for the db backend and ignored otherwise.
func New(rd Renderer, prefs PrefStore, cfg Config) (*Handler, error) {
	if cfg.Backend == enum.BackendDB && prefs == nil {
		return nil, fmt.Errorf("preference store is required for %s backend", cfg.Backend)
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	title := cfg.Title
	if title == "" {
		title = "mill"
	}

	return &Handler{
		docs:         rd,
		prefs:        prefs,
		tmpl:         tmpl,
		baseURL:      cfg.BaseURL,
		title:        title,
		backend:      cfg.Backend,
		systemLight:  cfg.SystemTheme == enum.ThemeLight,
		secureCookie: cfg.SecureCookie,
		metrics:      newMetrics(cfg.Registerer),
	}, nil
}

// Register registers web UI routes on the given router.
func (h *Handler) Register(r *routegroup.Bundle) {
	r.HandleFunc("GET /{$}", h.handleIndex)
	r.HandleFunc("GET /view/{path...}", h.handleView)
	r.HandleFunc("GET /static/chroma.css", h.handleChromaCSS)
	r.HandleFunc("POST /web/theme", h.handleThemeToggle)
	r.HandleFunc("POST /web/theme/system", h.handleSystemChange)
}

// parseTemplates parses the page template from embedded filesystem.
func parseTemplates() (*template.Template, error) {
	content, err := templatesFS.ReadFile("templates/page.html")
	if err != nil {
		return nil, fmt.Errorf("read page.html: %w", err)
	}
	tmpl, err := template.New("page.html").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parse page.html: %w", err)
	}
	return tmpl, nil
}

// templateData holds data passed to templates.
type templateData struct {
	SiteTitle string
	Title     string
	Content   template.HTML
	BaseURL   string
	Theme     string // data-theme attribute, empty if absent
	Toggle    bool   // page has the theme toggle control
	Icon      string // toggle icon glyph
	Raw       bool
	RawURL    string
	UpURL     string
}

// newTemplateData collects what the template needs from a document after the theme was applied.
func (h *Handler) newTemplateData(doc *page.Document) templateData {
	return templateData{
		SiteTitle: h.title,
		Title:     doc.Title,
		Content:   doc.Content,
		BaseURL:   h.baseURL,
		Theme:     doc.AttrValue(page.ThemeAttr),
		Toggle:    doc.Has(page.ToggleIconSelector),
		Icon:      doc.Text(page.ToggleIconSelector),
		Raw:       doc.Raw,
	}
}

// url returns a URL path with the base URL prefix.
func (h *Handler) url(path string) string {
	return h.baseURL + path
}

// cookiePath returns the path for cookies (base URL with trailing slash or "/").
func (h *Handler) cookiePath() string {
	if h.baseURL == "" {
		return "/"
	}
	return h.baseURL + "/"
}

// metrics counts theme events and resulting modes.
type metrics struct {
	events *prometheus.CounterVec
	modes  *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		return nil
	}
	f := promauto.With(reg)
	return &metrics{
		events: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mill",
			Subsystem: "theme",
			Name:      "events_total",
			Help:      "Theme controller events by type.",
		}, []string{"event"}),
		modes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mill",
			Subsystem: "theme",
			Name:      "applied_total",
			Help:      "Effective theme modes applied to rendered pages and toggles.",
		}, []string{"mode"}),
	}
}

func (m *metrics) observe(event fmt.Stringer, mode string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(event.String()).Inc()
	if mode != "" {
		m.modes.WithLabelValues(mode).Inc()
	}
}
