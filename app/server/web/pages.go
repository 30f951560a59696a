package web

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"path"
	"strings"

	log "github.com/go-pkgz/lgr"

	"github.com/umputun/mill/app/docs"
	"github.com/umputun/mill/app/page"
	"github.com/umputun/mill/app/theme"
)

// handleIndex redirects to the workspace root listing.
func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.url("/view/"), http.StatusFound)
}

// handleView renders a workspace document, directory listing or, with ?raw=, the source text.
func (h *Handler) handleView(w http.ResponseWriter, r *http.Request) {
	rel := r.PathValue("path")
	doc := page.New("")

	if isRaw(r.URL.Query().Get("raw")) {
		text, err := h.docs.Raw(rel)
		if err != nil {
			h.renderError(w, r, err)
			return
		}
		doc.Title = path.Base("/" + rel)
		doc.Path = rel
		doc.Raw = true
		doc.Content = template.HTML("<pre>" + template.HTMLEscapeString(text) + "</pre>") //nolint:gosec // escaped
	} else {
		d, err := h.docs.Render(rel)
		if err != nil {
			h.renderError(w, r, err)
			return
		}
		if d.Dir && rel != "" && !strings.HasSuffix(rel, "/") {
			http.Redirect(w, r, h.url("/view/"+escapePath(rel)+"/"), http.StatusMovedPermanently)
			return
		}
		doc.Title = d.Title
		doc.Path = d.Path
		doc.Content = d.HTML
		if d.Dir {
			doc.Path = ""
		}
	}

	doc.Mount(page.ToggleIconSelector, "")
	data := h.newTemplateData(h.applyTheme(w, r, doc))
	if doc.Path != "" && !doc.Raw {
		data.RawURL = h.url("/view/"+escapePath(doc.Path)) + "?raw=1"
	}
	data.UpURL = h.upURL(rel)
	h.render(w, data, http.StatusOK)
}

// handleChromaCSS serves the syntax highlighting stylesheet for both themes.
func (h *Handler) handleChromaCSS(w http.ResponseWriter, _ *http.Request) {
	css, err := h.docs.StyleSheet()
	if err != nil {
		log.Printf("[ERROR] failed to generate highlight stylesheet: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write([]byte(css))
}

// renderError renders an error page for a document lookup failure. Error pages carry the theme
// but no toggle control.
func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := http.StatusInternalServerError, "internal error"
	switch {
	case errors.Is(err, docs.ErrNotFound):
		status, msg = http.StatusNotFound, "document not found"
	case errors.Is(err, docs.ErrBinary):
		status, msg = http.StatusUnsupportedMediaType, "binary documents can't be displayed"
	default:
		log.Printf("[ERROR] failed to render %s: %v", r.URL.Path, err)
	}

	doc := page.New(http.StatusText(status))
	doc.Content = template.HTML("<p class=\"error\">" + template.HTMLEscapeString(msg) + "</p>") //nolint:gosec // escaped
	data := h.newTemplateData(h.applyTheme(w, r, doc))
	data.UpURL = h.url("/view/")
	h.render(w, data, status)
}

// applyTheme runs the page-ready theme event on doc. Must be called before the response is written.
func (h *Handler) applyTheme(w http.ResponseWriter, r *http.Request, doc *page.Document) *page.Document {
	advertiseHints(w)
	mode := h.controller(w, r, doc).Initialize(r.Context())
	h.metrics.observe(theme.EventReady, mode.String())
	return doc
}

// render executes the page template into a buffer, so a template failure never leaves a partial page.
func (h *Handler) render(w http.ResponseWriter, data templateData, status int) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "page.html", data); err != nil {
		log.Printf("[ERROR] failed to execute template: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// upURL returns the link to the parent directory of rel, empty for the root.
func (h *Handler) upURL(rel string) string {
	rel = strings.Trim(rel, "/")
	if rel == "" {
		return ""
	}
	parent := path.Dir(rel)
	if parent == "." {
		return h.url("/view/")
	}
	return h.url("/view/" + escapePath(parent) + "/")
}

// isRaw reports whether the raw query value asks for the source text.
func isRaw(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// escapePath escapes each segment of a slash separated path.
func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}
