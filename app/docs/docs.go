// Package docs renders workspace documents to HTML. Markdown goes through goldmark, other text
// files are highlighted with chroma and directories become listings. Rendered files are cached
// until the file changes on disk.
package docs

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-pkgz/lcw/v2"
	log "github.com/go-pkgz/lgr"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

var (
	// ErrNotFound is returned for paths missing from the workspace or pointing outside of it.
	ErrNotFound = errors.New("document not found")
	// ErrBinary is returned for files that are not valid UTF-8 text.
	ErrBinary = errors.New("binary document")
)

// Document is a rendered workspace entry.
type Document struct {
	Title      string
	Path       string // slash separated path relative to the workspace root
	HTML       template.HTML
	Dir        bool
	RenderedAt time.Time
}

// Config defines workspace options.
type Config struct {
	Root         string // workspace root directory
	CacheEntries int    // max rendered files kept in cache
}

// Service renders documents from a workspace directory.
type Service struct {
	root        string
	realRoot    string // root with symlinks resolved
	cache       lcw.LoadingCache[Document]
	md          goldmark.Markdown
	highlighter *Highlighter
}

// NewService makes a renderer for the workspace at cfg.Root.
func NewService(cfg Config) (*Service, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root %s: %w", cfg.Root, err)
	}
	st, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("workspace root: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("workspace root %s is not a directory", root)
	}
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root links %s: %w", root, err)
	}

	entries := cfg.CacheEntries
	if entries <= 0 {
		entries = 1000
	}
	cache, err := lcw.NewLruCache(lcw.NewOpts[Document]().MaxKeys(entries))
	if err != nil {
		return nil, fmt.Errorf("failed to create render cache: %w", err)
	}

	return &Service{
		root:     root,
		realRoot: realRoot,
		cache:    cache,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Footnote, extension.DefinitionList),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
		highlighter: NewHighlighter(),
	}, nil
}

// Root returns the absolute workspace root.
func (s *Service) Root() string {
	return s.root
}

// Render returns the rendered document at rel, a slash separated path inside the workspace.
// Files are served from cache while the cached copy is newer than the file itself.
func (s *Service) Render(rel string) (Document, error) {
	abs, info, err := s.resolve(rel)
	if err != nil {
		return Document{}, err
	}
	if info.IsDir() {
		return s.renderDir(abs)
	}

	if cached, ok := s.cache.Peek(abs); ok {
		if cached.RenderedAt.After(info.ModTime()) {
			log.Printf("[DEBUG] returning cached %s", cached.Path)
			// go through Get to keep hit stats and LRU order
			return s.cache.Get(abs, func() (Document, error) { return cached, nil }) //nolint:wrapcheck // no load
		}
		s.Invalidate(abs)
	}

	doc, err := s.cache.Get(abs, func() (Document, error) {
		log.Printf("[DEBUG] rendering fresh copy of %s", abs)
		return s.renderFile(abs)
	})
	if err != nil {
		return Document{}, fmt.Errorf("render %s: %w", rel, err)
	}
	return doc, nil
}

// Raw returns the text of the file at rel as is.
func (s *Service) Raw(rel string) (string, error) {
	abs, info, err := s.resolve(rel)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("raw %s: %w", rel, ErrNotFound)
	}
	data, err := os.ReadFile(abs) //nolint:gosec // path is confined to the workspace
	if err != nil {
		return "", fmt.Errorf("read %s: %w", rel, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("raw %s: %w", rel, ErrBinary)
	}
	return string(data), nil
}

// StyleSheet returns the CSS for highlighted code.
func (s *Service) StyleSheet() (string, error) {
	return s.highlighter.StyleSheet()
}

// Invalidate drops the cached rendering of the file at absolute path abs.
func (s *Service) Invalidate(abs string) {
	s.cache.Invalidate(func(k string) bool { return k == abs })
}

// Stats returns render cache statistics.
func (s *Service) Stats() lcw.CacheStat {
	return s.cache.Stat()
}

// Close releases the render cache.
func (s *Service) Close() error {
	if err := s.cache.Close(); err != nil {
		return fmt.Errorf("close render cache: %w", err)
	}
	return nil
}

// resolve maps rel to an absolute path inside the workspace.
// Symlinks are followed only while their target stays inside the workspace.
func (s *Service) resolve(rel string) (string, fs.FileInfo, error) {
	abs := filepath.Join(s.root, filepath.Clean("/"+filepath.FromSlash(rel)))
	if !within(s.root, abs) {
		return "", nil, fmt.Errorf("path %q outside of workspace: %w", rel, ErrNotFound)
	}
	info, err := os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil, fmt.Errorf("stat %q: %w", rel, ErrNotFound)
	}
	if err != nil {
		return "", nil, fmt.Errorf("stat %q: %w", rel, err)
	}
	target, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", nil, fmt.Errorf("resolve links %q: %w", rel, err)
	}
	if !within(s.realRoot, target) {
		return "", nil, fmt.Errorf("link %q points outside of workspace: %w", rel, ErrNotFound)
	}
	return abs, info, nil
}

// within reports whether path is base itself or below it.
func within(base, path string) bool {
	r, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return r != ".." && !strings.HasPrefix(r, ".."+string(filepath.Separator))
}

func (s *Service) renderFile(abs string) (Document, error) {
	data, err := os.ReadFile(abs) //nolint:gosec // path is confined to the workspace
	if err != nil {
		return Document{}, fmt.Errorf("read: %w", err)
	}
	if !utf8.Valid(data) {
		return Document{}, ErrBinary
	}

	doc := Document{Path: s.relPath(abs), Title: stem(abs), RenderedAt: time.Now()}
	if !isMarkdown(abs) {
		doc.HTML = s.highlighter.Code(string(data), filepath.Base(abs))
		return doc, nil
	}

	meta, body := frontMatter(data)
	if meta.Title != "" {
		doc.Title = meta.Title
	}
	var buf bytes.Buffer
	if err := s.md.Convert(body, &buf); err != nil {
		return Document{}, fmt.Errorf("convert markdown: %w", err)
	}
	doc.HTML = template.HTML(buf.String()) //nolint:gosec // goldmark escapes raw html by default
	return doc, nil
}

func (s *Service) renderDir(abs string) (Document, error) {
	entries, err := os.ReadDir(abs)
	if err != nil {
		return Document{}, fmt.Errorf("read dir: %w", err)
	}
	slices.SortFunc(entries, func(a, b fs.DirEntry) int {
		if a.IsDir() != b.IsDir() {
			if a.IsDir() {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Name(), b.Name())
	})

	rel := s.relPath(abs)
	title := filepath.Base(abs)
	if rel == "" {
		title = "workspace"
	}

	var buf bytes.Buffer
	buf.WriteString(`<ul class="listing">`)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		name, href := e.Name(), url.PathEscape(e.Name())
		if e.IsDir() {
			name, href = name+"/", href+"/"
		}
		buf.WriteString(`<li><a href="` + template.HTMLEscapeString(href) + `">` +
			template.HTMLEscapeString(name) + "</a></li>")
	}
	buf.WriteString("</ul>")

	return Document{Title: title, Path: rel, HTML: template.HTML(buf.String()), Dir: true, //nolint:gosec // escaped
		RenderedAt: time.Now()}, nil
}

func (s *Service) relPath(abs string) string {
	r, err := filepath.Rel(s.root, abs)
	if err != nil || r == "." {
		return ""
	}
	return filepath.ToSlash(r)
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
