// Package page provides the server-side model of a rendered HTML document: attributes of the
// root element and the few addressable nodes handlers need to update before rendering.
package page

import "html/template"

// well-known names used by the preference controller and the templates
const (
	ThemeAttr          = "data-theme"
	ToggleIconSelector = ".theme-toggle .icon"
)

// Document is a page being prepared for rendering. It is not safe for concurrent use,
// each request builds its own.
type Document struct {
	Title   string
	Path    string        // workspace path the page was rendered from
	Content template.HTML // rendered body
	Raw     bool          // body is raw text rather than rendered markup

	attrs map[string]string
	nodes map[string]string
}

// New makes an empty document with the given title.
func New(title string) *Document {
	return &Document{Title: title, attrs: map[string]string{}, nodes: map[string]string{}}
}

// Attr returns a root element attribute and whether it is set.
func (d *Document) Attr(name string) (string, bool) {
	v, ok := d.attrs[name]
	return v, ok
}

// AttrValue returns a root element attribute or empty string, for use in templates.
func (d *Document) AttrValue(name string) string {
	return d.attrs[name]
}

// HasAttr reports whether a root element attribute is set.
func (d *Document) HasAttr(name string) bool {
	_, ok := d.attrs[name]
	return ok
}

// SetAttr sets a root element attribute.
func (d *Document) SetAttr(name, value string) {
	d.attrs[name] = value
}

// RemoveAttr removes a root element attribute, no-op if absent.
func (d *Document) RemoveAttr(name string) {
	delete(d.attrs, name)
}

// Mount makes a node addressable by selector with the initial text.
// Pages without a given control never mount it and lookups for it fail.
func (d *Document) Mount(selector, text string) {
	d.nodes[selector] = text
}

// Has reports whether a node is mounted for selector.
func (d *Document) Has(selector string) bool {
	_, ok := d.nodes[selector]
	return ok
}

// Text returns the text of a mounted node, empty if not mounted.
func (d *Document) Text(selector string) string {
	return d.nodes[selector]
}

// SetText replaces the text of the node matched by selector.
// Returns false and does nothing if no such node is mounted.
func (d *Document) SetText(selector, text string) bool {
	if _, ok := d.nodes[selector]; !ok {
		return false
	}
	d.nodes[selector] = text
	return true
}
