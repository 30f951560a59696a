// Package theme resolves, applies and persists the light/dark display preference of a page.
//
// A Controller owns no state of its own. It works over three injected collaborators: the
// durable storage holding the visitor's choice, the document being rendered and the system
// (browser or OS) color scheme signal. Stored choice always wins over the system signal; with
// nothing stored, the document carries no theme attribute and default styling follows the system.
package theme

import (
	"context"
	"errors"

	log "github.com/go-pkgz/lgr"

	"github.com/umputun/mill/app/enum"
	"github.com/umputun/mill/app/page"
	"github.com/umputun/mill/app/store"
)

//go:generate moq -out mocks/storage.go -pkg mocks -skip-ensure -fmt goimports . Storage
//go:generate moq -out mocks/systemsignal.go -pkg mocks -skip-ensure -fmt goimports . SystemSignal

// StorageKey is the storage entry holding the visitor's preference.
const StorageKey = "theme"

// Storage is a durable key-value entry holder scoped to a single visitor.
// Get returns store.ErrNotFound if the key was never set.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Document is the page the preference is applied to.
// SetText updates the node matched by selector and returns false if there is no such node.
type Document interface {
	Attr(name string) (string, bool)
	SetAttr(name, value string)
	RemoveAttr(name string)
	SetText(selector, text string) bool
}

// SystemSignal reports the system-level color scheme preference.
type SystemSignal interface {
	PrefersLight() bool
}

// Event is an entry point the controller reacts to.
type Event int

// events delivered to Controller.Handle
const (
	EventReady        Event = iota // page is ready to be rendered
	EventToggle                    // user clicked the toggle control
	EventSystemChange              // system color scheme changed
)

func (e Event) String() string {
	switch e {
	case EventReady:
		return "ready"
	case EventToggle:
		return "toggle"
	case EventSystemChange:
		return "system-change"
	default:
		return "unknown"
	}
}

// Controller applies the display preference to a document.
type Controller struct {
	store  Storage
	doc    Document
	system SystemSignal
}

// New makes a controller over the given storage, document and system signal.
func New(st Storage, doc Document, sys SystemSignal) *Controller {
	return &Controller{store: st, doc: doc, system: sys}
}

// Handle dispatches an event to the matching operation.
func (c *Controller) Handle(ctx context.Context, ev Event) {
	switch ev {
	case EventReady:
		c.Initialize(ctx)
	case EventToggle:
		c.Toggle(ctx)
	case EventSystemChange:
		c.OnSystemPreferenceChange(ctx)
	default:
		log.Printf("[WARN] unknown theme event %d", ev)
	}
}

// Initialize applies the stored preference. With nothing stored it takes the system signal as
// the effective mode without persisting it: the theme attribute is removed and only the icon
// reflects the effective mode. Returns the effective mode, light or dark.
func (c *Controller) Initialize(ctx context.Context) enum.Theme {
	if mode, ok := c.stored(ctx); ok {
		c.ApplyMode(ctx, mode)
		if mode.Explicit() {
			return mode
		}
		return c.systemMode()
	}

	effective := c.systemMode()
	c.doc.RemoveAttr(page.ThemeAttr)
	c.UpdateIcon(effective)
	return effective
}

// ApplyMode renders and persists mode. Auto removes the theme attribute and defers to the
// system, light and dark are set as is. Storage write failures are logged and ignored.
func (c *Controller) ApplyMode(ctx context.Context, mode enum.Theme) {
	if mode.Explicit() {
		c.doc.SetAttr(page.ThemeAttr, mode.String())
	} else {
		mode = enum.ThemeAuto
		c.doc.RemoveAttr(page.ThemeAttr)
	}

	if err := c.store.Set(ctx, StorageKey, mode.String()); err != nil {
		log.Printf("[WARN] failed to persist theme %s: %v", mode, err)
	}
	c.UpdateIcon(mode)
}

// UpdateIcon sets the toggle icon for mode. The glyph invites the next state: light shows the
// moon, anything else the sun. Pages without the toggle control are left untouched.
func (c *Controller) UpdateIcon(mode enum.Theme) {
	if !c.doc.SetText(page.ToggleIconSelector, mode.Glyph()) {
		log.Printf("[DEBUG] no theme toggle on page, icon not updated")
	}
}

// Toggle switches the rendered mode to its opposite and returns the new mode.
// The current mode is read from the document attribute, not from storage.
func (c *Controller) Toggle(ctx context.Context) enum.Theme {
	current := enum.ThemeDark
	if v, ok := c.doc.Attr(page.ThemeAttr); ok && v == enum.ThemeLight.String() {
		current = enum.ThemeLight
	}
	next := current.Toggle()
	c.ApplyMode(ctx, next)
	return next
}

// OnSystemPreferenceChange re-applies auto mode unless the visitor made an explicit choice.
func (c *Controller) OnSystemPreferenceChange(ctx context.Context) {
	if mode, ok := c.stored(ctx); ok && mode.Explicit() {
		log.Printf("[DEBUG] system theme change ignored, stored preference is %s", mode)
		return
	}
	c.ApplyMode(ctx, enum.ThemeAuto)
}

// stored returns the persisted preference. Missing, unreadable and invalid entries all count
// as no preference.
func (c *Controller) stored(ctx context.Context) (enum.Theme, bool) {
	v, err := c.store.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("[WARN] failed to read stored theme: %v", err)
		}
		return enum.Theme{}, false
	}
	mode, err := enum.ParseTheme(v)
	if err != nil {
		log.Printf("[DEBUG] ignore stored theme %q: %v", v, err)
		return enum.Theme{}, false
	}
	return mode, true
}

func (c *Controller) systemMode() enum.Theme {
	if c.system.PrefersLight() {
		return enum.ThemeLight
	}
	return enum.ThemeDark
}
