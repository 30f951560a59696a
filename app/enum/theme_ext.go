package enum

// glyphs shown on the toggle control, each one invites a switch to the other mode
const (
	moonGlyph = "🌙"
	sunGlyph  = "☀️"
)

// Toggle returns the opposite theme (light↔dark). Anything that is not light counts as dark,
// so auto toggles to light.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// Glyph returns the toggle icon for the theme. Light shows the moon, everything else the sun.
func (t Theme) Glyph() string {
	if t == ThemeLight {
		return moonGlyph
	}
	return sunGlyph
}

// Explicit reports whether the theme is a user choice rather than a deferral to the system.
func (t Theme) Explicit() bool {
	return t == ThemeLight || t == ThemeDark
}
