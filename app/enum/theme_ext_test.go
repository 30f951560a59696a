package enum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTheme_Toggle(t *testing.T) {
	tests := []struct {
		current  Theme
		expected Theme
	}{
		{ThemeAuto, ThemeLight},
		{ThemeLight, ThemeDark},
		{ThemeDark, ThemeLight},
	}

	for _, tc := range tests {
		t.Run(tc.current.String()+"->"+tc.expected.String(), func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.current.Toggle())
		})
	}
}

func TestTheme_Glyph(t *testing.T) {
	assert.Equal(t, "🌙", ThemeLight.Glyph())
	assert.Equal(t, "☀️", ThemeDark.Glyph())
	assert.Equal(t, "☀️", ThemeAuto.Glyph())
}

func TestTheme_Explicit(t *testing.T) {
	assert.True(t, ThemeLight.Explicit())
	assert.True(t, ThemeDark.Explicit())
	assert.False(t, ThemeAuto.Explicit())
	assert.False(t, Theme{}.Explicit())
}

func TestParseTheme(t *testing.T) {
	tests := []struct {
		in      string
		want    Theme
		wantErr bool
	}{
		{in: "light", want: ThemeLight},
		{in: "dark", want: ThemeDark},
		{in: "auto", want: ThemeAuto},
		{in: "system", want: ThemeAuto},
		{in: "", wantErr: true},
		{in: "Dark", wantErr: true},
		{in: "sepia", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseTheme(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseBackend(t *testing.T) {
	b, err := ParseBackend("sql")
	require.NoError(t, err)
	assert.Equal(t, BackendDB, b)

	b, err = ParseBackend("cookie")
	require.NoError(t, err)
	assert.Equal(t, BackendCookie, b)

	_, err = ParseBackend("redis")
	require.Error(t, err)
}
