package view

import "context"

type themeKey struct{}

// Colour scheme preferences understood by the stylesheet.
const (
	ThemeAuto  = "auto"
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// WithTheme stores the colour scheme preference in ctx. An empty theme
// follows the browser's prefers-color-scheme.
func WithTheme(ctx context.Context, theme string) context.Context {
	return context.WithValue(ctx, themeKey{}, theme)
}

// Theme returns the preference stored by WithTheme.
func Theme(ctx context.Context) string {
	if t, ok := ctx.Value(themeKey{}).(string); ok && (t == ThemeLight || t == ThemeDark) {
		return t
	}
	return ""
}
