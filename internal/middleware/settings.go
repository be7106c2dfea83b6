package middleware

import (
	"github.com/Chakyiu/chakyiu-blog/internal/view"
	"net/http"
	"time"
)

const themeCookie = "theme"

// SettingsMiddleware resolves the colour scheme preference. A "theme" query
// parameter (light, dark or auto) is remembered in a cookie; otherwise the
// cookie is used. The value ends up in the request context for templates.
func SettingsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		theme := r.URL.Query().Get("theme")
		switch theme {
		case view.ThemeLight, view.ThemeDark:
			http.SetCookie(w, &http.Cookie{
				Name:     themeCookie,
				Value:    theme,
				Path:     "/",
				MaxAge:   int(365 * 24 * time.Hour / time.Second),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		case view.ThemeAuto:
			http.SetCookie(w, &http.Cookie{Name: themeCookie, Value: "", Path: "/", MaxAge: -1})
			theme = ""
		default:
			theme = ""
			if c, err := r.Cookie(themeCookie); err == nil {
				theme = c.Value
			}
		}
		next.ServeHTTP(w, r.WithContext(view.WithTheme(r.Context(), theme)))
	})
}
