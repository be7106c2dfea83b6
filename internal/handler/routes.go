package handler

import (
	"github.com/Chakyiu/chakyiu-blog/internal/middleware"
	"github.com/Chakyiu/chakyiu-blog/internal/session"
	"github.com/Chakyiu/chakyiu-blog/web"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Handlers groups every handler served by the router.
type Handlers struct {
	Posts         *PostHandler
	Projects      *ProjectHandler
	Comments      *CommentHandler
	Notifications *NotificationHandler
	Users         *UserHandler
	Auth          *AuthHandler
	Seo           *SeoHandler
}

// NewRouter creates and configures a new chi router.
func NewRouter(h Handlers, authzMiddleware func(http.Handler) http.Handler, errorMiddleware func(middleware.AppHandler) http.Handler, sm session.Manager) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(sm.LoadAndSave)
	r.Use(middleware.SettingsMiddleware)

	r.Group(func(r chi.Router) {
		r.Use(authzMiddleware)

		// Static assets and SEO.
		r.Get("/static/highlight.css", h.Posts.highlightCSS)
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(web.StaticFS))))
		r.Get("/robots.txt", h.Seo.robotsHandler)
		r.Get("/sitemap.xml", h.Seo.sitemapHandler)
		r.Get("/feed.xml", h.Seo.feedHandler)

		// Authentication.
		r.Get("/auth/login", h.Auth.handleLogin)
		r.Get("/auth/callback", h.Auth.handleCallback)
		r.Get("/auth/logout", h.Auth.handleLogout)

		// HTML pages.
		r.Method(http.MethodGet, "/", errorMiddleware(h.Posts.home))
		r.Method(http.MethodGet, "/posts/by-id/{id}", errorMiddleware(h.Posts.byID))
		r.Method(http.MethodGet, "/posts/{slug}", errorMiddleware(h.Posts.show))
		r.Method(http.MethodGet, "/projects", errorMiddleware(h.Projects.index))
		r.Method(http.MethodGet, "/projects/{slug}", errorMiddleware(h.Projects.show))
		r.Method(http.MethodGet, "/notifications", errorMiddleware(h.Notifications.page))

		r.Route("/api", func(r chi.Router) {
			r.Get("/posts/{postID}/comments", h.Comments.listComments)
			r.Post("/posts/{postID}/comments", h.Comments.createComment)
			r.Post("/comments/{commentID}/replies", h.Comments.createReply)
			r.Post("/markdown/preview", h.Posts.preview)

			r.Get("/notifications", h.Notifications.list)
			r.Get("/notifications/unread-count", h.Notifications.unreadCount)
			r.Post("/notifications/read-all", h.Notifications.markAllRead)
			r.Post("/notifications/{id}/read", h.Notifications.markRead)

			r.Route("/admin", func(r chi.Router) {
				r.Get("/comments", h.Comments.adminComments)
				r.Post("/comments/{id}/hide", h.Comments.hideComment)
				r.Post("/comments/{id}/unhide", h.Comments.unhideComment)
				r.Delete("/comments/{id}", h.Comments.deleteComment)

				r.Post("/posts", h.Posts.createPost)
				r.Put("/posts/{id}", h.Posts.updatePost)
				r.Delete("/posts/{id}", h.Posts.deletePost)

				r.Get("/projects", h.Projects.list)
				r.Post("/projects", h.Projects.create)
				r.Put("/projects/{id}", h.Projects.update)
				r.Post("/projects/{id}/refresh-readme", h.Projects.refreshReadme)
				r.Delete("/projects/{id}", h.Projects.delete)

				r.Get("/users", h.Users.list)
				r.Put("/users/{id}/role", h.Users.setRole)
				r.Delete("/users/{id}", h.Users.delete)
			})
		})
	})

	return r
}
