package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"backed/internal/http/handlers"
	"backed/internal/infra"
	"backed/internal/middleware"
)

// NewRouter assembles the public API surface.
func NewRouter(app *handlers.App, cfg infra.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(cfg.AllowedOrigins),
		middleware.RateLimit(cfg.RateLimitPerMin, time.Minute),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1", func(r chi.Router) {
		// Public catalog.
		r.Get("/projects", app.ProjectsList)
		r.Get("/projects/{id}", app.ProjectsGet)
		r.Get("/projects/{id}/funding", app.ProjectsFunding)
		r.Get("/projects/{id}/summary", app.ProjectsSummary)
		r.Get("/projects/{id}/updates", app.UpdatesList)

		// Authenticated.
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthJWT(cfg.JWTSecret))

			r.Post("/chat", app.ChatCreate)

			// Alumni side.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(middleware.RoleAlumni))
				r.Get("/feed", app.FeedGet)
				r.Post("/donations", app.DonationsCreate)
				r.Get("/donations", app.DonationsListMine)
				r.Get("/notifications", app.NotificationsList)
				r.Post("/notifications/{id}/read", app.NotificationsMarkRead)
				r.Post("/schools/{id}/follow", app.FollowCreate)
				r.Delete("/schools/{id}/follow", app.FollowDelete)
				r.Post("/projects/{id}/bookmark", app.BookmarkCreate)
				r.Delete("/projects/{id}/bookmark", app.BookmarkDelete)
				r.Get("/bookmarks", app.BookmarksList)
			})

			// School side.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(middleware.RoleSchool))
				r.Post("/projects/{id}/updates", app.UpdatesCreate)
			})
		})
	})

	return r
}
