package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/atelier-pos/atelier/internal/analytics"
	"github.com/atelier-pos/atelier/internal/auth"
	"github.com/atelier-pos/atelier/internal/catalog"
	"github.com/atelier-pos/atelier/internal/sales"
	"github.com/atelier-pos/atelier/internal/shared"
	"github.com/atelier-pos/atelier/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	SessionManager   *shared.SessionManager
	AuthHandler      *auth.Handler
	UsersHandler     *users.Handler
	CatalogHandler   *catalog.Handler
	SalesHandler     *sales.Handler
	AnalyticsHandler *analytics.Handler
}

// NewRouter constructs the chi.Router with Atelier defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	// chi built-ins sit outermost so panics anywhere below, session
	// loading included, reach Recoverer and log lines carry a request id.
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Timeout(params.Config.AppRequestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", params.AuthHandler.Login)
		r.Post("/logout", params.AuthHandler.Logout)
		r.With(auth.RequireUser).Get("/me", params.AuthHandler.Me)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", params.AnalyticsHandler.Products)
			r.Get("/{id}", params.CatalogHandler.Get)
			r.Get("/{id}/stock", params.CatalogHandler.Stock)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAdmin)
				r.Post("/", params.CatalogHandler.Create)
				r.Patch("/{id}", params.CatalogHandler.Patch)
				r.Delete("/{id}", params.CatalogHandler.Delete)
				r.Put("/{id}/variants", params.CatalogHandler.ReplaceVariants)
			})
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", params.SalesHandler.List)
			r.Post("/", params.SalesHandler.Create)
			r.Get("/{id}", params.SalesHandler.Get)
			r.Put("/{id}/items", params.SalesHandler.Edit)
			r.Post("/{id}/finalize", params.SalesHandler.Finalize)
			r.Patch("/{id}", params.SalesHandler.Patch)
			r.Delete("/{id}", params.SalesHandler.Delete)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/dashboard", params.AnalyticsHandler.Dashboard)
			r.Get("/monthly", params.AnalyticsHandler.Monthly)
			r.Get("/top-sellers", params.AnalyticsHandler.TopSellers)
			r.Get("/categories", params.AnalyticsHandler.Categories)
			r.Get("/rankings", params.AnalyticsHandler.Rankings)
			r.Get("/forecast", params.AnalyticsHandler.Forecast)
			r.Get("/colors", params.AnalyticsHandler.Colors)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(auth.RequireAdmin)
			r.Get("/", params.UsersHandler.List)
			r.Post("/", params.UsersHandler.Create)
			r.Patch("/{id}", params.UsersHandler.Update)
			r.Delete("/{id}", params.UsersHandler.Delete)
		})
	})

	return r
}
