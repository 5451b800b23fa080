package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// NewRouter wires the dashboard pages and the /api/v1 routes.
func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Logging("/health"))
	r.Use(Recovery)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)

	// Dashboard
	r.Get("/", h.Dashboard)
	r.Post("/watchlist/add", h.AddForm)
	r.Post("/watchlist/remove/{symbol}", h.RemoveForm)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/watchlist", func(r chi.Router) {
			r.Get("/", h.ListWatchlist)
			r.Post("/", h.AddWatchlist)
			r.Get("/events", h.StreamWatchlist)
			r.Delete("/{symbol}", h.RemoveWatchlist)
		})
		r.Get("/quotes/{symbol}", h.GetQuote)
		r.Get("/macro", h.GetMacro)
	})

	return r
}
