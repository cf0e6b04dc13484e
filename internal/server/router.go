// Package server assembles the HTTP routes.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ayush/vipauth/internal/auth"
	"github.com/ayush/vipauth/internal/logging"
	"github.com/ayush/vipauth/internal/middleware"
	"github.com/ayush/vipauth/internal/views"
)

// Deps are the collaborators the router needs.
type Deps struct {
	Auth        *auth.Handler
	Sessions    *auth.SessionStore
	Log         *slog.Logger
	CORSOrigins []string
}

// NewRouter returns the full route table. Every route runs behind the
// session loader; gated pages add IsLoggedIn in front of their handler.
func NewRouter(d Deps) http.Handler {
	h := d.Auth

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(logging.Requests(d.Log))
	r.Use(chimw.Recoverer)
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   d.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.LoadSession(d.Sessions, d.Log))

		r.Get("/", h.Wrap(h.View(views.Index)))

		r.Get("/signup", h.Wrap(h.View(views.Signup)))
		r.Post("/signup", h.Wrap(h.Signup))
		r.Get("/login", h.Wrap(h.View(views.Login)))
		r.Post("/login", h.Wrap(h.Login))
		r.Get("/userProfile", h.Wrap(h.View(views.Profile)))
		r.Post("/logout", h.Wrap(h.Logout))

		r.With(middleware.IsLoggedIn).Get("/main", h.Wrap(h.View(views.VIPMain)))
		r.With(middleware.IsLoggedIn).Get("/private", h.Wrap(h.View(views.VIPPrivate)))
	})

	return r
}
