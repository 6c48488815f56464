// Package router sets up all HTTP routes and middleware chains for the
// pesantren site API. Routes are grouped into public, auth and admin
// groups with their own middleware stacks.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"pesantren/internal/handlers"
	"pesantren/internal/middleware"
)

// Deps collects what the router wires together.
type Deps struct {
	Sessions      middleware.SessionReader
	Tokens        middleware.TokenParser
	Public        *handlers.Public
	Auth          *handlers.Auth
	Admin         *handlers.Admin
	LoginLimiter  *middleware.RateLimiter
	SecureCookies bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Health check: no auth, no CSRF.
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		// Public read API, served through the page cache.
		r.Get("/home", d.Public.Home)
		r.Get("/sections", d.Public.Sections)
		r.Get("/sections/{key}", d.Public.Section)
		r.Get("/blog", d.Public.BlogList)
		r.Get("/blog/{slug}", d.Public.BlogPost)
		r.Get("/categories", d.Public.Categories)
		r.Get("/categories/{slug}", d.Public.Category)
		r.Get("/pages", d.Public.Pages)
		r.Get("/pages/{slug}", d.Public.Page)
		r.Get("/settings", d.Public.Settings)

		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.LoadActor(d.Sessions, d.Tokens))

			login := http.HandlerFunc(d.Auth.Login)
			if d.LoginLimiter != nil {
				r.Method(http.MethodPost, "/login", d.LoginLimiter.Middleware(login))
			} else {
				r.Post("/login", login)
			}

			r.Group(func(r chi.Router) {
				r.Use(middleware.NewCSRF(d.SecureCookies))
				r.Get("/me", d.Auth.Me)
				r.Post("/logout", d.Auth.Logout)
			})
		})

		// Dashboard API: requires an actor and, for cookie sessions, CSRF.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.LoadActor(d.Sessions, d.Tokens))
			r.Use(middleware.RequireActor)
			r.Use(middleware.NewCSRF(d.SecureCookies))

			a := d.Admin
			r.Get("/dashboard", a.Dashboard)
			r.Get("/slug-check", a.SlugCheck)

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", a.PostsList)
				r.Post("/", a.PostCreate)
				r.Get("/{id}", a.PostGet)
				r.Put("/{id}", a.PostUpdate)
				r.Post("/{id}/publish", a.PostPublish)
				r.Delete("/{id}", a.PostDelete)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", a.CategoriesList)
				r.Post("/", a.CategoryCreate)
				r.Get("/{id}", a.CategoryGet)
				r.Put("/{id}", a.CategoryUpdate)
				r.Delete("/{id}", a.CategoryDelete)
			})

			r.Route("/pages", func(r chi.Router) {
				r.Get("/", a.PagesList)
				r.Post("/", a.PageCreate)
				r.Get("/{id}", a.PageGet)
				r.Put("/{id}", a.PageUpdate)
				r.Post("/{id}/publish", a.PagePublish)
				r.Delete("/{id}", a.PageDelete)
			})

			r.Route("/sections", func(r chi.Router) {
				r.Get("/", a.SectionsList)
				r.Post("/", a.SectionCreate)
				r.Put("/reorder", a.SectionsReorder)
				r.Get("/{id}", a.SectionGet)
				r.Put("/{id}", a.SectionUpdate)
				r.Delete("/{id}", a.SectionDelete)
			})

			r.Get("/settings", a.SettingsGet)
			r.Put("/settings", a.SettingsUpdate)

			// User management: admin only.
			r.With(middleware.RequireAdmin).Get("/users", a.UsersList)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Not Found"}`))
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
