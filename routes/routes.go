// Package routes configures the HTTP router and middleware chain.
package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/siftlab/companysift/app"
	"github.com/siftlab/companysift/handlers"
	"github.com/siftlab/companysift/middleware"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(120 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	ruleHandler := handlers.NewRuleHandler(deps.RuleService, deps.Logger)
	companyHandler := handlers.NewCompanyHandler(deps.ImportService, deps.Repos, deps.Logger)
	userHandler := handlers.NewUserHandler(deps.Repos.Users, deps.Logger)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Logger)

	// Health probes stay outside the API prefix and auth
	r.Get("/healthz", healthHandler.HandleLiveness)
	r.Get("/readyz", healthHandler.HandleReadiness)

	r.Route("/api/v1", func(r chi.Router) {
		if deps.AuthMiddleware != nil {
			r.Use(deps.AuthMiddleware.RequireAuth)
		}

		r.Route("/rules", func(r chi.Router) {
			r.Post("/", ruleHandler.HandleCreateRules)
			r.Post("/process", ruleHandler.HandleProcessCompanies)
		})

		r.Route("/companies", func(r chi.Router) {
			r.Get("/", companyHandler.HandleList)
			r.Post("/import", companyHandler.HandleImport)
		})

		r.Get("/users", userHandler.HandleList)
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}
