package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phrazzld/scaffold-api/internal/api"
	apiMiddleware "github.com/phrazzld/scaffold-api/internal/api/middleware"
)

// apiPrefix is the mount point of the versioned API.
const apiPrefix = "/api/v1"

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(app.metrics.Middleware)
	if origins := app.config.Project.CORSOrigins; len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"X-Trace-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService, app.userService)

	r.Route(apiPrefix, func(r chi.Router) {
		api.Routes(r, api.Handlers{
			Auth:         api.NewAuthHandler(app.userService, app.jwtService, app.recovery, app.logger),
			Users:        api.NewUserHandler(app.userService, app.mailer, app.config.Auth.OpenRegistration, app.logger),
			Items:        api.NewItemHandler(app.itemService, app.logger),
			Utils:        api.NewUtilsHandler(app.tasks.Dispatcher, app.mailer, app.logger),
			Authenticate: authMiddleware.Authenticate,
		})
	})

	r.Method(http.MethodGet, "/health", api.NewHealthHandler(map[string]api.HealthCheck{
		"database": app.db.PingContext,
		"cache":    func(ctx context.Context) error { return app.cache.Ping(ctx) },
	}))
	r.Method(http.MethodGet, "/metrics", app.metrics.Handler())

	return r
}
