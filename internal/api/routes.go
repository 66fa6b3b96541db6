package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/scaffold-api/internal/api/middleware"
)

// Handlers groups the handlers mounted under the API prefix.
type Handlers struct {
	Auth  *AuthHandler
	Users *UserHandler
	Items *ItemHandler
	Utils *UtilsHandler

	// Authenticate guards every route that needs a current user.
	Authenticate func(http.Handler) http.Handler
}

// Routes registers the API endpoints on r.
func Routes(r chi.Router, h Handlers) {
	// Public
	r.Post("/login/access-token", h.Auth.AccessToken)
	r.Post("/password-recovery/{email}", h.Auth.RecoverPassword)
	r.Post("/reset-password", h.Auth.ResetPassword)
	r.Post("/users/open", h.Users.Register)

	r.Group(func(r chi.Router) {
		r.Use(h.Authenticate)

		r.Post("/login/test-token", h.Auth.TestToken)

		r.Get("/users/me", h.Users.Me)
		r.Put("/users/me", h.Users.UpdateMe)
		r.Get("/users/{id}", h.Users.Get)

		r.Get("/items", h.Items.List)
		r.Post("/items", h.Items.Create)
		r.Get("/items/{id}", h.Items.Get)
		r.Put("/items/{id}", h.Items.Update)
		r.Delete("/items/{id}", h.Items.Delete)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSuperuser)

			r.Get("/users", h.Users.List)
			r.Post("/users", h.Users.Create)
			r.Put("/users/{id}", h.Users.Update)

			r.Post("/utils/test-celery", h.Utils.TestCelery)
			r.Post("/utils/test-email", h.Utils.TestEmail)
		})
	})
}
