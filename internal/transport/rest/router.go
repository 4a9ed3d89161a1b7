package rest

import (
	"log/slog"

	"github.com/frahmantamala/access-admin/internal"
	"github.com/frahmantamala/access-admin/internal/integrity"
	"github.com/frahmantamala/access-admin/internal/permission"
	"github.com/frahmantamala/access-admin/internal/role"
	"github.com/frahmantamala/access-admin/internal/transport/middleware"
	"github.com/frahmantamala/access-admin/internal/transport/openapi"
	"github.com/frahmantamala/access-admin/internal/transport/swagger"
	"github.com/frahmantamala/access-admin/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers groups the HTTP handlers the router mounts. A nil entity handler
// leaves its routes unmounted.
type Handlers struct {
	Health      *HealthHandler
	Users       *user.Handler
	Roles       *role.Handler
	Permissions *permission.Handler
	Integrity   *integrity.Handler
}

func RegisterAllRoutes(router *chi.Mux, cfg internal.ServerConfig, env string, h Handlers, logger *slog.Logger) {
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get(swagger.SpecPath, openapi.Handler())
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		if cfg.SecureHeaders {
			r.Use(middleware.SecureHeaders(logger, env != "production"))
		}
		if cfg.RateLimit.Enabled {
			r.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
		}

		if h.Health != nil {
			r.Get("/health", h.Health.healthCheckHandler)
			r.Get("/ping", h.Health.pingHandler)
		}

		if h.Integrity != nil {
			r.Get("/integrity", h.Integrity.GetReport)
		}

		if h.Users != nil {
			r.Route("/users", func(ur chi.Router) {
				ur.Get("/", h.Users.ListUsers)
				ur.Post("/", h.Users.CreateUser)
				ur.Get("/table", h.Users.GetUserTable)
				ur.Post("/validate", h.Users.ValidateUser)
				ur.Post("/flush", h.Users.FlushUsers)
				ur.Put("/{id}", h.Users.UpdateUser)
				ur.Delete("/{id}", h.Users.DeleteUser)
				ur.Patch("/{id}/status", h.Users.ToggleUserStatus)
			})
		}

		if h.Roles != nil {
			r.Route("/roles", func(rr chi.Router) {
				rr.Get("/", h.Roles.ListRoles)
				rr.Post("/", h.Roles.CreateRole)
				rr.Get("/table", h.Roles.GetRoleTable)
				rr.Post("/validate", h.Roles.ValidateRole)
				rr.Post("/flush", h.Roles.FlushRoles)
				rr.Put("/{id}", h.Roles.UpdateRole)
				rr.Delete("/{id}", h.Roles.DeleteRole)
			})
		}

		if h.Permissions != nil {
			r.Route("/permissions", func(pr chi.Router) {
				pr.Get("/", h.Permissions.ListPermissions)
				pr.Post("/", h.Permissions.CreatePermission)
				pr.Get("/table", h.Permissions.GetPermissionTable)
				pr.Post("/validate", h.Permissions.ValidatePermission)
				pr.Post("/flush", h.Permissions.FlushPermissions)
				pr.Put("/{id}", h.Permissions.UpdatePermission)
				pr.Delete("/{id}", h.Permissions.DeletePermission)
			})
		}
	})
}
