package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/access-admin/internal"
	"github.com/frahmantamala/access-admin/internal/core/events"
	"github.com/frahmantamala/access-admin/internal/integrity"
	"github.com/frahmantamala/access-admin/internal/permission"
	permissionKV "github.com/frahmantamala/access-admin/internal/permission/kvstore"
	"github.com/frahmantamala/access-admin/internal/role"
	roleKV "github.com/frahmantamala/access-admin/internal/role/kvstore"
	"github.com/frahmantamala/access-admin/internal/storage/gormstore"
	"github.com/frahmantamala/access-admin/internal/transport"
	"github.com/frahmantamala/access-admin/internal/transport/rest"
	"github.com/frahmantamala/access-admin/internal/user"
	userKV "github.com/frahmantamala/access-admin/internal/user/kvstore"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Router", func() {
	var router *chi.Mux

	BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))

		db, err := gormstore.Open(internal.StorageConfig{
			Driver:       internal.StorageDriverSQLite,
			Source:       ":memory:",
			MaxOpenConns: 1,
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(sqlDB.Close)

		kv := gormstore.New(db, time.Second)
		Expect(kv.Migrate()).To(Succeed())

		checker := integrity.NewChecker(internal.IntegrityModeBlock, lg)
		bus := events.NewEventBus(lg)
		permRepo := permissionKV.NewPermissionRepository(kv)
		roleRepo := roleKV.NewRoleRepository(kv)
		userRepo := userKV.NewUserRepository(kv)

		roles := role.NewService(roleRepo, permRepo, userRepo, checker, lg)
		bus.Subscribe(events.EventTypePermissionRenamed, roles.HandlePermissionRenamed)

		base := transport.NewBaseHandler(lg)
		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, internal.ServerConfig{
			AllowedOrigins: "http://console.local",
			SecureHeaders:  true,
		}, "test", rest.Handlers{
			Health:      rest.NewHealthHandler(kv, sqlx.NewDb(sqlDB, "sqlite3")),
			Users:       user.NewHandler(base, user.NewService(userRepo, roleRepo, checker, lg)),
			Roles:       role.NewHandler(base, roles),
			Permissions: permission.NewHandler(base, permission.NewService(permRepo, roleRepo, checker, bus, lg)),
			Integrity:   integrity.NewHandler(base, integrity.NewService(userRepo, roleRepo, permRepo, lg)),
		}, lg)
	})

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf).WithContext(context.Background())
		req.Header.Set("Origin", "http://console.local")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("answers ping and health", func() {
		Expect(do(http.MethodGet, "/api/v1/ping", nil).Code).To(Equal(http.StatusOK))

		w := do(http.MethodGet, "/api/v1/health", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		var health rest.HealthResponse
		Expect(json.NewDecoder(w.Body).Decode(&health)).To(Succeed())
		Expect(health.Status).To(Equal(rest.HealthHealthy))
		Expect(health.Components).To(HaveKey("storage"))
		Expect(health.Components).To(HaveKey("database"))
	})

	It("serves the OpenAPI document", func() {
		w := do(http.MethodGet, "/openapi.yml", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
	})

	It("applies CORS, trace and secure headers", func() {
		w := do(http.MethodGet, "/api/v1/users", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("http://console.local"))
		Expect(w.Header().Get("X-Trace-ID")).NotTo(BeEmpty())
		Expect(w.Header().Get("X-Frame-Options")).To(Equal("DENY"))
	})

	It("keeps roles in step when a permission is renamed", func() {
		w := do(http.MethodPost, "/api/v1/permissions", map[string]string{"permissionName": "READ", "description": "Read"})
		Expect(w.Code).To(Equal(http.StatusCreated))
		var perms struct {
			Permissions []permission.Permission `json:"permissions"`
		}
		Expect(json.NewDecoder(w.Body).Decode(&perms)).To(Succeed())

		w = do(http.MethodPost, "/api/v1/roles", map[string]interface{}{"roleName": "Reader", "permissions": []string{"READ"}})
		Expect(w.Code).To(Equal(http.StatusCreated))

		w = do(http.MethodPut, "/api/v1/permissions/"+perms.Permissions[0].ID, map[string]string{"permissionName": "VIEW", "description": "Read"})
		Expect(w.Code).To(Equal(http.StatusOK))

		w = do(http.MethodGet, "/api/v1/roles", nil)
		var roles struct {
			Roles []role.Role `json:"roles"`
		}
		Expect(json.NewDecoder(w.Body).Decode(&roles)).To(Succeed())
		Expect(roles.Roles[0].Permissions).To(Equal([]string{"VIEW"}))

		w = do(http.MethodGet, "/api/v1/integrity", nil)
		var report integrity.Report
		Expect(json.NewDecoder(w.Body).Decode(&report)).To(Succeed())
		Expect(report.Consistent).To(BeTrue())
	})

	It("refuses to delete a permission a role lists", func() {
		w := do(http.MethodPost, "/api/v1/permissions", map[string]string{"permissionName": "READ", "description": "Read"})
		var perms struct {
			Permissions []permission.Permission `json:"permissions"`
		}
		Expect(json.NewDecoder(w.Body).Decode(&perms)).To(Succeed())
		Expect(do(http.MethodPost, "/api/v1/roles", map[string]interface{}{"roleName": "Reader", "permissions": []string{"READ"}}).Code).
			To(Equal(http.StatusCreated))

		w = do(http.MethodDelete, "/api/v1/permissions/"+perms.Permissions[0].ID, nil)
		Expect(w.Code).To(Equal(http.StatusConflict))
	})

	It("exposes table and validate routes for each entity", func() {
		for _, entity := range []string{"users", "roles", "permissions"} {
			Expect(do(http.MethodGet, "/api/v1/"+entity+"/table", nil).Code).To(Equal(http.StatusOK), entity)

			w := do(http.MethodPost, "/api/v1/"+entity+"/validate", map[string]string{})
			Expect(w.Code).To(Equal(http.StatusOK), entity)
			var out transport.ValidateResponse
			Expect(json.NewDecoder(w.Body).Decode(&out)).To(Succeed())
			Expect(out.Valid).To(BeFalse(), entity)

			Expect(do(http.MethodPost, "/api/v1/"+entity+"/flush", nil).Code).To(Equal(http.StatusNoContent), entity)
		}
	})
})
