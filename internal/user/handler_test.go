package user_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/access-admin/internal"
	"github.com/frahmantamala/access-admin/internal/core/datamodel"
	roleDatamodel "github.com/frahmantamala/access-admin/internal/core/datamodel/role"
	"github.com/frahmantamala/access-admin/internal/integrity"
	roleKV "github.com/frahmantamala/access-admin/internal/role/kvstore"
	"github.com/frahmantamala/access-admin/internal/transport"
	"github.com/frahmantamala/access-admin/internal/user"
	userKV "github.com/frahmantamala/access-admin/internal/user/kvstore"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type usersBody struct {
	Users []user.User `json:"users"`
	Error *struct {
		Type string `json:"type"`
		Code string `json:"code"`
	} `json:"error"`
}

var _ = Describe("User Handler Integration", func() {
	var router chi.Router

	BeforeEach(func() {
		lg := quietLogger()
		kv := newKV()
		roles := roleKV.NewRoleRepository(kv)
		_, err := roles.Upsert(context.Background(), roleDatamodel.Role{
			ID:          datamodel.ID("r1"),
			RoleName:    "Admin",
			Permissions: []string{"READ"},
		})
		Expect(err).NotTo(HaveOccurred())

		service := user.NewService(userKV.NewUserRepository(kv), roles, integrity.NewChecker("", lg), lg)
		handler := user.NewHandler(&transport.BaseHandler{Logger: lg}, service)

		router = chi.NewRouter()
		router.Get("/users", handler.ListUsers)
		router.Post("/users", handler.CreateUser)
		router.Put("/users/{id}", handler.UpdateUser)
		router.Patch("/users/{id}/status", handler.ToggleUserStatus)
	})

	do := func(method, path string, body interface{}) (*httptest.ResponseRecorder, usersBody) {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(method, path, &buf))

		var out usersBody
		Expect(json.NewDecoder(w.Body).Decode(&out)).To(Succeed())
		return w, out
	}

	It("creates an active user when status is omitted", func() {
		w, body := do(http.MethodPost, "/users", map[string]string{"name": "Ann", "email": "ann@example.com", "role": "r1"})
		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(body.Users).To(HaveLen(1))
		Expect(body.Users[0].Status).To(BeTrue())
	})

	It("answers 409 for an unknown role", func() {
		w, body := do(http.MethodPost, "/users", map[string]string{"name": "Ann", "email": "ann@example.com", "role": "zz"})
		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(body.Error.Code).To(Equal(string(internal.ErrCodeDanglingReference)))
	})

	It("toggles status through PATCH", func() {
		_, created := do(http.MethodPost, "/users", map[string]string{"name": "Ann", "email": "ann@example.com", "role": "r1"})
		id := created.Users[0].ID

		w, body := do(http.MethodPatch, "/users/"+id+"/status", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(body.Users[0].Status).To(BeFalse())
	})

	It("answers 404 when toggling an unknown user", func() {
		w, body := do(http.MethodPatch, "/users/missing/status", nil)
		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(body.Error.Code).To(Equal(string(internal.ErrCodeUserNotFound)))
	})

	It("upserts on PUT with an unknown id", func() {
		w, body := do(http.MethodPut, "/users/fresh-id", map[string]interface{}{
			"name": "Bob", "email": "bob@example.com", "role": "r1", "status": false,
		})
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(body.Users).To(HaveLen(1))
		Expect(body.Users[0].ID).To(Equal("fresh-id"))
		Expect(body.Users[0].Status).To(BeFalse())
	})

	It("keeps an inactive user inactive on PUT without status", func() {
		_, created := do(http.MethodPost, "/users", map[string]interface{}{
			"name": "Ann", "email": "ann@example.com", "role": "r1", "status": false,
		})
		id := created.Users[0].ID

		w, body := do(http.MethodPut, "/users/"+id, map[string]string{"name": "Ann B", "email": "ann@example.com", "role": "r1"})
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(body.Users).To(HaveLen(1))
		Expect(body.Users[0].Name).To(Equal("Ann B"))
		Expect(body.Users[0].Status).To(BeFalse())
	})

	It("still flips status when PUT names it", func() {
		_, created := do(http.MethodPost, "/users", map[string]string{"name": "Ann", "email": "ann@example.com", "role": "r1"})
		id := created.Users[0].ID

		_, body := do(http.MethodPut, "/users/"+id, map[string]interface{}{
			"name": "Ann", "email": "ann@example.com", "role": "r1", "status": false,
		})
		Expect(body.Users[0].Status).To(BeFalse())
	})
})
