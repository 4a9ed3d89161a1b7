package user

import (
	"context"
	"net/http"

	"github.com/frahmantamala/access-admin/internal/core/common/validation"
	"github.com/frahmantamala/access-admin/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context) ([]*User, error)
	Find(ctx context.Context, id string) (*User, error)
	Validate(u *User) validation.Errors
	Save(ctx context.Context, u *User) ([]*User, error)
	Delete(ctx context.Context, id string) ([]*User, error)
	ToggleStatus(ctx context.Context, id string) ([]*User, error)
	Table(ctx context.Context) (transport.Table, error)
	Flush(ctx context.Context) error
}

const collectionKey = "users"

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context())
	if err != nil {
		h.Log(r.Context()).Error("ListUsers: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteCollection(w, http.StatusOK, collectionKey, items, nil)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "", http.StatusCreated)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, id string, status int) {
	var req SaveUserRequest
	if err := h.DecodeJSON(w, r, &req); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	// An edit that leaves status out keeps the stored one.
	if id != "" && req.Status == nil {
		existing, err := h.Service.Find(r.Context(), id)
		if err != nil {
			h.Log(r.Context()).Error("SaveUser: service error", "error", err, "id", id)
			h.HandleServiceError(w, err)
			return
		}
		if existing != nil {
			req.Status = &existing.Status
		}
	}

	items, err := h.Service.Save(r.Context(), req.ToUser(id))
	if err != nil {
		h.Log(r.Context()).Error("SaveUser: service error", "error", err, "id", id)
	}
	h.WriteCollection(w, status, collectionKey, items, err)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	items, err := h.Service.Delete(r.Context(), id)
	if err != nil {
		h.Log(r.Context()).Error("DeleteUser: service error", "error", err, "id", id)
	}
	h.WriteCollection(w, http.StatusOK, collectionKey, items, err)
}

// ToggleUserStatus handles PATCH /users/{id}/status
func (h *Handler) ToggleUserStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	items, err := h.Service.ToggleStatus(r.Context(), id)
	if err != nil {
		h.Log(r.Context()).Error("ToggleUserStatus: service error", "error", err, "id", id)
	}
	h.WriteCollection(w, http.StatusOK, collectionKey, items, err)
}

func (h *Handler) ValidateUser(w http.ResponseWriter, r *http.Request) {
	var req SaveUserRequest
	if err := h.DecodeJSON(w, r, &req); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, transport.NewValidateResponse(h.Service.Validate(req.ToUser(""))))
}

func (h *Handler) GetUserTable(w http.ResponseWriter, r *http.Request) {
	table, err := h.Service.Table(r.Context())
	if err != nil {
		h.Log(r.Context()).Error("GetUserTable: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, table)
}

func (h *Handler) FlushUsers(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Flush(r.Context()); err != nil {
		h.Log(r.Context()).Error("FlushUsers: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
