package role

import (
	"context"
	"net/http"

	"github.com/frahmantamala/access-admin/internal/core/common/validation"
	"github.com/frahmantamala/access-admin/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context) ([]*Role, error)
	Validate(r *Role) validation.Errors
	Save(ctx context.Context, r *Role) ([]*Role, error)
	Delete(ctx context.Context, id string) ([]*Role, error)
	Table(ctx context.Context) (transport.Table, error)
	Flush(ctx context.Context) error
}

const collectionKey = "roles"

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

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context())
	if err != nil {
		h.Log(r.Context()).Error("ListRoles: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteCollection(w, http.StatusOK, collectionKey, items, nil)
}

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "", http.StatusCreated)
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, id string, status int) {
	var req SaveRoleRequest
	if err := h.DecodeJSON(w, r, &req); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	items, err := h.Service.Save(r.Context(), req.ToRole(id))
	if err != nil {
		h.Log(r.Context()).Error("SaveRole: service error", "error", err, "id", id)
	}
	h.WriteCollection(w, status, collectionKey, items, err)
}

func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	items, err := h.Service.Delete(r.Context(), id)
	if err != nil {
		h.Log(r.Context()).Error("DeleteRole: service error", "error", err, "id", id)
	}
	h.WriteCollection(w, http.StatusOK, collectionKey, items, err)
}

func (h *Handler) ValidateRole(w http.ResponseWriter, r *http.Request) {
	var req SaveRoleRequest
	if err := h.DecodeJSON(w, r, &req); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, transport.NewValidateResponse(h.Service.Validate(req.ToRole(""))))
}

func (h *Handler) GetRoleTable(w http.ResponseWriter, r *http.Request) {
	table, err := h.Service.Table(r.Context())
	if err != nil {
		h.Log(r.Context()).Error("GetRoleTable: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, table)
}

func (h *Handler) FlushRoles(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Flush(r.Context()); err != nil {
		h.Log(r.Context()).Error("FlushRoles: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
