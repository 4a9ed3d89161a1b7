package permission

import (
	"context"
	"net/http"

	"github.com/frahmantamala/access-admin/internal/core/common/validation"
	"github.com/frahmantamala/access-admin/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context) ([]*Permission, error)
	Validate(p *Permission) validation.Errors
	Save(ctx context.Context, p *Permission) ([]*Permission, error)
	Delete(ctx context.Context, id string) ([]*Permission, error)
	Table(ctx context.Context) (transport.Table, error)
	Flush(ctx context.Context) error
}

const collectionKey = "permissions"

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

func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context())
	if err != nil {
		h.Log(r.Context()).Error("ListPermissions: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteCollection(w, http.StatusOK, collectionKey, items, nil)
}

func (h *Handler) CreatePermission(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "", http.StatusCreated)
}

func (h *Handler) UpdatePermission(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, id string, status int) {
	var req SavePermissionRequest
	if err := h.DecodeJSON(w, r, &req); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	items, err := h.Service.Save(r.Context(), req.ToPermission(id))
	if err != nil {
		h.Log(r.Context()).Error("SavePermission: service error", "error", err, "id", id)
	}
	h.WriteCollection(w, status, collectionKey, items, err)
}

func (h *Handler) DeletePermission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	items, err := h.Service.Delete(r.Context(), id)
	if err != nil {
		h.Log(r.Context()).Error("DeletePermission: service error", "error", err, "id", id)
	}
	h.WriteCollection(w, http.StatusOK, collectionKey, items, err)
}

func (h *Handler) ValidatePermission(w http.ResponseWriter, r *http.Request) {
	var req SavePermissionRequest
	if err := h.DecodeJSON(w, r, &req); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, transport.NewValidateResponse(h.Service.Validate(req.ToPermission(""))))
}

func (h *Handler) GetPermissionTable(w http.ResponseWriter, r *http.Request) {
	table, err := h.Service.Table(r.Context())
	if err != nil {
		h.Log(r.Context()).Error("GetPermissionTable: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, table)
}

func (h *Handler) FlushPermissions(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Flush(r.Context()); err != nil {
		h.Log(r.Context()).Error("FlushPermissions: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
