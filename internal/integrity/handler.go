package integrity

import (
	"context"
	"net/http"

	"github.com/frahmantamala/access-admin/internal/transport"
)

type ServiceAPI interface {
	Report(ctx context.Context) (Report, error)
}

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

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.Report(r.Context())
	if err != nil {
		h.Log(r.Context()).Error("GetReport: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, report)
}
