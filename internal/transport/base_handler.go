package transport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/access-admin/internal"
	"github.com/frahmantamala/access-admin/pkg/logger"
)

// maxBodyBytes bounds request bodies; records are small form submissions.
const maxBodyBytes = 1 << 20

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// Log returns the request logger the logging middleware stored in ctx,
// falling back to the handler's own.
func (h *BaseHandler) Log(ctx context.Context) *slog.Logger {
	return logger.FromOr(ctx, h.Logger)
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// HandleServiceError maps a service error onto its AppError status and body.
// Errors that are not AppErrors become a 500.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, err error) {
	appErr, ok := internal.IsAppError(err)
	if !ok {
		h.Logger.Error("unexpected service error", "error", err)
		appErr = internal.NewInternalError("internal server error", err)
	}
	status, body := appErr.ToHTTPResponse()
	h.WriteJSON(w, status, body)
}

// WriteCollection writes a collection under key. A persistence error still
// carries the in-memory collection next to the error so the client can keep
// showing what it edited.
func (h *BaseHandler) WriteCollection(w http.ResponseWriter, status int, key string, items interface{}, err error) {
	if err != nil {
		appErr, ok := internal.IsAppError(err)
		if ok && appErr.Type == internal.ErrorTypePersistence {
			h.Logger.Error("collection changed but not persisted", "collection", key, "error", err)
			h.WriteJSON(w, appErr.StatusCode, map[string]interface{}{
				key:     items,
				"error": appErr,
			})
			return
		}
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, status, map[string]interface{}{key: items})
}

// DecodeJSON reads the request body into dst. Malformed bodies yield a
// validation AppError with the INVALID_BODY code.
func (h *BaseHandler) DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.Log(r.Context()).Warn("invalid request body", "error", err, "path", r.URL.Path)
		return internal.NewValidationError("invalid request body", internal.ErrCodeInvalidBody).WithCause(err)
	}
	return nil
}
