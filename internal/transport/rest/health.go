package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/frahmantamala/access-admin/internal/storage"
	"github.com/jmoiron/sqlx"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

const healthTimeout = 2 * time.Second

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus   `json:"status"`
	Message    string         `json:"message,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	CheckedAt  time.Time      `json:"checked_at"`
	DurationMs int64          `json:"duration_ms"`
}

// HealthHandler reports whether the collection storage answers. db is set
// only for the SQL drivers and adds a direct database probe.
type HealthHandler struct {
	kv     storage.KV
	db     *sqlx.DB
	probes map[string]func(context.Context) error
}

func NewHealthHandler(kv storage.KV, db *sqlx.DB) *HealthHandler {
	return &HealthHandler{kv: kv, db: db, probes: map[string]func(context.Context) error{}}
}

// WithProbe adds a named component check, such as a Redis ping.
func (h *HealthHandler) WithProbe(name string, probe func(context.Context) error) *HealthHandler {
	h.probes[name] = probe
	return h
}

// pingHandler says the process is up.
func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "OK"})
}

// healthCheckHandler probes storage.
func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	components := map[string]CheckEntry{"storage": h.checkStorage(ctx)}
	if h.db != nil {
		components["database"] = h.checkDatabase(ctx)
	}
	for name, probe := range h.probes {
		components[name] = runProbe(ctx, probe)
	}

	resp := HealthResponse{
		Status:     HealthHealthy,
		CheckedAt:  time.Now(),
		Components: components,
	}
	for _, c := range components {
		if c.Status == HealthUnhealthy {
			resp.Status = HealthUnhealthy
		}
	}

	statusCode := http.StatusOK
	if resp.Status == HealthUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *HealthHandler) checkStorage(ctx context.Context) CheckEntry {
	start := time.Now()
	keys, err := h.kv.Keys(ctx)
	entry := CheckEntry{Status: HealthHealthy, CheckedAt: time.Now()}
	if err != nil {
		entry.Status = HealthUnhealthy
		entry.Message = err.Error()
	} else {
		collections := make([]string, 0, 3)
		for _, k := range keys {
			switch k {
			case storage.KeyUsers, storage.KeyRoles, storage.KeyPermissions:
				collections = append(collections, k)
			}
		}
		entry.Details = map[string]any{"collections": collections}
	}
	entry.DurationMs = time.Since(start).Milliseconds()
	return entry
}

func (h *HealthHandler) checkDatabase(ctx context.Context) CheckEntry {
	start := time.Now()
	entry := CheckEntry{Status: HealthHealthy, CheckedAt: time.Now()}

	var rows int
	err := h.db.PingContext(ctx)
	if err == nil {
		err = h.db.GetContext(ctx, &rows, `SELECT COUNT(*) FROM kv_entries`)
	}
	if err != nil {
		entry.Status = HealthUnhealthy
		entry.Message = err.Error()
	} else {
		entry.Details = map[string]any{"kv_entries": rows}
	}
	entry.DurationMs = time.Since(start).Milliseconds()
	return entry
}

func runProbe(ctx context.Context, probe func(context.Context) error) CheckEntry {
	start := time.Now()
	entry := CheckEntry{Status: HealthHealthy, CheckedAt: time.Now()}
	if err := probe(ctx); err != nil {
		entry.Status = HealthUnhealthy
		entry.Message = err.Error()
	}
	entry.DurationMs = time.Since(start).Milliseconds()
	return entry
}
