package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const serviceName = "dkledger"

// Pinger is satisfied by the snapshot repository.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides HTTP health check endpoints.
type HealthHandler struct {
	db     Pinger
	logger *slog.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// healthResponse is the JSON body returned by health endpoints.
type healthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Liveness returns 200 if the process is alive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "UP",
		Service:   serviceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Readiness returns 200 if the database answers within two seconds.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{
		Status:    "UP",
		Service:   serviceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    map[string]string{"postgres": "UP"},
	}
	code := http.StatusOK
	if err := h.db.Ping(ctx); err != nil {
		h.logger.WarnContext(ctx, "readiness check failed", "error", err)
		resp.Status = "DOWN"
		resp.Checks["postgres"] = fmt.Sprintf("DOWN: %v", err)
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
