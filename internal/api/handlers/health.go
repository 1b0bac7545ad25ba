package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/guardline/restoreaudit/internal/domain/snapshot"
	"github.com/guardline/restoreaudit/internal/pkg/utils"
)

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	repo    snapshot.Repository
	version string
	started time.Time
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(repo snapshot.Repository, version string) *HealthHandler {
	return &HealthHandler{
		repo:    repo,
		version: version,
		started: time.Now(),
	}
}

// Healthz reports process liveness.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.started).String(),
	})
}

// Readyz reports readiness by probing the snapshot store.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	// A NOT_FOUND from an empty store still proves the store answers.
	if _, err := h.repo.List(ctx, "readiness-probe", 1); err != nil {
		utils.WriteErrorMessage(w, http.StatusServiceUnavailable, "NOT_READY", "Snapshot store unavailable")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, map[string]interface{}{"status": "ready"})
}
