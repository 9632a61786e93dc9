package handlers

import (
	"context"
	"net/http"
	"time"
)

// Health reports liveness and whether the backing store answers.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if _, err := a.Repo.GetAllBranches(ctx); err != nil {
		a.logger(r).Warn().Err(err).Msg("health check: store unreachable")
		a.json(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "store": "unreachable"})
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ok", "store": "ok"})
}
