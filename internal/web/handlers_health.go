package web

import (
	"context"
	"net/http"
	"time"

	"github.com/JonMunkholm/stockpos/internal/logging"
)

// healthTimeout bounds the store ping.
const healthTimeout = 2 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := healthResponse{Status: "ok", Store: "ok", Imports: s.service.ImportStatus()}
	status := http.StatusOK
	if err := s.service.Ping(ctx); err != nil {
		logging.FromContext(r.Context()).Error("health check failed", "error", err)
		resp.Status, resp.Store = "degraded", "unavailable"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, r, status, resp)
}
