package controllers

import (
	"context"
	"net/http"
	"time"

	"go-storefront/utils"
)

// Pinger reports whether a backend is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController answers liveness and readiness probes
type HealthController struct {
	DB      Pinger
	Respond *utils.Responder
}

func NewHealthController(db Pinger, respond *utils.Responder) *HealthController {
	return &HealthController{DB: db, Respond: respond}
}

// Root confirms the process is serving
func (hc *HealthController) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Server is running properly"))
}

// Healthz checks the database as well
func (hc *HealthController) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := hc.DB.Ping(ctx); err != nil {
		hc.Respond.Logger.WithError(err).Warn("health check failed")
		hc.Respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	hc.Respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

