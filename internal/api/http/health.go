package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Store     string    `json:"store"`
	StoreUp   string    `json:"store_status"`
	Auth      bool      `json:"auth_configured"`
}

// Pinger checks the store connection. Nil means the store is not configured.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	serviceName string
	version     string
	backend     string
	ping        Pinger
	auth        bool
}

func NewHealthHandler(serviceName, version, backend string, ping Pinger, authConfigured bool) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		backend:     backend,
		ping:        ping,
		auth:        authConfigured,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	storeStatus := "unconfigured"
	status := "degraded"
	if h.ping != nil {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		if err := h.ping(pingCtx); err != nil {
			storeStatus = "down"
		} else {
			storeStatus = "up"
			status = "healthy"
		}
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		Store:     h.backend,
		StoreUp:   storeStatus,
		Auth:      h.auth,
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
