package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/txlens/txlens/pkg/server/dto"
	"github.com/txlens/txlens/pkg/service"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	svc *service.Service
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(svc *service.Service) *HealthHandler {
	return &HealthHandler{svc: svc}
}

// HealthCheck handles GET /health. It probes the graph store so load
// balancers see a failing backend before callers do.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	if !h.svc.HealthCheck(c.Request.Context()) {
		c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{
			Status:   "unhealthy",
			Service:  "txlens",
			Database: "unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:   "healthy",
		Service:  "txlens",
		Database: "connected",
	})
}
