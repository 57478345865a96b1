package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"swiftpos/internal/infrastructure/storage/postgres"
)

// HealthHandler answers the probes the deployment points at the API.
type HealthHandler struct {
	pool *postgres.Pool
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(pool *postgres.Pool) *HealthHandler {
	return &HealthHandler{pool: pool}
}

// Live reports that the process is up.
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether the API can serve traffic, which for this
// service means the database answers a ping.
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := gin.H{"database": "healthy"}
	status := http.StatusOK

	if err := h.pool.Ping(c.Request.Context()); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
		status = http.StatusServiceUnavailable
	}

	state := "ok"
	if status != http.StatusOK {
		state = "error"
	}
	c.JSON(status, gin.H{"status": state, "checks": checks})
}

// Info exposes build identity and connection pool gauges.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	stat := h.pool.Stat()

	c.JSON(http.StatusOK, gin.H{
		"app":     "swiftpos",
		"version": "0.1.0",
		"database": gin.H{
			"total_conns":    stat.TotalConns(),
			"acquired_conns": stat.AcquiredConns(),
			"idle_conns":     stat.IdleConns(),
			"max_conns":      stat.MaxConns(),
		},
	})
}
