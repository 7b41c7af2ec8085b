package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trips/internal/metrics"
)

// MetricsHandler exposes the process-wide counters.
type MetricsHandler struct {
	counters *metrics.Counters
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(counters *metrics.Counters) *MetricsHandler {
	return &MetricsHandler{counters: counters}
}

// Snapshot handles GET /metrics
func (h *MetricsHandler) Snapshot(c *gin.Context) {
	respondJSON(c, http.StatusOK, h.counters.Snapshot())
}
