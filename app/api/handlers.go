package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pancak3lullz/SECurityTr8Ker/app/monitor"
	"github.com/pancak3lullz/SECurityTr8Ker/app/sec"
	"github.com/pancak3lullz/SECurityTr8Ker/app/store"
)

// Handler serves the read-only status endpoints.
type Handler struct {
	store     *store.Store
	monitor   *monitor.Monitor
	scheduler *monitor.Scheduler
	client    *sec.Client
	version   string
	startedAt time.Time
}

func NewHandler(st *store.Store, mon *monitor.Monitor, sched *monitor.Scheduler,
	client *sec.Client, version string) *Handler {
	return &Handler{
		store:     st,
		monitor:   mon,
		scheduler: sched,
		client:    client,
		version:   version,
		startedAt: time.Now().UTC(),
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.startedAt).String(),
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":           h.version,
		"started_at":        h.startedAt,
		"uptime_seconds":    time.Since(h.startedAt).Seconds(),
		"monitor":           h.monitor.Stats(),
		"sec_client":        h.client.Stats(),
		"total_disclosures": h.store.Count(),
		"sec_open":          h.scheduler.WithinOperatingWindow(),
	})
}

// GetDisclosures returns stored disclosures, newest first. The optional
// limit query parameter bounds the result.
func (h *Handler) GetDisclosures(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit parameter"})
			return
		}
		limit = parsed
	}

	records := h.store.List(limit, true)

	c.JSON(http.StatusOK, gin.H{
		"count":       len(records),
		"disclosures": records,
	})
}
