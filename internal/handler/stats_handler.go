package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vhvplatform/go-crm-automation-service/internal/middleware"
	"github.com/vhvplatform/go-crm-automation-service/internal/repository"
	"github.com/vhvplatform/go-crm-automation-service/internal/service"
	"github.com/vhvplatform/go-crm-automation-service/internal/shared/errors"
	"github.com/vhvplatform/go-crm-automation-service/internal/shared/logger"
)

// StatsHandler serves the combined automation dashboard summary
type StatsHandler struct {
	alerts   *service.AlertService
	dispatch *repository.DispatchRepository
	log      *logger.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(alerts *service.AlertService, dispatch *repository.DispatchRepository, log *logger.Logger) *StatsHandler {
	return &StatsHandler{
		alerts:   alerts,
		dispatch: dispatch,
		log:      log,
	}
}

// GetStats returns alert counts for the caller's visible set plus dispatch
// outcomes over the last 7 days
func (h *StatsHandler) GetStats(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	since := time.Now().AddDate(0, 0, -7)
	dispatches, err := h.dispatch.CountByStatus(c.Request.Context(), since)
	if err != nil {
		h.log.Error("Failed to get dispatch stats", "error", err)
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to get stats", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"alerts":     h.alerts.Stats(actor),
		"dispatches": dispatches,
		"since":      since,
	})
}
