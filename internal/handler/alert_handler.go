package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vhvplatform/go-crm-automation-service/internal/domain"
	"github.com/vhvplatform/go-crm-automation-service/internal/middleware"
	"github.com/vhvplatform/go-crm-automation-service/internal/service"
	"github.com/vhvplatform/go-crm-automation-service/internal/shared/errors"
	"github.com/vhvplatform/go-crm-automation-service/internal/shared/logger"
)

// AlertHandler handles automation alert requests
type AlertHandler struct {
	service *service.AlertService
	log     *logger.Logger
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(service *service.AlertService, log *logger.Logger) *AlertHandler {
	return &AlertHandler{
		service: service,
		log:     log,
	}
}

// ListAlerts returns the current alert set visible to the caller
func (h *AlertHandler) ListAlerts(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	var req domain.ListAlertsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.NewValidationError("Invalid request", err))
		return
	}

	alerts := h.service.List(actor, &req)

	c.JSON(http.StatusOK, gin.H{
		"data":  alerts,
		"total": len(alerts),
	})
}

// GetAlertStats returns alert counts for the caller's visible set
func (h *AlertHandler) GetAlertStats(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	c.JSON(http.StatusOK, h.service.Stats(actor))
}

// DismissAlert hides an alert until its underlying activity changes
func (h *AlertHandler) DismissAlert(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	id := c.Param("id")

	if err := h.service.Dismiss(c.Request.Context(), actor, id); err != nil {
		h.log.Error("Failed to dismiss alert", "error", err, "id", id, "actor_id", actor.ID)
		c.JSON(statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Alert dismissed successfully",
	})
}

// SnoozeAlert hides an alert for the requested number of hours
func (h *AlertHandler) SnoozeAlert(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	id := c.Param("id")

	var req domain.SnoozeAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.NewValidationError("Invalid request", err))
		return
	}

	if err := h.service.Snooze(c.Request.Context(), actor, id, req.Hours); err != nil {
		h.log.Error("Failed to snooze alert", "error", err, "id", id, "actor_id", actor.ID)
		c.JSON(statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Alert snoozed successfully",
	})
}

// RefreshAlerts forces a regeneration of the alert set
func (h *AlertHandler) RefreshAlerts(c *gin.Context) {
	if err := h.service.Refresh(c.Request.Context()); err != nil {
		h.log.Error("Failed to refresh alerts", "error", err)
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to refresh alerts", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Alerts refreshed successfully",
	})
}

// ListConfigs returns all automation configs
func (h *AlertHandler) ListConfigs(c *gin.Context) {
	configs, err := h.service.ListConfigs(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list configs", "error", err)
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to list configs", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": configs,
	})
}

// GetConfig returns the threshold config for one alert type
func (h *AlertHandler) GetConfig(c *gin.Context) {
	alertType := domain.AlertType(c.Param("type"))

	config, err := h.service.GetConfig(c.Request.Context(), alertType)
	if err != nil {
		h.log.Error("Failed to get config", "error", err, "type", alertType)
		c.JSON(statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, config)
}

// UpsertConfig creates or updates the threshold config for one alert type
func (h *AlertHandler) UpsertConfig(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	alertType := domain.AlertType(c.Param("type"))

	var req domain.UpsertConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.NewValidationError("Invalid request", err))
		return
	}

	config, err := h.service.UpsertConfig(c.Request.Context(), actor, alertType, &req)
	if err != nil {
		h.log.Error("Failed to upsert config", "error", err, "type", alertType, "actor_id", actor.ID)
		c.JSON(statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Config saved successfully",
		"data":    config,
	})
}
