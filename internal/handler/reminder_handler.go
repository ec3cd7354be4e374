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

// ReminderHandler handles reminder lifecycle requests
type ReminderHandler struct {
	service *service.ReminderService
	log     *logger.Logger
}

// NewReminderHandler creates a new reminder handler
func NewReminderHandler(service *service.ReminderService, log *logger.Logger) *ReminderHandler {
	return &ReminderHandler{
		service: service,
		log:     log,
	}
}

// CreateReminder creates a new reminder owned by the caller
func (h *ReminderHandler) CreateReminder(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	var req domain.CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.NewValidationError("Invalid request", err))
		return
	}

	reminder, err := h.service.Create(c.Request.Context(), actor, &req)
	if err != nil {
		h.log.Error("Failed to create reminder", "error", err, "actor_id", actor.ID)
		c.JSON(statusFor(err), err)
		return
	}

	c.JSON(http.StatusCreated, reminder)
}

// GetReminder retrieves a single reminder
func (h *ReminderHandler) GetReminder(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	id := c.Param("id")

	reminder, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.log.Error("Failed to get reminder", "error", err, "id", id, "actor_id", actor.ID)
		c.JSON(statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, reminder)
}

// ListReminders lists the caller's reminders with pagination
func (h *ReminderHandler) ListReminders(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	var req domain.ListRemindersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.NewValidationError("Invalid request", err))
		return
	}

	reminders, total, err := h.service.List(c.Request.Context(), actor, &req)
	if err != nil {
		h.log.Error("Failed to list reminders", "error", err, "actor_id", actor.ID)
		c.JSON(statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      reminders,
		"total":     total,
		"page":      req.Page,
		"page_size": req.PageSize,
	})
}

// UpcomingReminders lists the caller's reminders due within the next day
func (h *ReminderHandler) UpcomingReminders(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	reminders, err := h.service.Upcoming(c.Request.Context(), actor)
	if err != nil {
		h.log.Error("Failed to list upcoming reminders", "error", err, "actor_id", actor.ID)
		c.JSON(statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  reminders,
		"total": len(reminders),
	})
}

// UpdateReminder applies a partial update to a reminder
func (h *ReminderHandler) UpdateReminder(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	id := c.Param("id")

	var req domain.UpdateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.NewValidationError("Invalid request", err))
		return
	}

	reminder, err := h.service.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.log.Error("Failed to update reminder", "error", err, "id", id, "actor_id", actor.ID)
		c.JSON(statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, reminder)
}

// SnoozeReminder pushes a reminder's next delivery out by the given minutes
func (h *ReminderHandler) SnoozeReminder(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	id := c.Param("id")

	var req domain.SnoozeReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.NewValidationError("Invalid request", err))
		return
	}

	reminder, err := h.service.Snooze(c.Request.Context(), actor, id, req.Minutes)
	if err != nil {
		h.log.Error("Failed to snooze reminder", "error", err, "id", id, "actor_id", actor.ID)
		c.JSON(statusFor(err), err)
		return
	}
	if reminder == nil {
		c.JSON(http.StatusOK, gin.H{"message": "Nothing to snooze"})
		return
	}

	c.JSON(http.StatusOK, reminder)
}

// CompleteReminder marks a reminder done; recurring reminders spawn a successor
func (h *ReminderHandler) CompleteReminder(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	id := c.Param("id")

	reminder, err := h.service.Complete(c.Request.Context(), actor, id)
	if err != nil {
		h.log.Error("Failed to complete reminder", "error", err, "id", id, "actor_id", actor.ID)
		c.JSON(statusFor(err), err)
		return
	}
	if reminder == nil {
		c.JSON(http.StatusOK, gin.H{"message": "Nothing to complete"})
		return
	}

	c.JSON(http.StatusOK, reminder)
}

// DismissReminder marks a reminder dismissed
func (h *ReminderHandler) DismissReminder(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	id := c.Param("id")

	reminder, err := h.service.Dismiss(c.Request.Context(), actor, id)
	if err != nil {
		h.log.Error("Failed to dismiss reminder", "error", err, "id", id, "actor_id", actor.ID)
		c.JSON(statusFor(err), err)
		return
	}
	if reminder == nil {
		c.JSON(http.StatusOK, gin.H{"message": "Nothing to dismiss"})
		return
	}

	c.JSON(http.StatusOK, reminder)
}

// ArchiveReminder soft-deletes a reminder
func (h *ReminderHandler) ArchiveReminder(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	id := c.Param("id")

	if err := h.service.Archive(c.Request.Context(), actor, id); err != nil {
		h.log.Error("Failed to archive reminder", "error", err, "id", id, "actor_id", actor.ID)
		c.JSON(statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reminder archived successfully",
	})
}
