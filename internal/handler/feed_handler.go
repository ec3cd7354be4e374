package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vhvplatform/go-crm-automation-service/internal/domain"
	"github.com/vhvplatform/go-crm-automation-service/internal/middleware"
	"github.com/vhvplatform/go-crm-automation-service/internal/repository"
	"github.com/vhvplatform/go-crm-automation-service/internal/shared/errors"
	"github.com/vhvplatform/go-crm-automation-service/internal/shared/logger"
)

// FeedHandler serves the caller's notification feed, backed by the
// dispatch log. In-app entries are the feed itself; other channels show
// up as delivery history.
type FeedHandler struct {
	repo *repository.DispatchRepository
	log  *logger.Logger
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(repo *repository.DispatchRepository, log *logger.Logger) *FeedHandler {
	return &FeedHandler{
		repo: repo,
		log:  log,
	}
}

// ListNotifications retrieves the caller's dispatch records, newest first
func (h *FeedHandler) ListNotifications(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	channel := domain.NotificationMethod(c.Query("channel"))
	status := domain.DispatchStatus(c.Query("status"))

	records, total, err := h.repo.FindByOwner(c.Request.Context(), actor.ID, channel, status, page, pageSize)
	if err != nil {
		h.log.Error("Failed to list notifications", "error", err, "actor_id", actor.ID)
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to list notifications", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      records,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetDispatchStats returns per-status dispatch counts over the last N days
func (h *FeedHandler) GetDispatchStats(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if !actor.Role.Elevated() {
		c.JSON(http.StatusForbidden, errors.NewForbiddenError("Insufficient role", nil))
		return
	}

	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
	if days < 1 {
		days = 7
	}
	since := time.Now().AddDate(0, 0, -days)

	counts, err := h.repo.CountByStatus(c.Request.Context(), since)
	if err != nil {
		h.log.Error("Failed to get dispatch stats", "error", err)
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to get dispatch stats", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"since": since,
		"data":  counts,
	})
}

// MarkNotificationRead marks one of the caller's feed entries as read
func (h *FeedHandler) MarkNotificationRead(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	id := c.Param("id")

	if err := h.repo.MarkRead(c.Request.Context(), id, actor.ID); err != nil {
		h.log.Error("Failed to mark notification read", "error", err, "id", id, "actor_id", actor.ID)
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to mark notification read", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Notification marked as read",
	})
}

// DeleteNotification soft-deletes one of the caller's feed entries
func (h *FeedHandler) DeleteNotification(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	id := c.Param("id")

	if err := h.repo.SoftDelete(c.Request.Context(), id, actor.ID); err != nil {
		h.log.Error("Failed to delete notification", "error", err, "id", id, "actor_id", actor.ID)
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to delete notification", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Notification deleted successfully",
	})
}
