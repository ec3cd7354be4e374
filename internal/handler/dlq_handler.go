package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vhvplatform/go-crm-automation-service/internal/dlq"
	"github.com/vhvplatform/go-crm-automation-service/internal/middleware"
	"github.com/vhvplatform/go-crm-automation-service/internal/shared/errors"
	"github.com/vhvplatform/go-crm-automation-service/internal/shared/logger"
)

// DLQHandler handles dead letter queue operations
type DLQHandler struct {
	dlq    *dlq.DeadLetterQueue
	sender dlq.Redeliverer
	log    *logger.Logger
}

// NewDLQHandler creates a new DLQ handler
func NewDLQHandler(queue *dlq.DeadLetterQueue, sender dlq.Redeliverer, log *logger.Logger) *DLQHandler {
	return &DLQHandler{
		dlq:    queue,
		sender: sender,
		log:    log,
	}
}

// GetFailedDispatches retrieves dead-lettered dispatches
func (h *DLQHandler) GetFailedDispatches(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if !actor.Role.Elevated() {
		c.JSON(http.StatusForbidden, errors.NewForbiddenError("Insufficient role", nil))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	failed, total, err := h.dlq.GetAll(c.Request.Context(), page, pageSize)
	if err != nil {
		h.log.Error("Failed to get failed dispatches", "error", err)
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to get failed dispatches", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      failed,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// RetryDispatch replays a dead-lettered dispatch
func (h *DLQHandler) RetryDispatch(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if !actor.Role.Elevated() {
		c.JSON(http.StatusForbidden, errors.NewForbiddenError("Insufficient role", nil))
		return
	}

	id := c.Param("id")

	if err := h.dlq.Retry(c.Request.Context(), id, h.sender); err != nil {
		h.log.Error("Failed to retry dispatch", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to retry dispatch", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Dispatch retried successfully",
	})
}
