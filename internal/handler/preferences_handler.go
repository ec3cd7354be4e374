package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vhvplatform/go-crm-automation-service/internal/domain"
	"github.com/vhvplatform/go-crm-automation-service/internal/middleware"
	"github.com/vhvplatform/go-crm-automation-service/internal/repository"
	"github.com/vhvplatform/go-crm-automation-service/internal/shared/errors"
	"github.com/vhvplatform/go-crm-automation-service/internal/shared/logger"
)

// PreferencesHandler handles notification preferences requests
type PreferencesHandler struct {
	repo *repository.PreferencesRepository
	log  *logger.Logger
}

// NewPreferencesHandler creates a new preferences handler
func NewPreferencesHandler(repo *repository.PreferencesRepository, log *logger.Logger) *PreferencesHandler {
	return &PreferencesHandler{
		repo: repo,
		log:  log,
	}
}

// resolveUserID allows a caller to touch their own preferences and
// elevated roles to touch anyone's
func resolveUserID(c *gin.Context) (string, bool) {
	actor := middleware.ActorFrom(c)
	userID := c.Param("user_id")
	if userID == "" {
		return actor.ID, true
	}
	if userID != actor.ID && !actor.Role.Elevated() {
		return "", false
	}
	return userID, true
}

// GetPreferences retrieves a user's notification preferences
func (h *PreferencesHandler) GetPreferences(c *gin.Context) {
	userID, ok := resolveUserID(c)
	if !ok {
		c.JSON(http.StatusForbidden, errors.NewForbiddenError("Insufficient role", nil))
		return
	}

	prefs, err := h.repo.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("Failed to get preferences", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to get preferences", err))
		return
	}

	c.JSON(http.StatusOK, prefs)
}

// UpdatePreferences upserts a user's notification preferences.
// Omitted boolean fields keep their current value.
func (h *PreferencesHandler) UpdatePreferences(c *gin.Context) {
	userID, ok := resolveUserID(c)
	if !ok {
		c.JSON(http.StatusForbidden, errors.NewForbiddenError("Insufficient role", nil))
		return
	}

	var req domain.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.NewValidationError("Invalid request", err))
		return
	}

	prefs, err := h.repo.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("Failed to load preferences", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to update preferences", err))
		return
	}

	if req.InAppEnabled != nil {
		prefs.InAppEnabled = *req.InAppEnabled
	}
	if req.EmailEnabled != nil {
		prefs.EmailEnabled = *req.EmailEnabled
	}
	if req.WhatsAppEnabled != nil {
		prefs.WhatsAppEnabled = *req.WhatsAppEnabled
	}
	if req.EmailAddress != "" {
		prefs.EmailAddress = req.EmailAddress
	}
	if req.WhatsAppNumber != "" {
		prefs.WhatsAppNumber = req.WhatsAppNumber
	}
	if req.QuietHoursStart != "" {
		prefs.QuietHoursStart = req.QuietHoursStart
	}
	if req.QuietHoursEnd != "" {
		prefs.QuietHoursEnd = req.QuietHoursEnd
	}
	if req.Timezone != "" {
		if _, err := time.LoadLocation(req.Timezone); err != nil {
			c.JSON(http.StatusBadRequest, errors.NewValidationError("Unknown timezone", err))
			return
		}
		prefs.Timezone = req.Timezone
	}
	prefs.UserID = userID

	if err := h.repo.Upsert(c.Request.Context(), prefs); err != nil {
		h.log.Error("Failed to update preferences", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to update preferences", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Preferences updated successfully",
		"data":    prefs,
	})
}
