package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vhvplatform/go-crm-automation-service/internal/domain"
	"github.com/vhvplatform/go-crm-automation-service/internal/middleware"
	"github.com/vhvplatform/go-crm-automation-service/internal/repository"
	"github.com/vhvplatform/go-crm-automation-service/internal/shared/errors"
	"github.com/vhvplatform/go-crm-automation-service/internal/shared/logger"
)

// TemplateHandler handles message template management
type TemplateHandler struct {
	repo *repository.TemplateRepository
	log  *logger.Logger
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(repo *repository.TemplateRepository, log *logger.Logger) *TemplateHandler {
	return &TemplateHandler{
		repo: repo,
		log:  log,
	}
}

// ListTemplates retrieves all message templates
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	templates, err := h.repo.FindAll(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list templates", "error", err)
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to list templates", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  templates,
		"total": len(templates),
	})
}

// GetTemplate retrieves a template by name
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	name := c.Param("name")

	template, err := h.repo.FindByName(c.Request.Context(), name)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, errors.NewNotFoundError("Template not found", err))
			return
		}
		h.log.Error("Failed to get template", "error", err, "name", name)
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to get template", err))
		return
	}

	c.JSON(http.StatusOK, template)
}

// CreateTemplate creates a new message template
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if !actor.Role.Elevated() {
		c.JSON(http.StatusForbidden, errors.NewForbiddenError("Insufficient role", nil))
		return
	}

	var template domain.MessageTemplate
	if err := c.ShouldBindJSON(&template); err != nil {
		c.JSON(http.StatusBadRequest, errors.NewValidationError("Invalid request", err))
		return
	}
	if template.Name == "" {
		c.JSON(http.StatusBadRequest, errors.NewValidationError("Template name is required", nil))
		return
	}

	if err := h.repo.Create(c.Request.Context(), &template); err != nil {
		h.log.Error("Failed to create template", "error", err, "name", template.Name)
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to create template", err))
		return
	}

	c.JSON(http.StatusCreated, template)
}

// UpdateTemplate updates an existing message template
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if !actor.Role.Elevated() {
		c.JSON(http.StatusForbidden, errors.NewForbiddenError("Insufficient role", nil))
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.NewValidationError("Invalid template id", err))
		return
	}

	var template domain.MessageTemplate
	if err := c.ShouldBindJSON(&template); err != nil {
		c.JSON(http.StatusBadRequest, errors.NewValidationError("Invalid request", err))
		return
	}
	template.ID = id

	if err := h.repo.Update(c.Request.Context(), &template); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, errors.NewNotFoundError("Template not found", err))
			return
		}
		h.log.Error("Failed to update template", "error", err, "id", id.Hex())
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to update template", err))
		return
	}

	c.JSON(http.StatusOK, template)
}

// DeleteTemplate removes a message template
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if !actor.Role.Elevated() {
		c.JSON(http.StatusForbidden, errors.NewForbiddenError("Insufficient role", nil))
		return
	}

	id := c.Param("id")

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, errors.NewNotFoundError("Template not found", err))
			return
		}
		h.log.Error("Failed to delete template", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to delete template", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Template deleted successfully",
	})
}
