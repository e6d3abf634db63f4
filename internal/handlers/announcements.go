package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/conexahub/conexa/internal/services"
	"github.com/conexahub/conexa/pkg/response"
)

type AnnouncementHandler struct {
	announcements *services.AnnouncementService
}

func NewAnnouncementHandler(announcements *services.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcements: announcements}
}

type createAnnouncementRequest struct {
	Title      string     `json:"title" validate:"required,max=255"`
	Content    string     `json:"content" validate:"required"`
	Type       string     `json:"type" validate:"omitempty,max=32"`
	Priority   int        `json:"priority" validate:"omitempty,min=0,max=100"`
	AuthorName string     `json:"author_name" validate:"omitempty,max=255"`
	ExpiresAt  *time.Time `json:"expires_at"`
}

type updateAnnouncementRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=255"`
	Content     *string    `json:"content"`
	Type        *string    `json:"type" validate:"omitempty,max=32"`
	Priority    *int       `json:"priority" validate:"omitempty,min=0,max=100"`
	ExpiresAt   *time.Time `json:"expires_at"`
	ClearExpiry bool       `json:"clear_expiry"`
	IsActive    *bool      `json:"is_active"`
}

// GET /api/announcements
func (h *AnnouncementHandler) ListActive(c *gin.Context) {
	announcements, err := h.announcements.ListActive(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"announcements": announcements})
}

// GET /api/announcements/all
func (h *AnnouncementHandler) ListAll(c *gin.Context) {
	announcements, err := h.announcements.ListAll(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"announcements": announcements})
}

// GET /api/announcements/:id
func (h *AnnouncementHandler) Get(c *gin.Context) {
	announcement, err := h.announcements.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"announcement": announcement})
}

// POST /api/announcements
func (h *AnnouncementHandler) Create(c *gin.Context) {
	var req createAnnouncementRequest
	if !bindAndValidate(c, &req) {
		return
	}

	announcement, err := h.announcements.Create(requestContext(c), services.CreateAnnouncementInput{
		Title:      req.Title,
		Content:    req.Content,
		Type:       req.Type,
		Priority:   req.Priority,
		AuthorName: req.AuthorName,
		ExpiresAt:  req.ExpiresAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"announcement": announcement})
}

// PUT /api/announcements/:id
func (h *AnnouncementHandler) Update(c *gin.Context) {
	var req updateAnnouncementRequest
	if !bindAndValidate(c, &req) {
		return
	}

	announcement, err := h.announcements.Update(requestContext(c), c.Param("id"), services.UpdateAnnouncementInput{
		Title:       req.Title,
		Content:     req.Content,
		Type:        req.Type,
		Priority:    req.Priority,
		ExpiresAt:   req.ExpiresAt,
		ClearExpiry: req.ClearExpiry,
		IsActive:    req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"announcement": announcement})
}

// DELETE /api/announcements/:id
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	if err := h.announcements.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
