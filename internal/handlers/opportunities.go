package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/conexahub/conexa/internal/services"
	"github.com/conexahub/conexa/pkg/response"
)

type OpportunityHandler struct {
	opportunities *services.OpportunityService
}

func NewOpportunityHandler(opportunities *services.OpportunityService) *OpportunityHandler {
	return &OpportunityHandler{opportunities: opportunities}
}

type createOpportunityRequest struct {
	Title          string     `json:"title" validate:"required,max=255"`
	Description    string     `json:"description" validate:"required"`
	Company        string     `json:"company" validate:"omitempty,max=255"`
	ContactName    string     `json:"contact_name" validate:"omitempty,max=255"`
	Category       string     `json:"category" validate:"omitempty,max=64"`
	Segment        string     `json:"segment" validate:"omitempty,max=255"`
	Location       string     `json:"location" validate:"omitempty,max=255"`
	EstimatedValue *float64   `json:"estimated_value" validate:"omitempty,gte=0"`
	Deadline       *time.Time `json:"deadline"`
	AuthorName     string     `json:"author_name" validate:"omitempty,max=255"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

type updateOpportunityRequest struct {
	Title          *string    `json:"title" validate:"omitempty,max=255"`
	Description    *string    `json:"description"`
	Company        *string    `json:"company" validate:"omitempty,max=255"`
	ContactName    *string    `json:"contact_name" validate:"omitempty,max=255"`
	Category       *string    `json:"category" validate:"omitempty,max=64"`
	Segment        *string    `json:"segment" validate:"omitempty,max=255"`
	Location       *string    `json:"location" validate:"omitempty,max=255"`
	EstimatedValue *float64   `json:"estimated_value" validate:"omitempty,gte=0"`
	Deadline       *time.Time `json:"deadline"`
	ClearDeadline  bool       `json:"clear_deadline"`
	ExpiresAt      *time.Time `json:"expires_at"`
	ClearExpiry    bool       `json:"clear_expiry"`
	IsActive       *bool      `json:"is_active"`
}

// GET /api/opportunities
func (h *OpportunityHandler) ListActive(c *gin.Context) {
	opportunities, err := h.opportunities.ListActive(requestContext(c), services.OpportunityFilter{
		Category: c.Query("category"),
		Segment:  c.Query("segment"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"opportunities": opportunities})
}

// GET /api/opportunities/all
func (h *OpportunityHandler) ListAll(c *gin.Context) {
	opportunities, err := h.opportunities.ListAll(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"opportunities": opportunities})
}

// GET /api/opportunities/:id
func (h *OpportunityHandler) Get(c *gin.Context) {
	opportunity, err := h.opportunities.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"opportunity": opportunity})
}

// POST /api/opportunities
func (h *OpportunityHandler) Create(c *gin.Context) {
	var req createOpportunityRequest
	if !bindAndValidate(c, &req) {
		return
	}

	opportunity, err := h.opportunities.Create(requestContext(c), services.CreateOpportunityInput{
		Title:          req.Title,
		Description:    req.Description,
		Company:        req.Company,
		ContactName:    req.ContactName,
		Category:       req.Category,
		Segment:        req.Segment,
		Location:       req.Location,
		EstimatedValue: req.EstimatedValue,
		Deadline:       req.Deadline,
		AuthorName:     req.AuthorName,
		ExpiresAt:      req.ExpiresAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"opportunity": opportunity})
}

// PUT /api/opportunities/:id
func (h *OpportunityHandler) Update(c *gin.Context) {
	var req updateOpportunityRequest
	if !bindAndValidate(c, &req) {
		return
	}

	opportunity, err := h.opportunities.Update(requestContext(c), c.Param("id"), services.UpdateOpportunityInput{
		Title:          req.Title,
		Description:    req.Description,
		Company:        req.Company,
		ContactName:    req.ContactName,
		Category:       req.Category,
		Segment:        req.Segment,
		Location:       req.Location,
		EstimatedValue: req.EstimatedValue,
		Deadline:       req.Deadline,
		ClearDeadline:  req.ClearDeadline,
		ExpiresAt:      req.ExpiresAt,
		ClearExpiry:    req.ClearExpiry,
		IsActive:       req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"opportunity": opportunity})
}

// DELETE /api/opportunities/:id
func (h *OpportunityHandler) Delete(c *gin.Context) {
	if err := h.opportunities.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
