package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/conexahub/conexa/internal/models"
	"github.com/conexahub/conexa/internal/services"
	appErrors "github.com/conexahub/conexa/pkg/errors"
	"github.com/conexahub/conexa/pkg/response"
)

type IntentionHandler struct {
	intentions *services.IntentionService
}

func NewIntentionHandler(intentions *services.IntentionService) *IntentionHandler {
	return &IntentionHandler{intentions: intentions}
}

type submitIntentionRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"required,email"`
	Company string `json:"company" validate:"required,max=255"`
	Reason  string `json:"reason" validate:"required"`
}

type trackingRequest struct {
	TrackingStatus string `json:"tracking_status" validate:"required,max=64"`
}

// POST /api/intentions
func (h *IntentionHandler) Submit(c *gin.Context) {
	var req submitIntentionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	intention, err := h.intentions.Submit(requestContext(c), services.SubmitIntentionInput{
		Name:    req.Name,
		Email:   req.Email,
		Company: req.Company,
		Reason:  req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"intention": intention})
}

// GET /api/intentions/validate/:token
func (h *IntentionHandler) ValidateToken(c *gin.Context) {
	info, err := h.intentions.ValidateToken(requestContext(c), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"intention": info})
}

// GET /api/intentions
func (h *IntentionHandler) List(c *gin.Context) {
	filter := services.ListIntentionsFilter{
		ReferredBy: strings.TrimSpace(c.Query("referred_by")),
	}
	if status := strings.ToUpper(strings.TrimSpace(c.Query("status"))); status != "" {
		parsed := models.IntentionStatus(status)
		if !parsed.Valid() {
			response.Error(c, appErrors.NewBadRequest("unknown intention status"))
			return
		}
		filter.Status = parsed
	}

	intentions, err := h.intentions.List(requestContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"intentions": intentions})
}

// GET /api/intentions/:id
func (h *IntentionHandler) Get(c *gin.Context) {
	intention, err := h.intentions.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"intention": intention})
}

// PATCH /api/intentions/:id/approve
func (h *IntentionHandler) Approve(c *gin.Context) {
	result, err := h.intentions.Approve(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"intention":         result.Intention,
		"member":            result.Member,
		"registration_link": result.RegistrationLink,
	})
}

// PATCH /api/intentions/:id/reject
func (h *IntentionHandler) Reject(c *gin.Context) {
	intention, err := h.intentions.Reject(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"intention": intention})
}

// PATCH /api/intentions/:id/tracking
func (h *IntentionHandler) UpdateTracking(c *gin.Context) {
	var req trackingRequest
	if !bindAndValidate(c, &req) {
		return
	}

	intention, err := h.intentions.UpdateTrackingStatus(requestContext(c), c.Param("id"), req.TrackingStatus)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"intention": intention})
}
