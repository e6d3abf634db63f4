package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/conexahub/conexa/internal/middleware"
	"github.com/conexahub/conexa/internal/models"
	"github.com/conexahub/conexa/internal/services"
	appErrors "github.com/conexahub/conexa/pkg/errors"
	"github.com/conexahub/conexa/pkg/response"
)

type ReferralHandler struct {
	referrals *services.ReferralService
}

func NewReferralHandler(referrals *services.ReferralService) *ReferralHandler {
	return &ReferralHandler{referrals: referrals}
}

type createReferralRequest struct {
	ReceiverID  string `json:"receiver_id" validate:"required,uuid4"`
	CompanyName string `json:"company_name" validate:"required,max=255"`
	ContactName string `json:"contact_name" validate:"required,max=255"`
	ContactInfo string `json:"contact_info" validate:"required,max=255"`
	Opportunity string `json:"opportunity" validate:"required"`
}

type referralStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type updateReferralRequest struct {
	CompanyName *string `json:"company_name" validate:"omitempty,max=255"`
	ContactName *string `json:"contact_name" validate:"omitempty,max=255"`
	ContactInfo *string `json:"contact_info" validate:"omitempty,max=255"`
	Opportunity *string `json:"opportunity"`
	Status      *string `json:"status"`
}

type referAsIntentionRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"required,email"`
	Company string `json:"company" validate:"required,max=255"`
	Reason  string `json:"reason" validate:"required"`
}

// POST /api/referrals
func (h *ReferralHandler) Create(c *gin.Context) {
	giverID := c.GetString(middleware.CtxMemberIDKey)
	if giverID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req createReferralRequest
	if !bindAndValidate(c, &req) {
		return
	}

	referral, err := h.referrals.Create(requestContext(c), services.CreateReferralInput{
		GiverID:     giverID,
		ReceiverID:  req.ReceiverID,
		CompanyName: req.CompanyName,
		ContactName: req.ContactName,
		ContactInfo: req.ContactInfo,
		Opportunity: req.Opportunity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"referral": referral})
}

// POST /api/referrals/intention
func (h *ReferralHandler) ReferAsIntention(c *gin.Context) {
	giverID := c.GetString(middleware.CtxMemberIDKey)
	if giverID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req referAsIntentionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	intention, err := h.referrals.ReferAsIntention(requestContext(c), giverID, services.SubmitIntentionInput{
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

// GET /api/referrals/mine
func (h *ReferralHandler) ListMine(c *gin.Context) {
	memberID := c.GetString(middleware.CtxMemberIDKey)
	if memberID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	direction := services.ReferralDirection(strings.ToLower(strings.TrimSpace(c.Query("direction"))))
	switch direction {
	case services.ReferralsGiven, services.ReferralsReceived, services.ReferralsAll:
	default:
		response.Error(c, appErrors.NewBadRequest("direction must be given or received"))
		return
	}

	referrals, err := h.referrals.ListByMember(requestContext(c), memberID, direction)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"referrals": referrals})
}

// GET /api/referrals
func (h *ReferralHandler) List(c *gin.Context) {
	var status models.ReferralStatus
	if raw := strings.ToUpper(strings.TrimSpace(c.Query("status"))); raw != "" {
		status = models.ReferralStatus(raw)
		if !status.Valid() {
			response.Error(c, appErrors.NewBadRequest("unknown referral status"))
			return
		}
	}

	referrals, err := h.referrals.List(requestContext(c), status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"referrals": referrals})
}

// GET /api/referrals/:id
func (h *ReferralHandler) Get(c *gin.Context) {
	referral, err := h.referrals.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"referral": referral})
}

// PATCH /api/referrals/:id/status
func (h *ReferralHandler) UpdateStatus(c *gin.Context) {
	var req referralStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}

	status := models.ReferralStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	referral, err := h.referrals.UpdateStatus(requestContext(c), c.Param("id"), status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"referral": referral})
}

// PUT /api/referrals/:id
func (h *ReferralHandler) Update(c *gin.Context) {
	var req updateReferralRequest
	if !bindAndValidate(c, &req) {
		return
	}

	input := services.UpdateReferralInput{
		CompanyName: req.CompanyName,
		ContactName: req.ContactName,
		ContactInfo: req.ContactInfo,
		Opportunity: req.Opportunity,
	}
	if req.Status != nil {
		status := models.ReferralStatus(strings.ToUpper(strings.TrimSpace(*req.Status)))
		input.Status = &status
	}

	referral, err := h.referrals.Update(requestContext(c), c.Param("id"), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"referral": referral})
}

// DELETE /api/referrals/:id
func (h *ReferralHandler) Delete(c *gin.Context) {
	if err := h.referrals.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// GET /api/referrals/stats
func (h *ReferralHandler) Stats(c *gin.Context) {
	stats, err := h.referrals.Stats(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}
