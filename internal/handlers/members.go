package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/conexahub/conexa/internal/auth"
	"github.com/conexahub/conexa/internal/middleware"
	"github.com/conexahub/conexa/internal/models"
	"github.com/conexahub/conexa/internal/services"
	appErrors "github.com/conexahub/conexa/pkg/errors"
	"github.com/conexahub/conexa/pkg/response"
)

type MemberHandler struct {
	members *services.MemberService
	jwt     *iauth.JWTService
}

func NewMemberHandler(members *services.MemberService, jwt *iauth.JWTService) *MemberHandler {
	return &MemberHandler{members: members, jwt: jwt}
}

type profileRequest struct {
	Phone              string `json:"phone" validate:"required,max=32"`
	LinkedIn           string `json:"linkedin" validate:"omitempty,max=255"`
	Profession         string `json:"profession" validate:"required,max=255"`
	Segment            string `json:"segment" validate:"required,max=255"`
	CompanyDescription string `json:"company_description" validate:"omitempty,max=2000"`
}

func (r profileRequest) input() services.ProfileInput {
	return services.ProfileInput{
		Phone:              r.Phone,
		LinkedIn:           r.LinkedIn,
		Profession:         r.Profession,
		Segment:            r.Segment,
		CompanyDescription: r.CompanyDescription,
	}
}

type loginRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// publicMemberDTO hides contact details from the public member directory.
type publicMemberDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Company    string `json:"company"`
	Profession string `json:"profession,omitempty"`
	Segment    string `json:"segment,omitempty"`
	LinkedIn   string `json:"linkedin,omitempty"`
}

func publicMemberView(member models.Member) publicMemberDTO {
	dto := publicMemberDTO{
		ID:         member.ID,
		Profession: member.Profession,
		Segment:    member.Segment,
		LinkedIn:   member.LinkedIn,
	}
	if member.Intention != nil {
		dto.Name = member.Intention.Name
		dto.Company = member.Intention.Company
	}
	return dto
}

// POST /api/members/register/:token
func (h *MemberHandler) Register(c *gin.Context) {
	var req profileRequest
	if !bindAndValidate(c, &req) {
		return
	}

	member, err := h.members.CompleteRegistration(requestContext(c), c.Param("token"), req.input())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"member": member})
}

// POST /api/members/login
func (h *MemberHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.members.Login(requestContext(c), req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	token, err := h.jwt.GenerateSessionToken(result.Member.ID, email)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token":            token,
		"member":           result.Member,
		"needs_completion": result.NeedsCompletion,
	})
}

// POST /api/members/:id/complete-profile
func (h *MemberHandler) CompleteProfile(c *gin.Context) {
	id := c.Param("id")
	if caller := c.GetString(middleware.CtxMemberIDKey); caller != "" && caller != id {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	var req profileRequest
	if !bindAndValidate(c, &req) {
		return
	}

	member, err := h.members.CompleteProfile(requestContext(c), id, req.input())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"member": member})
}

// GET /api/members/public/list
func (h *MemberHandler) PublicList(c *gin.Context) {
	active := true
	members, err := h.members.List(requestContext(c), services.ListMembersFilter{IsActive: &active})
	if err != nil {
		response.Error(c, err)
		return
	}

	views := make([]publicMemberDTO, 0, len(members))
	for _, member := range members {
		views = append(views, publicMemberView(member))
	}

	response.Success(c, http.StatusOK, gin.H{"members": views})
}

// GET /api/members/:id/public
func (h *MemberHandler) PublicGet(c *gin.Context) {
	member, err := h.members.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"member": publicMemberView(*member)})
}

// GET /api/members
func (h *MemberHandler) List(c *gin.Context) {
	filter := services.ListMembersFilter{}
	if raw := strings.TrimSpace(c.Query("is_active")); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.NewBadRequest("is_active must be a boolean"))
			return
		}
		filter.IsActive = &active
	}

	members, err := h.members.List(requestContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"members": members})
}

// GET /api/members/:id
func (h *MemberHandler) Get(c *gin.Context) {
	member, err := h.members.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"member": member})
}

// PUT /api/members/:id
func (h *MemberHandler) Update(c *gin.Context) {
	var req profileRequest
	if !bindAndValidate(c, &req) {
		return
	}

	member, err := h.members.Update(requestContext(c), c.Param("id"), req.input())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"member": member})
}

// POST /api/members/:id/deactivate
func (h *MemberHandler) Deactivate(c *gin.Context) {
	member, err := h.members.Deactivate(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"member": member})
}

// GET /api/members/stats
func (h *MemberHandler) Stats(c *gin.Context) {
	stats, err := h.members.Stats(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}
