package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/conexahub/conexa/internal/middleware"
	"github.com/conexahub/conexa/internal/services"
	appErrors "github.com/conexahub/conexa/pkg/errors"
	"github.com/conexahub/conexa/pkg/response"
)

type MeetingHandler struct {
	meetings *services.MeetingService
}

func NewMeetingHandler(meetings *services.MeetingService) *MeetingHandler {
	return &MeetingHandler{meetings: meetings}
}

type createMeetingRequest struct {
	Title       string    `json:"title" validate:"required,max=255"`
	Description string    `json:"description" validate:"omitempty,max=2000"`
	Location    string    `json:"location" validate:"omitempty,max=255"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
}

type updateMeetingRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=255"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	Location    *string    `json:"location" validate:"omitempty,max=255"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

type checkInRequest struct {
	CheckedIn bool   `json:"checked_in"`
	Location  string `json:"location" validate:"omitempty,max=255"`
	Notes     string `json:"notes" validate:"omitempty,max=2000"`
}

// GET /api/meetings
func (h *MeetingHandler) List(c *gin.Context) {
	meetings, err := h.meetings.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"meetings": meetings})
}

// GET /api/meetings/:id
func (h *MeetingHandler) Get(c *gin.Context) {
	meeting, err := h.meetings.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"meeting": meeting})
}

// POST /api/meetings
func (h *MeetingHandler) Create(c *gin.Context) {
	var req createMeetingRequest
	if !bindAndValidate(c, &req) {
		return
	}

	meeting, err := h.meetings.Create(requestContext(c), services.CreateMeetingInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		ScheduledAt: req.ScheduledAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"meeting": meeting})
}

// PUT /api/meetings/:id
func (h *MeetingHandler) Update(c *gin.Context) {
	var req updateMeetingRequest
	if !bindAndValidate(c, &req) {
		return
	}

	meeting, err := h.meetings.Update(requestContext(c), c.Param("id"), services.UpdateMeetingInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		ScheduledAt: req.ScheduledAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"meeting": meeting})
}

// DELETE /api/meetings/:id
func (h *MeetingHandler) Delete(c *gin.Context) {
	if err := h.meetings.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// POST /api/meetings/:id/presences
func (h *MeetingHandler) CheckIn(c *gin.Context) {
	memberID := c.GetString(middleware.CtxMemberIDKey)
	if memberID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req checkInRequest
	if !bindAndValidate(c, &req) {
		return
	}

	presence, err := h.meetings.CheckIn(requestContext(c), services.CheckInInput{
		MeetingID: c.Param("id"),
		MemberID:  memberID,
		CheckedIn: req.CheckedIn,
		Location:  req.Location,
		Notes:     req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"presence": presence})
}

// GET /api/meetings/:id/presences
func (h *MeetingHandler) ListPresences(c *gin.Context) {
	presences, stats, err := h.meetings.ListPresences(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"presences": presences,
		"stats":     stats,
	})
}

// GET /api/members/:id/presences
func (h *MeetingHandler) MemberPresences(c *gin.Context) {
	presences, err := h.meetings.ListMemberPresences(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"presences": presences})
}
