package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/conexahub/conexa/internal/models"
	apperrors "github.com/conexahub/conexa/pkg/errors"
)

// Meeting service sentinel errors.
var (
	ErrMeetingNotFound  = apperrors.New("MEETING_NOT_FOUND", "Meeting not found", http.StatusNotFound)
	ErrPresenceNotFound = apperrors.New("PRESENCE_NOT_FOUND", "Presence record not found", http.StatusNotFound)
)

// MeetingService manages community gatherings and member check-ins.
type MeetingService struct {
	db  *gorm.DB
	now func() time.Time
}

// MeetingOption customises MeetingService behaviour.
type MeetingOption func(*MeetingService)

// WithMeetingClock injects a custom clock primarily for testing.
func WithMeetingClock(clock func() time.Time) MeetingOption {
	return func(s *MeetingService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewMeetingService constructs a MeetingService.
func NewMeetingService(db *gorm.DB, opts ...MeetingOption) (*MeetingService, error) {
	if db == nil {
		return nil, errors.New("meeting service: db is required")
	}

	service := &MeetingService{db: db, now: time.Now}
	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// CreateMeetingInput captures a new meeting.
type CreateMeetingInput struct {
	Title       string
	Description string
	Location    string
	ScheduledAt time.Time
}

// Create schedules a new meeting.
func (s *MeetingService) Create(ctx context.Context, input CreateMeetingInput) (*models.Meeting, error) {
	ctx = ensureContext(ctx)

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewBadRequest("title is required")
	}
	if input.ScheduledAt.IsZero() {
		return nil, apperrors.NewBadRequest("scheduled_at is required")
	}

	meeting := &models.Meeting{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Location:    strings.TrimSpace(input.Location),
		ScheduledAt: input.ScheduledAt,
	}

	if err := s.db.WithContext(ctx).Create(meeting).Error; err != nil {
		return nil, fmt.Errorf("meeting service: create meeting: %w", err)
	}

	return meeting, nil
}

// List returns meetings newest first.
func (s *MeetingService) List(ctx context.Context) ([]models.Meeting, error) {
	ctx = ensureContext(ctx)

	var meetings []models.Meeting
	if err := s.db.WithContext(ctx).Order("scheduled_at DESC").Find(&meetings).Error; err != nil {
		return nil, fmt.Errorf("meeting service: list meetings: %w", err)
	}

	return meetings, nil
}

// GetByID loads a meeting with its presence records.
func (s *MeetingService) GetByID(ctx context.Context, id string) (*models.Meeting, error) {
	ctx = ensureContext(ctx)

	var meeting models.Meeting
	err := s.db.WithContext(ctx).
		Preload("Presences").
		Preload("Presences.Member").
		First(&meeting, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMeetingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("meeting service: load meeting: %w", err)
	}

	return &meeting, nil
}

// UpdateMeetingInput describes mutable meeting fields.
type UpdateMeetingInput struct {
	Title       *string
	Description *string
	Location    *string
	ScheduledAt *time.Time
}

// Update modifies a meeting.
func (s *MeetingService) Update(ctx context.Context, id string, input UpdateMeetingInput) (*models.Meeting, error) {
	ctx = ensureContext(ctx)

	meeting, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Title != nil {
		if title := strings.TrimSpace(*input.Title); title != "" {
			updates["title"] = title
		}
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Location != nil {
		updates["location"] = strings.TrimSpace(*input.Location)
	}
	if input.ScheduledAt != nil && !input.ScheduledAt.IsZero() {
		updates["scheduled_at"] = *input.ScheduledAt
	}

	if len(updates) == 0 {
		return meeting, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.Meeting{BaseModel: models.BaseModel{ID: meeting.ID}}).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("meeting service: update meeting: %w", err)
	}

	return s.GetByID(ctx, id)
}

// Delete removes a meeting and its presence records.
func (s *MeetingService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	meeting, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meeting_id = ?", meeting.ID).Delete(&models.Presence{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Meeting{}, "id = ?", meeting.ID).Error
	})
	if err != nil {
		return fmt.Errorf("meeting service: delete meeting: %w", err)
	}

	return nil
}

// CheckInInput captures a member check-in for a meeting.
type CheckInInput struct {
	MeetingID string
	MemberID  string
	CheckedIn bool
	Location  string
	Notes     string
}

// CheckIn records or refreshes a member's presence at a meeting. The
// (meeting, member) pair is unique; a repeated check-in updates the existing
// row instead of creating a duplicate.
func (s *MeetingService) CheckIn(ctx context.Context, input CheckInInput) (*models.Presence, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(input.MeetingID) == "" || strings.TrimSpace(input.MemberID) == "" {
		return nil, apperrors.NewBadRequest("meeting_id and member_id are required")
	}

	var presence *models.Presence
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Meeting{}).Where("id = ?", input.MeetingID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrMeetingNotFound
		}
		if err := tx.Model(&models.Member{}).Where("id = ?", input.MemberID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrMemberNotFound
		}

		var checkedAt *time.Time
		if input.CheckedIn {
			now := s.now()
			checkedAt = &now
		}

		var existing models.Presence
		err := tx.Where("meeting_id = ? AND member_id = ?", input.MeetingID, input.MemberID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			created := models.Presence{
				MeetingID: input.MeetingID,
				MemberID:  input.MemberID,
				CheckedIn: input.CheckedIn,
				CheckedAt: checkedAt,
				Location:  strings.TrimSpace(input.Location),
				Notes:     strings.TrimSpace(input.Notes),
			}
			if err := tx.Create(&created).Error; err != nil {
				return err
			}
			presence = &created
			return nil
		case err != nil:
			return err
		}

		updates := map[string]any{
			"checked_in": input.CheckedIn,
			"checked_at": checkedAt,
			"location":   strings.TrimSpace(input.Location),
			"notes":      strings.TrimSpace(input.Notes),
		}
		if err := tx.Model(&existing).Updates(updates).Error; err != nil {
			return err
		}
		presence = &existing
		return nil
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, fmt.Errorf("meeting service: check in: %w", err)
	}

	return presence, nil
}

// PresenceStats summarises attendance for a single meeting.
type PresenceStats struct {
	Total     int64 `json:"total"`
	CheckedIn int64 `json:"checked_in"`
}

// ListPresences returns every presence record for a meeting plus attendance
// counts.
func (s *MeetingService) ListPresences(ctx context.Context, meetingID string) ([]models.Presence, *PresenceStats, error) {
	ctx = ensureContext(ctx)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Meeting{}).Where("id = ?", meetingID).Count(&count).Error; err != nil {
		return nil, nil, fmt.Errorf("meeting service: check meeting: %w", err)
	}
	if count == 0 {
		return nil, nil, ErrMeetingNotFound
	}

	var presences []models.Presence
	err := s.db.WithContext(ctx).
		Preload("Member").
		Where("meeting_id = ?", meetingID).
		Order("created_at ASC").
		Find(&presences).Error
	if err != nil {
		return nil, nil, fmt.Errorf("meeting service: list presences: %w", err)
	}

	stats := &PresenceStats{Total: int64(len(presences))}
	for _, presence := range presences {
		if presence.CheckedIn {
			stats.CheckedIn++
		}
	}

	return presences, stats, nil
}

// ListMemberPresences returns a member's check-in history, newest meeting
// first.
func (s *MeetingService) ListMemberPresences(ctx context.Context, memberID string) ([]models.Presence, error) {
	ctx = ensureContext(ctx)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Member{}).Where("id = ?", memberID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("meeting service: check member: %w", err)
	}
	if count == 0 {
		return nil, ErrMemberNotFound
	}

	var presences []models.Presence
	err := s.db.WithContext(ctx).
		Preload("Meeting").
		Where("member_id = ?", memberID).
		Order("created_at DESC").
		Find(&presences).Error
	if err != nil {
		return nil, fmt.Errorf("meeting service: list member presences: %w", err)
	}

	return presences, nil
}
