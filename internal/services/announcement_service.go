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

// ErrAnnouncementNotFound indicates the requested announcement does not exist.
var ErrAnnouncementNotFound = apperrors.New("ANNOUNCEMENT_NOT_FOUND", "Announcement not found", http.StatusNotFound)

// AnnouncementService manages notices published to the member dashboard.
type AnnouncementService struct {
	db  *gorm.DB
	now func() time.Time
}

// AnnouncementOption customises AnnouncementService behaviour.
type AnnouncementOption func(*AnnouncementService)

// WithAnnouncementClock injects a custom clock primarily for testing.
func WithAnnouncementClock(clock func() time.Time) AnnouncementOption {
	return func(s *AnnouncementService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewAnnouncementService constructs an AnnouncementService.
func NewAnnouncementService(db *gorm.DB, opts ...AnnouncementOption) (*AnnouncementService, error) {
	if db == nil {
		return nil, errors.New("announcement service: db is required")
	}

	service := &AnnouncementService{db: db, now: time.Now}
	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// CreateAnnouncementInput captures a new notice.
type CreateAnnouncementInput struct {
	Title      string
	Content    string
	Type       string
	Priority   int
	AuthorName string
	ExpiresAt  *time.Time
}

// Create publishes a new announcement.
func (s *AnnouncementService) Create(ctx context.Context, input CreateAnnouncementInput) (*models.Announcement, error) {
	ctx = ensureContext(ctx)

	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, apperrors.NewBadRequest("title and content are required")
	}

	kind := strings.TrimSpace(input.Type)
	if kind == "" {
		kind = "INFO"
	}
	author := strings.TrimSpace(input.AuthorName)
	if author == "" {
		author = "Administration"
	}

	announcement := &models.Announcement{
		Title:       title,
		Content:     content,
		Type:        kind,
		Priority:    input.Priority,
		AuthorName:  author,
		IsActive:    true,
		ExpiresAt:   input.ExpiresAt,
		PublishedAt: s.now(),
	}

	if err := s.db.WithContext(ctx).Create(announcement).Error; err != nil {
		return nil, fmt.Errorf("announcement service: create announcement: %w", err)
	}

	return announcement, nil
}

// ListActive returns announcements visible to members: active and either
// non-expiring or not yet expired, highest priority first.
func (s *AnnouncementService) ListActive(ctx context.Context) ([]models.Announcement, error) {
	ctx = ensureContext(ctx)

	var announcements []models.Announcement
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("expires_at IS NULL OR expires_at >= ?", s.now()).
		Order("priority DESC").
		Order("published_at DESC").
		Find(&announcements).Error
	if err != nil {
		return nil, fmt.Errorf("announcement service: list active: %w", err)
	}

	return announcements, nil
}

// ListAll returns every announcement for the admin dashboard.
func (s *AnnouncementService) ListAll(ctx context.Context) ([]models.Announcement, error) {
	ctx = ensureContext(ctx)

	var announcements []models.Announcement
	if err := s.db.WithContext(ctx).Order("published_at DESC").Find(&announcements).Error; err != nil {
		return nil, fmt.Errorf("announcement service: list all: %w", err)
	}

	return announcements, nil
}

// GetByID loads a single announcement.
func (s *AnnouncementService) GetByID(ctx context.Context, id string) (*models.Announcement, error) {
	ctx = ensureContext(ctx)

	var announcement models.Announcement
	err := s.db.WithContext(ctx).First(&announcement, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAnnouncementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("announcement service: load announcement: %w", err)
	}

	return &announcement, nil
}

// UpdateAnnouncementInput describes mutable announcement fields.
type UpdateAnnouncementInput struct {
	Title       *string
	Content     *string
	Type        *string
	Priority    *int
	ExpiresAt   *time.Time
	ClearExpiry bool
	IsActive    *bool
}

// Update modifies an announcement.
func (s *AnnouncementService) Update(ctx context.Context, id string, input UpdateAnnouncementInput) (*models.Announcement, error) {
	ctx = ensureContext(ctx)

	announcement, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Title != nil {
		if title := strings.TrimSpace(*input.Title); title != "" {
			updates["title"] = title
		}
	}
	if input.Content != nil {
		if content := strings.TrimSpace(*input.Content); content != "" {
			updates["content"] = content
		}
	}
	if input.Type != nil {
		if kind := strings.TrimSpace(*input.Type); kind != "" {
			updates["type"] = kind
		}
	}
	if input.Priority != nil {
		updates["priority"] = *input.Priority
	}
	switch {
	case input.ClearExpiry:
		updates["expires_at"] = nil
	case input.ExpiresAt != nil:
		updates["expires_at"] = *input.ExpiresAt
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if len(updates) == 0 {
		return announcement, nil
	}

	if err := s.db.WithContext(ctx).Model(announcement).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("announcement service: update announcement: %w", err)
	}

	return s.GetByID(ctx, id)
}

// Delete removes an announcement.
func (s *AnnouncementService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	announcement, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(announcement).Error; err != nil {
		return fmt.Errorf("announcement service: delete announcement: %w", err)
	}

	return nil
}

// DeactivateExpired flips is_active off for announcements whose expiry has
// passed. Invoked by the maintenance sweeper.
func (s *AnnouncementService) DeactivateExpired(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Model(&models.Announcement{}).
		Where("is_active = ?", true).
		Where("expires_at IS NOT NULL AND expires_at < ?", s.now()).
		Update("is_active", false)
	if result.Error != nil {
		return 0, fmt.Errorf("announcement service: deactivate expired: %w", result.Error)
	}

	return result.RowsAffected, nil
}
