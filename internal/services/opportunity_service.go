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

// ErrOpportunityNotFound indicates the requested opportunity does not exist.
var ErrOpportunityNotFound = apperrors.New("OPPORTUNITY_NOT_FOUND", "Business opportunity not found", http.StatusNotFound)

// OpportunityService manages commercial leads shared with the member base.
type OpportunityService struct {
	db  *gorm.DB
	now func() time.Time
}

// OpportunityOption customises OpportunityService behaviour.
type OpportunityOption func(*OpportunityService)

// WithOpportunityClock injects a custom clock primarily for testing.
func WithOpportunityClock(clock func() time.Time) OpportunityOption {
	return func(s *OpportunityService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewOpportunityService constructs an OpportunityService.
func NewOpportunityService(db *gorm.DB, opts ...OpportunityOption) (*OpportunityService, error) {
	if db == nil {
		return nil, errors.New("opportunity service: db is required")
	}

	service := &OpportunityService{db: db, now: time.Now}
	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// CreateOpportunityInput captures a new business opportunity.
type CreateOpportunityInput struct {
	Title          string
	Description    string
	Company        string
	ContactName    string
	Category       string
	Segment        string
	Location       string
	EstimatedValue *float64
	Deadline       *time.Time
	AuthorName     string
	ExpiresAt      *time.Time
}

// Create publishes a new opportunity.
func (s *OpportunityService) Create(ctx context.Context, input CreateOpportunityInput) (*models.BusinessOpportunity, error) {
	ctx = ensureContext(ctx)

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewBadRequest("title and description are required")
	}

	category := strings.ToUpper(strings.TrimSpace(input.Category))
	if category == "" {
		category = "GENERAL"
	}

	opportunity := &models.BusinessOpportunity{
		Title:          title,
		Description:    description,
		Company:        strings.TrimSpace(input.Company),
		ContactName:    strings.TrimSpace(input.ContactName),
		Category:       category,
		Segment:        strings.TrimSpace(input.Segment),
		Location:       strings.TrimSpace(input.Location),
		EstimatedValue: input.EstimatedValue,
		Deadline:       input.Deadline,
		AuthorName:     strings.TrimSpace(input.AuthorName),
		IsActive:       true,
		ExpiresAt:      input.ExpiresAt,
		PublishedAt:    s.now(),
	}

	if err := s.db.WithContext(ctx).Create(opportunity).Error; err != nil {
		return nil, fmt.Errorf("opportunity service: create opportunity: %w", err)
	}

	return opportunity, nil
}

// OpportunityFilter narrows opportunity listings.
type OpportunityFilter struct {
	Category string
	Segment  string
}

// ListActive returns opportunities visible to members: active and either
// non-expiring or not yet expired, newest first.
func (s *OpportunityService) ListActive(ctx context.Context, filter OpportunityFilter) ([]models.BusinessOpportunity, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("expires_at IS NULL OR expires_at >= ?", s.now())
	if category := strings.ToUpper(strings.TrimSpace(filter.Category)); category != "" {
		query = query.Where("category = ?", category)
	}
	if segment := strings.TrimSpace(filter.Segment); segment != "" {
		query = query.Where("segment = ?", segment)
	}

	var opportunities []models.BusinessOpportunity
	if err := query.Order("published_at DESC").Find(&opportunities).Error; err != nil {
		return nil, fmt.Errorf("opportunity service: list active: %w", err)
	}

	return opportunities, nil
}

// ListAll returns every opportunity for the admin dashboard.
func (s *OpportunityService) ListAll(ctx context.Context) ([]models.BusinessOpportunity, error) {
	ctx = ensureContext(ctx)

	var opportunities []models.BusinessOpportunity
	if err := s.db.WithContext(ctx).Order("published_at DESC").Find(&opportunities).Error; err != nil {
		return nil, fmt.Errorf("opportunity service: list all: %w", err)
	}

	return opportunities, nil
}

// GetByID loads a single opportunity.
func (s *OpportunityService) GetByID(ctx context.Context, id string) (*models.BusinessOpportunity, error) {
	ctx = ensureContext(ctx)

	var opportunity models.BusinessOpportunity
	err := s.db.WithContext(ctx).First(&opportunity, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOpportunityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("opportunity service: load opportunity: %w", err)
	}

	return &opportunity, nil
}

// UpdateOpportunityInput describes mutable opportunity fields.
type UpdateOpportunityInput struct {
	Title          *string
	Description    *string
	Company        *string
	ContactName    *string
	Category       *string
	Segment        *string
	Location       *string
	EstimatedValue *float64
	Deadline       *time.Time
	ClearDeadline  bool
	ExpiresAt      *time.Time
	ClearExpiry    bool
	IsActive       *bool
}

// Update modifies an opportunity.
func (s *OpportunityService) Update(ctx context.Context, id string, input UpdateOpportunityInput) (*models.BusinessOpportunity, error) {
	ctx = ensureContext(ctx)

	opportunity, err := s.GetByID(ctx, id)
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
		if description := strings.TrimSpace(*input.Description); description != "" {
			updates["description"] = description
		}
	}
	if input.Company != nil {
		updates["company"] = strings.TrimSpace(*input.Company)
	}
	if input.ContactName != nil {
		updates["contact_name"] = strings.TrimSpace(*input.ContactName)
	}
	if input.Category != nil {
		if category := strings.ToUpper(strings.TrimSpace(*input.Category)); category != "" {
			updates["category"] = category
		}
	}
	if input.Segment != nil {
		updates["segment"] = strings.TrimSpace(*input.Segment)
	}
	if input.Location != nil {
		updates["location"] = strings.TrimSpace(*input.Location)
	}
	if input.EstimatedValue != nil {
		updates["estimated_value"] = *input.EstimatedValue
	}
	switch {
	case input.ClearDeadline:
		updates["deadline"] = nil
	case input.Deadline != nil:
		updates["deadline"] = *input.Deadline
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
		return opportunity, nil
	}

	if err := s.db.WithContext(ctx).Model(opportunity).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("opportunity service: update opportunity: %w", err)
	}

	return s.GetByID(ctx, id)
}

// Delete removes an opportunity.
func (s *OpportunityService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	opportunity, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(opportunity).Error; err != nil {
		return fmt.Errorf("opportunity service: delete opportunity: %w", err)
	}

	return nil
}

// DeactivateExpired flips is_active off for opportunities whose expiry has
// passed. Invoked by the maintenance sweeper.
func (s *OpportunityService) DeactivateExpired(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Model(&models.BusinessOpportunity{}).
		Where("is_active = ?", true).
		Where("expires_at IS NOT NULL AND expires_at < ?", s.now()).
		Update("is_active", false)
	if result.Error != nil {
		return 0, fmt.Errorf("opportunity service: deactivate expired: %w", result.Error)
	}

	return result.RowsAffected, nil
}
