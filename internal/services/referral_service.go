package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/conexahub/conexa/internal/models"
	apperrors "github.com/conexahub/conexa/pkg/errors"
)

// ErrReferralNotFound indicates the requested referral does not exist.
var ErrReferralNotFound = apperrors.New("REFERRAL_NOT_FOUND", "Referral not found", http.StatusNotFound)

// ReferralService manages business referrals exchanged between members and
// the referral-as-new-member path that feeds the intention workflow.
type ReferralService struct {
	db         *gorm.DB
	intentions *IntentionService
}

// NewReferralService constructs a ReferralService with the provided dependencies.
func NewReferralService(db *gorm.DB, intentions *IntentionService) (*ReferralService, error) {
	if db == nil {
		return nil, errors.New("referral service: db is required")
	}
	if intentions == nil {
		return nil, errors.New("referral service: intention service is required")
	}
	return &ReferralService{db: db, intentions: intentions}, nil
}

// CreateReferralInput captures a new business referral between two members.
type CreateReferralInput struct {
	GiverID     string
	ReceiverID  string
	CompanyName string
	ContactName string
	ContactInfo string
	Opportunity string
}

// Create records a referral in the NEW state. Both members must exist.
func (s *ReferralService) Create(ctx context.Context, input CreateReferralInput) (*models.Referral, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(input.GiverID) == "" ||
		strings.TrimSpace(input.ReceiverID) == "" ||
		strings.TrimSpace(input.CompanyName) == "" ||
		strings.TrimSpace(input.ContactName) == "" ||
		strings.TrimSpace(input.ContactInfo) == "" ||
		strings.TrimSpace(input.Opportunity) == "" {
		return nil, apperrors.NewBadRequest("giver, receiver, company, contact and opportunity are required")
	}

	var members int64
	if err := s.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("id IN ?", []string{input.GiverID, input.ReceiverID}).
		Count(&members).Error; err != nil {
		return nil, fmt.Errorf("referral service: check members: %w", err)
	}
	if members != 2 {
		return nil, ErrMemberNotFound
	}

	referral := &models.Referral{
		GiverID:     input.GiverID,
		ReceiverID:  input.ReceiverID,
		CompanyName: strings.TrimSpace(input.CompanyName),
		ContactName: strings.TrimSpace(input.ContactName),
		ContactInfo: strings.TrimSpace(input.ContactInfo),
		Opportunity: strings.TrimSpace(input.Opportunity),
		Status:      models.ReferralNew,
	}

	if err := s.db.WithContext(ctx).Create(referral).Error; err != nil {
		return nil, fmt.Errorf("referral service: create referral: %w", err)
	}

	if err := s.preloadParties(ctx, referral); err != nil {
		return nil, err
	}

	return referral, nil
}

// ReferAsIntention lets an existing member propose a prospective member.
// The proposal is an ordinary PENDING intention with ReferredBy set; it is
// subject to exactly the same uniqueness and approval rules as a direct
// submission.
func (s *ReferralService) ReferAsIntention(ctx context.Context, giverID string, input SubmitIntentionInput) (*models.Intention, error) {
	ctx = ensureContext(ctx)

	giverID = strings.TrimSpace(giverID)
	if giverID == "" {
		return nil, apperrors.NewBadRequest("giver id is required")
	}

	var giver models.Member
	err := s.db.WithContext(ctx).First(&giver, "id = ?", giverID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("referral service: load giver: %w", err)
	}

	input.ReferredBy = &giver.ID
	return s.intentions.Submit(ctx, input)
}

// ReferralDirection selects which side of a member's referrals to list.
type ReferralDirection string

const (
	ReferralsGiven    ReferralDirection = "given"
	ReferralsReceived ReferralDirection = "received"
	ReferralsAll      ReferralDirection = ""
)

// ListByMember returns a member's referrals, optionally one direction only.
func (s *ReferralService) ListByMember(ctx context.Context, memberID string, direction ReferralDirection) ([]models.Referral, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).
		Preload("Giver.Intention").
		Preload("Receiver.Intention").
		Order("created_at DESC")

	switch direction {
	case ReferralsGiven:
		query = query.Where("giver_id = ?", memberID)
	case ReferralsReceived:
		query = query.Where("receiver_id = ?", memberID)
	default:
		query = query.Where("giver_id = ? OR receiver_id = ?", memberID, memberID)
	}

	var referrals []models.Referral
	if err := query.Find(&referrals).Error; err != nil {
		return nil, fmt.Errorf("referral service: list member referrals: %w", err)
	}

	return referrals, nil
}

// List returns all referrals newest-first, optionally filtered by status.
func (s *ReferralService) List(ctx context.Context, status models.ReferralStatus) ([]models.Referral, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).
		Preload("Giver.Intention").
		Preload("Receiver.Intention").
		Order("created_at DESC")

	if status != "" {
		if !status.Valid() {
			return nil, apperrors.NewBadRequest("unknown referral status")
		}
		query = query.Where("status = ?", status)
	}

	var referrals []models.Referral
	if err := query.Find(&referrals).Error; err != nil {
		return nil, fmt.Errorf("referral service: list referrals: %w", err)
	}

	return referrals, nil
}

// GetByID loads a referral with both parties preloaded.
func (s *ReferralService) GetByID(ctx context.Context, id string) (*models.Referral, error) {
	ctx = ensureContext(ctx)

	var referral models.Referral
	err := s.db.WithContext(ctx).
		Preload("Giver.Intention").
		Preload("Receiver.Intention").
		First(&referral, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReferralNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("referral service: load referral: %w", err)
	}

	return &referral, nil
}

// UpdateStatus moves a referral through its progression states.
func (s *ReferralService) UpdateStatus(ctx context.Context, id string, status models.ReferralStatus) (*models.Referral, error) {
	ctx = ensureContext(ctx)

	if !status.Valid() {
		return nil, apperrors.NewBadRequest("status must be one of NEW, IN_CONTACT, NEGOTIATING, CLOSED, REJECTED")
	}

	referral, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(referral).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("referral service: update status: %w", err)
	}

	referral.Status = status
	return referral, nil
}

// UpdateReferralInput describes mutable referral fields.
type UpdateReferralInput struct {
	CompanyName *string
	ContactName *string
	ContactInfo *string
	Opportunity *string
	Status      *models.ReferralStatus
}

// Update modifies referral details.
func (s *ReferralService) Update(ctx context.Context, id string, input UpdateReferralInput) (*models.Referral, error) {
	ctx = ensureContext(ctx)

	referral, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.CompanyName != nil {
		updates["company_name"] = strings.TrimSpace(*input.CompanyName)
	}
	if input.ContactName != nil {
		updates["contact_name"] = strings.TrimSpace(*input.ContactName)
	}
	if input.ContactInfo != nil {
		updates["contact_info"] = strings.TrimSpace(*input.ContactInfo)
	}
	if input.Opportunity != nil {
		updates["opportunity"] = strings.TrimSpace(*input.Opportunity)
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, apperrors.NewBadRequest("unknown referral status")
		}
		updates["status"] = *input.Status
	}

	if len(updates) == 0 {
		return referral, nil
	}

	if err := s.db.WithContext(ctx).Model(referral).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("referral service: update referral: %w", err)
	}

	return s.GetByID(ctx, id)
}

// Delete removes a referral.
func (s *ReferralService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	referral, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(referral).Error; err != nil {
		return fmt.Errorf("referral service: delete referral: %w", err)
	}

	return nil
}

// ReferralStats aggregates referral totals by status.
type ReferralStats struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
}

// Stats computes referral statistics.
func (s *ReferralService) Stats(ctx context.Context) (*ReferralStats, error) {
	ctx = ensureContext(ctx)

	stats := &ReferralStats{ByStatus: map[string]int64{}}

	if err := s.db.WithContext(ctx).Model(&models.Referral{}).Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("referral service: count referrals: %w", err)
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	if err := s.db.WithContext(ctx).
		Model(&models.Referral{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("referral service: group referrals: %w", err)
	}

	for _, row := range counts {
		stats.ByStatus[row.Status] = row.Count
	}

	return stats, nil
}

func (s *ReferralService) preloadParties(ctx context.Context, referral *models.Referral) error {
	err := s.db.WithContext(ctx).
		Preload("Giver.Intention").
		Preload("Receiver.Intention").
		First(referral, "id = ?", referral.ID).Error
	if err != nil {
		return fmt.Errorf("referral service: reload referral: %w", err)
	}
	return nil
}
