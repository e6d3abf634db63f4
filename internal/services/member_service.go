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
	"github.com/conexahub/conexa/pkg/metrics"
)

// Demo account bootstrapped on first login so the member dashboard can be
// explored without going through the approval flow.
const demoMemberEmail = "demo@member.com"

var (
	// ErrMemberNotFound indicates the requested member does not exist.
	ErrMemberNotFound = apperrors.New("MEMBER_NOT_FOUND", "Member not found", http.StatusNotFound)
	// ErrRegistrationCompleted signals the one-time registration was already performed.
	ErrRegistrationCompleted = apperrors.New("REGISTRATION_COMPLETED", "Registration has already been completed", http.StatusConflict)
	// ErrLoginNotApproved indicates the email does not belong to an approved intention.
	ErrLoginNotApproved = apperrors.New("LOGIN_NOT_APPROVED", "No approved membership found for this email", http.StatusUnauthorized)
)

// MemberOption customises MemberService behaviour.
type MemberOption func(*MemberService)

// WithMemberClock injects a custom clock primarily for testing.
func WithMemberClock(clock func() time.Time) MemberOption {
	return func(s *MemberService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// MemberService manages member profiles: the one-time registration
// completion, post-login profile edits, listing, soft deletion, and the
// email-based login lookup.
type MemberService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewMemberService constructs a MemberService with the provided dependencies.
func NewMemberService(db *gorm.DB, opts ...MemberOption) (*MemberService, error) {
	if db == nil {
		return nil, errors.New("member service: db is required")
	}

	service := &MemberService{db: db, now: time.Now}
	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// ProfileInput carries the profile fields shared by registration completion
// and profile edits. Phone, profession and segment are mandatory.
type ProfileInput struct {
	Phone              string
	LinkedIn           string
	Profession         string
	Segment            string
	CompanyDescription string
}

func (in ProfileInput) validate() error {
	if strings.TrimSpace(in.Phone) == "" ||
		strings.TrimSpace(in.Profession) == "" ||
		strings.TrimSpace(in.Segment) == "" {
		return apperrors.NewBadRequest("phone, profession and segment are required")
	}
	return nil
}

func (in ProfileInput) updates() map[string]any {
	return map[string]any{
		"phone":               strings.TrimSpace(in.Phone),
		"linked_in":           strings.TrimSpace(in.LinkedIn),
		"profession":          strings.TrimSpace(in.Profession),
		"segment":             strings.TrimSpace(in.Segment),
		"company_description": strings.TrimSpace(in.CompanyDescription),
	}
}

// CompleteRegistration redeems a registration token exactly once, filling in
// the placeholder member created at approval. A second successful redemption
// is impossible: once the profile fields are populated the member is
// refused with ErrRegistrationCompleted and left untouched.
func (s *MemberService) CompleteRegistration(ctx context.Context, token string, input ProfileInput) (*models.Member, error) {
	ctx = ensureContext(ctx)

	if err := input.validate(); err != nil {
		return nil, err
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenNotFound
	}

	var member *models.Member
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var intention models.Intention
		if err := tx.First(&intention, "token = ?", token).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTokenNotFound
			}
			return fmt.Errorf("member service: find token: %w", err)
		}

		if intention.Status != models.IntentionApproved {
			return ErrTokenNotApproved
		}

		var placeholder models.Member
		if err := tx.First(&placeholder, "intention_id = ?", intention.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// A token on an APPROVED intention always has its placeholder;
				// its absence means the approval transaction never committed.
				return ErrTokenNotApproved
			}
			return fmt.Errorf("member service: load member: %w", err)
		}

		if placeholder.ProfileComplete() {
			return ErrRegistrationCompleted
		}

		updates := input.updates()
		updates["is_active"] = true
		if err := tx.Model(&placeholder).Updates(updates).Error; err != nil {
			return fmt.Errorf("member service: complete registration: %w", err)
		}

		if err := tx.Preload("Intention").First(&placeholder, "id = ?", placeholder.ID).Error; err != nil {
			return fmt.Errorf("member service: reload member: %w", err)
		}

		member = &placeholder
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RegistrationsCompleted.Inc()

	return member, nil
}

// CompleteProfile updates profile fields by member ID. Unlike
// CompleteRegistration it has no one-time restriction: it is the
// authenticated self-service/admin edit path and deliberately bypasses the
// token flow.
func (s *MemberService) CompleteProfile(ctx context.Context, memberID string, input ProfileInput) (*models.Member, error) {
	ctx = ensureContext(ctx)

	if err := input.validate(); err != nil {
		return nil, err
	}

	var member models.Member
	err := s.db.WithContext(ctx).First(&member, "id = ?", memberID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("member service: load member: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&member).Updates(input.updates()).Error; err != nil {
		return nil, fmt.Errorf("member service: update profile: %w", err)
	}

	if err := s.db.WithContext(ctx).Preload("Intention").First(&member, "id = ?", memberID).Error; err != nil {
		return nil, fmt.Errorf("member service: reload member: %w", err)
	}

	return &member, nil
}

// ListMembersFilter narrows member listings.
type ListMembersFilter struct {
	IsActive *bool
}

// List returns members newest-first with their intention identity attached.
func (s *MemberService) List(ctx context.Context, filter ListMembersFilter) ([]models.Member, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).
		Preload("Intention").
		Order("joined_at DESC")

	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var members []models.Member
	if err := query.Find(&members).Error; err != nil {
		return nil, fmt.Errorf("member service: list members: %w", err)
	}

	return members, nil
}

// GetByID loads a member with intention, referrals and posts preloaded.
func (s *MemberService) GetByID(ctx context.Context, id string) (*models.Member, error) {
	ctx = ensureContext(ctx)

	var member models.Member
	err := s.db.WithContext(ctx).
		Preload("Intention").
		Preload("ReferralsGiven.Receiver.Intention").
		Preload("ReferralsReceived.Giver.Intention").
		Preload("Posts").
		First(&member, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("member service: load member: %w", err)
	}

	return &member, nil
}

// Update applies an administrative profile edit. Empty required fields are
// rejected the same way as the self-service path.
func (s *MemberService) Update(ctx context.Context, id string, input ProfileInput) (*models.Member, error) {
	return s.CompleteProfile(ctx, id, input)
}

// Deactivate soft-deletes a member. Rows are never removed so referral
// history stays intact.
func (s *MemberService) Deactivate(ctx context.Context, id string) (*models.Member, error) {
	ctx = ensureContext(ctx)

	var member models.Member
	err := s.db.WithContext(ctx).First(&member, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("member service: load member: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&member).Update("is_active", false).Error; err != nil {
		return nil, fmt.Errorf("member service: deactivate member: %w", err)
	}

	member.IsActive = false
	return &member, nil
}

// MemberStats aggregates membership and referral totals.
type MemberStats struct {
	TotalMembers    int64 `json:"total_members"`
	ActiveMembers   int64 `json:"active_members"`
	InactiveMembers int64 `json:"inactive_members"`
	TotalReferrals  int64 `json:"total_referrals"`
	ClosedReferrals int64 `json:"closed_referrals"`
}

// Stats computes membership statistics.
func (s *MemberService) Stats(ctx context.Context) (*MemberStats, error) {
	ctx = ensureContext(ctx)

	stats := &MemberStats{}
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.Member{}).Count(&stats.TotalMembers).Error; err != nil {
		return nil, fmt.Errorf("member service: count members: %w", err)
	}
	if err := db.Model(&models.Member{}).Where("is_active = ?", true).Count(&stats.ActiveMembers).Error; err != nil {
		return nil, fmt.Errorf("member service: count active members: %w", err)
	}
	stats.InactiveMembers = stats.TotalMembers - stats.ActiveMembers

	if err := db.Model(&models.Referral{}).Count(&stats.TotalReferrals).Error; err != nil {
		return nil, fmt.Errorf("member service: count referrals: %w", err)
	}
	if err := db.Model(&models.Referral{}).Where("status = ?", models.ReferralClosed).Count(&stats.ClosedReferrals).Error; err != nil {
		return nil, fmt.Errorf("member service: count closed referrals: %w", err)
	}

	metrics.ActiveMembers.Set(float64(stats.ActiveMembers))

	return stats, nil
}

// LoginResult is the outcome of an email login lookup.
type LoginResult struct {
	Member          *models.Member
	NeedsCompletion bool
}

// Login resolves an email to its active member. The community is small and
// trusted, so the credential is the email itself; the caller wraps the
// result in a short-lived session token. The demo account is created on
// first use.
func (s *MemberService) Login(ctx context.Context, email string) (*LoginResult, error) {
	ctx = ensureContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperrors.NewBadRequest("email is required")
	}

	if email == demoMemberEmail {
		if err := s.ensureDemoMember(ctx); err != nil {
			return nil, err
		}
	}

	var intention models.Intention
	err := s.db.WithContext(ctx).
		Preload("Member").
		First(&intention, "email = ? AND status = ?", email, models.IntentionApproved).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLoginNotApproved
	}
	if err != nil {
		return nil, fmt.Errorf("member service: login lookup: %w", err)
	}

	if intention.Member == nil || !intention.Member.IsActive {
		return nil, ErrLoginNotApproved
	}

	member := intention.Member
	member.Intention = &intention

	return &LoginResult{
		Member:          member,
		NeedsCompletion: !member.ProfileComplete(),
	}, nil
}

func (s *MemberService) ensureDemoMember(ctx context.Context) error {
	now := s.now()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var intention models.Intention
		err := tx.First(&intention, "email = ?", demoMemberEmail).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			intention = models.Intention{
				Name:    "Demo Member",
				Email:   demoMemberEmail,
				Company: "Demo Company",
				Reason:  "Demonstration account",
				Status:  models.IntentionApproved,
			}
			if err := tx.Create(&intention).Error; err != nil {
				return fmt.Errorf("member service: create demo intention: %w", err)
			}
		case err != nil:
			return fmt.Errorf("member service: load demo intention: %w", err)
		case intention.Status != models.IntentionApproved:
			if err := tx.Model(&intention).Update("status", models.IntentionApproved).Error; err != nil {
				return fmt.Errorf("member service: approve demo intention: %w", err)
			}
		}

		var member models.Member
		err = tx.First(&member, "intention_id = ?", intention.ID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			member = models.Member{
				IntentionID:        intention.ID,
				Phone:              "(11) 99999-9999",
				LinkedIn:           "linkedin.com/in/demo",
				Profession:         "Demonstration Professional",
				Segment:            "Technology",
				CompanyDescription: "Demonstration company",
				IsActive:           true,
				JoinedAt:           now,
			}
			if err := tx.Create(&member).Error; err != nil {
				return fmt.Errorf("member service: create demo member: %w", err)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("member service: load demo member: %w", err)
		}
		return nil
	})
}
