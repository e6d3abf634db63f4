package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/conexahub/conexa/internal/models"
	"github.com/conexahub/conexa/pkg/crypto"
	apperrors "github.com/conexahub/conexa/pkg/errors"
	"github.com/conexahub/conexa/pkg/logger"
	"github.com/conexahub/conexa/pkg/mail"
	"github.com/conexahub/conexa/pkg/metrics"
)

const defaultRegistrationTokenBytes = 24

var (
	// ErrIntentionNotFound indicates the requested intention does not exist.
	ErrIntentionNotFound = apperrors.New("INTENTION_NOT_FOUND", "Intention not found", http.StatusNotFound)
	// ErrIntentionEmailExists signals an intention already exists for the email, regardless of status.
	ErrIntentionEmailExists = apperrors.New("INTENTION_EMAIL_EXISTS", "An intention already exists for this email", http.StatusConflict)
	// ErrIntentionNotPending indicates a terminal intention cannot be approved or rejected again.
	ErrIntentionNotPending = apperrors.New("INTENTION_NOT_PENDING", "Only pending intentions can be decided", http.StatusBadRequest)
	// ErrIntentionMemberExists guards the approve path against a member row that should not exist yet.
	ErrIntentionMemberExists = apperrors.New("INTENTION_MEMBER_EXISTS", "A member already exists for this intention", http.StatusConflict)
	// ErrTokenNotFound indicates no intention holds the provided registration token.
	ErrTokenNotFound = apperrors.New("TOKEN_NOT_FOUND", "Registration token is invalid", http.StatusNotFound)
	// ErrTokenNotApproved signals a token whose intention is not in the APPROVED state.
	ErrTokenNotApproved = apperrors.New("TOKEN_NOT_APPROVED", "This intention is not approved", http.StatusBadRequest)
	// ErrTokenAlreadyUsed signals the registration behind the token was already completed.
	ErrTokenAlreadyUsed = apperrors.New("TOKEN_ALREADY_USED", "This registration token has already been used", http.StatusConflict)
)

// IntentionOption customises IntentionService behaviour.
type IntentionOption func(*IntentionService)

// WithRegistrationBaseURL configures the frontend root used to compose registration links.
func WithRegistrationBaseURL(url string) IntentionOption {
	return func(s *IntentionService) {
		s.baseURL = strings.TrimRight(url, "/")
	}
}

// WithTokenSize adjusts the random registration token length in bytes.
func WithTokenSize(size int) IntentionOption {
	return func(s *IntentionService) {
		if size > 0 {
			s.tokenLength = size
		}
	}
}

// WithIntentionClock injects a custom clock primarily for testing.
func WithIntentionClock(clock func() time.Time) IntentionOption {
	return func(s *IntentionService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// IntentionService owns the join-intention lifecycle: public submission,
// administrative listing, the two terminal decisions, and registration
// token validation.
type IntentionService struct {
	db          *gorm.DB
	mailer      mail.Mailer
	baseURL     string
	tokenLength int
	now         func() time.Time
	log         *zap.Logger
}

// NewIntentionService constructs an IntentionService with the provided dependencies.
func NewIntentionService(db *gorm.DB, mailer mail.Mailer, opts ...IntentionOption) (*IntentionService, error) {
	if db == nil {
		return nil, errors.New("intention service: db is required")
	}

	service := &IntentionService{
		db:          db,
		mailer:      mailer,
		tokenLength: defaultRegistrationTokenBytes,
		now:         time.Now,
		log:         logger.WithModule("intentions"),
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// SubmitIntentionInput captures a public join submission.
type SubmitIntentionInput struct {
	Name       string
	Email      string
	Company    string
	Reason     string
	ReferredBy *string
}

// Submit records a new intention in the PENDING state. Email uniqueness is
// enforced against every intention ever created; the store's unique index
// is the authoritative check under concurrent submissions.
func (s *IntentionService) Submit(ctx context.Context, input SubmitIntentionInput) (*models.Intention, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	company := strings.TrimSpace(input.Company)
	reason := strings.TrimSpace(input.Reason)

	if name == "" || email == "" || company == "" || reason == "" {
		return nil, apperrors.NewBadRequest("name, email, company and reason are required")
	}

	var existing int64
	if err := s.db.WithContext(ctx).
		Model(&models.Intention{}).
		Where("email = ?", email).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("intention service: check email: %w", err)
	}
	if existing > 0 {
		return nil, ErrIntentionEmailExists
	}

	intention := &models.Intention{
		Name:       name,
		Email:      email,
		Company:    company,
		Reason:     reason,
		Status:     models.IntentionPending,
		ReferredBy: input.ReferredBy,
	}

	if err := s.db.WithContext(ctx).Create(intention).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrIntentionEmailExists
		}
		return nil, fmt.Errorf("intention service: create intention: %w", err)
	}

	return intention, nil
}

// ListIntentionsFilter narrows administrative listings.
type ListIntentionsFilter struct {
	Status     models.IntentionStatus
	ReferredBy string
}

// List returns intentions newest-first, optionally filtered by status or referrer.
func (s *IntentionService) List(ctx context.Context, filter ListIntentionsFilter) ([]models.Intention, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).
		Preload("Member").
		Order("created_at DESC")

	if filter.Status != "" {
		if !filter.Status.Valid() {
			return nil, apperrors.NewBadRequest("unknown intention status")
		}
		query = query.Where("status = ?", filter.Status)
	}
	if referrer := strings.TrimSpace(filter.ReferredBy); referrer != "" {
		query = query.Where("referred_by = ?", referrer)
	}

	var intentions []models.Intention
	if err := query.Find(&intentions).Error; err != nil {
		return nil, fmt.Errorf("intention service: list intentions: %w", err)
	}

	return intentions, nil
}

// GetByID loads a single intention with its member, when one exists.
func (s *IntentionService) GetByID(ctx context.Context, id string) (*models.Intention, error) {
	ctx = ensureContext(ctx)

	var intention models.Intention
	err := s.db.WithContext(ctx).Preload("Member").First(&intention, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrIntentionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("intention service: load intention: %w", err)
	}

	return &intention, nil
}

// ApprovalResult bundles the outcome of a successful approval.
type ApprovalResult struct {
	Intention        *models.Intention
	Member           *models.Member
	RegistrationLink string
}

// Approve transitions a PENDING intention to APPROVED, mints the one-time
// registration token, and creates the placeholder member. The status
// update, the token assignment, and the member creation commit or roll
// back as one unit; a concurrent approver loses on the status re-check or
// on the members.intention_id unique index, never producing a second member.
func (s *IntentionService) Approve(ctx context.Context, id string) (*ApprovalResult, error) {
	ctx = ensureContext(ctx)

	token, err := crypto.GenerateToken(s.tokenLength)
	if err != nil {
		return nil, fmt.Errorf("intention service: generate token: %w", err)
	}

	now := s.now()
	result := &ApprovalResult{}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var intention models.Intention
		if err := tx.First(&intention, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrIntentionNotFound
			}
			return fmt.Errorf("intention service: load intention: %w", err)
		}

		if intention.Status != models.IntentionPending {
			return ErrIntentionNotPending
		}

		// Unreachable given the invariant, but guarded anyway.
		var members int64
		if err := tx.Model(&models.Member{}).
			Where("intention_id = ?", intention.ID).
			Count(&members).Error; err != nil {
			return fmt.Errorf("intention service: check member: %w", err)
		}
		if members > 0 {
			return ErrIntentionMemberExists
		}

		updates := map[string]any{
			"status": models.IntentionApproved,
			"token":  token,
		}
		if err := tx.Model(&intention).Updates(updates).Error; err != nil {
			if isUniqueConstraintError(err) {
				return ErrIntentionMemberExists.WithInternal(err)
			}
			return fmt.Errorf("intention service: approve intention: %w", err)
		}

		member := &models.Member{
			IntentionID: intention.ID,
			IsActive:    true,
			JoinedAt:    now,
		}
		if err := tx.Create(member).Error; err != nil {
			if isUniqueConstraintError(err) {
				return ErrIntentionMemberExists.WithInternal(err)
			}
			return fmt.Errorf("intention service: create member: %w", err)
		}

		intention.Status = models.IntentionApproved
		intention.Token = &token
		result.Intention = &intention
		result.Member = member
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.RegistrationLink = s.registrationLink(token)
	metrics.IntentionDecisions.WithLabelValues("approved").Inc()

	s.notifyApproval(ctx, result)

	return result, nil
}

// Reject transitions a PENDING intention to REJECTED. No member or token is created.
func (s *IntentionService) Reject(ctx context.Context, id string) (*models.Intention, error) {
	ctx = ensureContext(ctx)

	var intention models.Intention

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&intention, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrIntentionNotFound
			}
			return fmt.Errorf("intention service: load intention: %w", err)
		}

		if intention.Status != models.IntentionPending {
			return ErrIntentionNotPending
		}

		if err := tx.Model(&intention).Update("status", models.IntentionRejected).Error; err != nil {
			return fmt.Errorf("intention service: reject intention: %w", err)
		}

		intention.Status = models.IntentionRejected
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IntentionDecisions.WithLabelValues("rejected").Inc()

	return &intention, nil
}

// TokenInfo is the public view of an intention behind a valid token. The
// token itself is never echoed back.
type TokenInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
}

// ValidateToken resolves a registration token to its intention's public
// display fields. A token is valid only while its intention is APPROVED and
// the placeholder member's profile has not been filled in.
func (s *IntentionService) ValidateToken(ctx context.Context, token string) (*TokenInfo, error) {
	ctx = ensureContext(ctx)

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenNotFound
	}

	var intention models.Intention
	err := s.db.WithContext(ctx).
		Preload("Member").
		First(&intention, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("intention service: find token: %w", err)
	}

	if intention.Status != models.IntentionApproved {
		return nil, ErrTokenNotApproved
	}
	if intention.Member != nil && intention.Member.ProfileComplete() {
		return nil, ErrTokenAlreadyUsed
	}

	return &TokenInfo{
		Name:    intention.Name,
		Email:   intention.Email,
		Company: intention.Company,
	}, nil
}

// UpdateTrackingStatus sets the free-form secondary status used by the
// referral flow. It never touches the lifecycle state.
func (s *IntentionService) UpdateTrackingStatus(ctx context.Context, id, trackingStatus string) (*models.Intention, error) {
	ctx = ensureContext(ctx)

	var intention models.Intention
	err := s.db.WithContext(ctx).First(&intention, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrIntentionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("intention service: load intention: %w", err)
	}

	if err := s.db.WithContext(ctx).
		Model(&intention).
		Update("tracking_status", strings.TrimSpace(trackingStatus)).Error; err != nil {
		return nil, fmt.Errorf("intention service: update tracking status: %w", err)
	}

	intention.TrackingStatus = strings.TrimSpace(trackingStatus)
	return &intention, nil
}

func (s *IntentionService) registrationLink(token string) string {
	if s.baseURL == "" {
		return "/register/" + token
	}
	return s.baseURL + "/register/" + token
}

// notifyApproval delivers the registration link. Delivery is a collaborator
// concern: a failed or disabled mailer never rolls back the approval.
func (s *IntentionService) notifyApproval(ctx context.Context, result *ApprovalResult) {
	intention := result.Intention

	if s.mailer != nil {
		message := mail.Message{
			To:      []string{intention.Email},
			Subject: "Your membership was approved",
			Body: fmt.Sprintf(
				"Hello %s,\n\nYour intention to join has been approved. Complete your registration using the link below:\n%s\n",
				intention.Name, result.RegistrationLink,
			),
		}
		if err := s.mailer.Send(ctx, message); err != nil && !errors.Is(err, mail.ErrSMTPDisabled) {
			s.log.Warn("approval notification failed",
				zap.String("intention_id", intention.ID),
				zap.Error(err),
			)
		}
		return
	}

	s.log.Info("registration link issued",
		zap.String("intention_id", intention.ID),
		zap.String("email", intention.Email),
		zap.String("link", result.RegistrationLink),
	)
}
