package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/conexahub/conexa/internal/database/testutil"
	"github.com/conexahub/conexa/internal/models"
)

func newIntentionService(t *testing.T, opts ...IntentionOption) *IntentionService {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewIntentionService(db, nil, opts...)
	require.NoError(t, err)
	return svc
}

func submitIntention(t *testing.T, svc *IntentionService, email string) *models.Intention {
	t.Helper()

	intention, err := svc.Submit(context.Background(), SubmitIntentionInput{
		Name:    "Ana Lima",
		Email:   email,
		Company: "Lima Consulting",
		Reason:  "Grow my network",
	})
	require.NoError(t, err)
	return intention
}

func TestSubmitIntention(t *testing.T) {
	svc := newIntentionService(t)

	intention := submitIntention(t, svc, "Ana@Example.COM")
	require.Equal(t, models.IntentionPending, intention.Status)
	require.Equal(t, "ana@example.com", intention.Email)
	require.Nil(t, intention.Token)
	require.NotEmpty(t, intention.ID)
}

func TestSubmitIntentionRequiresFields(t *testing.T) {
	svc := newIntentionService(t)

	_, err := svc.Submit(context.Background(), SubmitIntentionInput{
		Name:  "Ana Lima",
		Email: "ana@example.com",
	})
	require.Error(t, err)
}

func TestSubmitIntentionEmailUniqueAcrossStatuses(t *testing.T) {
	svc := newIntentionService(t)

	first := submitIntention(t, svc, "ana@example.com")

	// Duplicate while pending
	_, err := svc.Submit(context.Background(), SubmitIntentionInput{
		Name:    "Someone Else",
		Email:   "ANA@example.com",
		Company: "Other Co",
		Reason:  "Also networking",
	})
	require.ErrorIs(t, err, ErrIntentionEmailExists)

	// Duplicate after rejection is still refused
	_, err = svc.Reject(context.Background(), first.ID)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), SubmitIntentionInput{
		Name:    "Ana Again",
		Email:   "ana@example.com",
		Company: "Lima Consulting",
		Reason:  "Second attempt",
	})
	require.ErrorIs(t, err, ErrIntentionEmailExists)
}

func TestApproveIntention(t *testing.T) {
	svc := newIntentionService(t, WithRegistrationBaseURL("https://app.conexa.dev/"))

	intention := submitIntention(t, svc, "ana@example.com")

	result, err := svc.Approve(context.Background(), intention.ID)
	require.NoError(t, err)
	require.Equal(t, models.IntentionApproved, result.Intention.Status)
	require.NotNil(t, result.Intention.Token)
	require.NotEmpty(t, *result.Intention.Token)
	require.Equal(t, "https://app.conexa.dev/register/"+*result.Intention.Token, result.RegistrationLink)

	// Placeholder member exists, active, profile empty
	require.NotNil(t, result.Member)
	require.Equal(t, intention.ID, result.Member.IntentionID)
	require.True(t, result.Member.IsActive)
	require.False(t, result.Member.ProfileComplete())
}

func TestApproveIsTerminal(t *testing.T) {
	svc := newIntentionService(t)

	intention := submitIntention(t, svc, "ana@example.com")

	_, err := svc.Approve(context.Background(), intention.ID)
	require.NoError(t, err)

	// A second approval loses on the status re-check
	_, err = svc.Approve(context.Background(), intention.ID)
	require.ErrorIs(t, err, ErrIntentionNotPending)

	// So does a rejection after approval
	_, err = svc.Reject(context.Background(), intention.ID)
	require.ErrorIs(t, err, ErrIntentionNotPending)
}

func TestRejectIntention(t *testing.T) {
	svc := newIntentionService(t)

	intention := submitIntention(t, svc, "ana@example.com")

	rejected, err := svc.Reject(context.Background(), intention.ID)
	require.NoError(t, err)
	require.Equal(t, models.IntentionRejected, rejected.Status)
	require.Nil(t, rejected.Token)

	// No member was created
	loaded, err := svc.GetByID(context.Background(), intention.ID)
	require.NoError(t, err)
	require.Nil(t, loaded.Member)

	_, err = svc.Approve(context.Background(), intention.ID)
	require.ErrorIs(t, err, ErrIntentionNotPending)
}

func TestDecideUnknownIntention(t *testing.T) {
	svc := newIntentionService(t)

	_, err := svc.Approve(context.Background(), "missing-id")
	require.ErrorIs(t, err, ErrIntentionNotFound)

	_, err = svc.Reject(context.Background(), "missing-id")
	require.ErrorIs(t, err, ErrIntentionNotFound)
}

func TestValidateToken(t *testing.T) {
	svc := newIntentionService(t)

	intention := submitIntention(t, svc, "ana@example.com")
	result, err := svc.Approve(context.Background(), intention.ID)
	require.NoError(t, err)

	info, err := svc.ValidateToken(context.Background(), *result.Intention.Token)
	require.NoError(t, err)
	require.Equal(t, "Ana Lima", info.Name)
	require.Equal(t, "ana@example.com", info.Email)
	require.Equal(t, "Lima Consulting", info.Company)
}

func TestValidateTokenUnknown(t *testing.T) {
	svc := newIntentionService(t)

	_, err := svc.ValidateToken(context.Background(), "nope")
	require.ErrorIs(t, err, ErrTokenNotFound)

	_, err = svc.ValidateToken(context.Background(), "  ")
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestValidateTokenUsed(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewIntentionService(db, nil)
	require.NoError(t, err)
	members, err := NewMemberService(db)
	require.NoError(t, err)

	intention := submitIntention(t, svc, "ana@example.com")
	result, err := svc.Approve(context.Background(), intention.ID)
	require.NoError(t, err)
	token := *result.Intention.Token

	_, err = members.CompleteRegistration(context.Background(), token, ProfileInput{
		Phone:      "+55 11 99999-0000",
		Profession: "Consultant",
		Segment:    "Services",
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), token)
	require.ErrorIs(t, err, ErrTokenAlreadyUsed)
}

func TestListIntentionsFiltered(t *testing.T) {
	svc := newIntentionService(t)

	first := submitIntention(t, svc, "first@example.com")
	second := submitIntention(t, svc, "second@example.com")
	_, err := svc.Approve(context.Background(), first.ID)
	require.NoError(t, err)

	pending, err := svc.List(context.Background(), ListIntentionsFilter{Status: models.IntentionPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, second.ID, pending[0].ID)

	all, err := svc.List(context.Background(), ListIntentionsFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	_, err = svc.List(context.Background(), ListIntentionsFilter{Status: "BOGUS"})
	require.Error(t, err)
}

func TestUpdateTrackingStatus(t *testing.T) {
	svc := newIntentionService(t)

	intention := submitIntention(t, svc, "ana@example.com")

	updated, err := svc.UpdateTrackingStatus(context.Background(), intention.ID, "contacted")
	require.NoError(t, err)
	require.Equal(t, "contacted", updated.TrackingStatus)
	require.Equal(t, models.IntentionPending, updated.Status)

	_, err = svc.UpdateTrackingStatus(context.Background(), "missing-id", "contacted")
	require.ErrorIs(t, err, ErrIntentionNotFound)
}

func TestApprovalClockInjection(t *testing.T) {
	fixed := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	svc := newIntentionService(t, WithIntentionClock(func() time.Time { return fixed }))

	intention := submitIntention(t, svc, "ana@example.com")
	result, err := svc.Approve(context.Background(), intention.ID)
	require.NoError(t, err)
	require.True(t, result.Member.JoinedAt.Equal(fixed))
}
