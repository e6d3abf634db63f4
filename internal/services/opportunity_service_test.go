package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/conexahub/conexa/internal/database/testutil"
)

func TestCreateOpportunityDefaults(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewOpportunityService(db)
	require.NoError(t, err)

	value := 25000.0
	opportunity, err := svc.Create(context.Background(), CreateOpportunityInput{
		Title:          "CRM implementation",
		Description:    "Mid-size retailer looking for a CRM partner.",
		Category:       "technology",
		Segment:        "Retail",
		EstimatedValue: &value,
	})
	require.NoError(t, err)
	require.Equal(t, "TECHNOLOGY", opportunity.Category)
	require.True(t, opportunity.IsActive)
	require.NotNil(t, opportunity.EstimatedValue)

	defaulted, err := svc.Create(context.Background(), CreateOpportunityInput{
		Title:       "Uncategorised lead",
		Description: "No category given.",
	})
	require.NoError(t, err)
	require.Equal(t, "GENERAL", defaulted.Category)

	_, err = svc.Create(context.Background(), CreateOpportunityInput{Title: "x"})
	require.Error(t, err)
}

func TestListActiveOpportunitiesFiltered(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewOpportunityService(db)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateOpportunityInput{
		Title: "Tech lead", Description: "d", Category: "TECHNOLOGY", Segment: "Retail",
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateOpportunityInput{
		Title: "Finance lead", Description: "d", Category: "FINANCE", Segment: "Banking",
	})
	require.NoError(t, err)

	tech, err := svc.ListActive(context.Background(), OpportunityFilter{Category: "technology"})
	require.NoError(t, err)
	require.Len(t, tech, 1)
	require.Equal(t, "Tech lead", tech[0].Title)

	banking, err := svc.ListActive(context.Background(), OpportunityFilter{Segment: "Banking"})
	require.NoError(t, err)
	require.Len(t, banking, 1)

	all, err := svc.ListActive(context.Background(), OpportunityFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestOpportunityExpiry(t *testing.T) {
	now := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
	clock := now
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewOpportunityService(db, WithOpportunityClock(func() time.Time { return clock }))
	require.NoError(t, err)

	soon := now.Add(time.Minute)
	_, err = svc.Create(context.Background(), CreateOpportunityInput{
		Title: "Closing soon", Description: "d", ExpiresAt: &soon,
	})
	require.NoError(t, err)

	clock = now.Add(time.Hour)
	count, err := svc.DeactivateExpired(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	active, err := svc.ListActive(context.Background(), OpportunityFilter{})
	require.NoError(t, err)
	require.Empty(t, active)
}

func TestUpdateOpportunity(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewOpportunityService(db)
	require.NoError(t, err)

	deadline := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	opportunity, err := svc.Create(context.Background(), CreateOpportunityInput{
		Title: "Original", Description: "d", Deadline: &deadline,
	})
	require.NoError(t, err)

	title := "Updated"
	updated, err := svc.Update(context.Background(), opportunity.ID, UpdateOpportunityInput{
		Title:         &title,
		ClearDeadline: true,
	})
	require.NoError(t, err)
	require.Equal(t, "Updated", updated.Title)
	require.Nil(t, updated.Deadline)

	_, err = svc.Update(context.Background(), "missing-id", UpdateOpportunityInput{})
	require.ErrorIs(t, err, ErrOpportunityNotFound)
}
