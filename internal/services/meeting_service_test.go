package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/conexahub/conexa/internal/database/testutil"
	"github.com/conexahub/conexa/internal/models"
)

func meetingFixture(t *testing.T) (*gorm.DB, *MeetingService, *models.Meeting, *models.Member) {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewMeetingService(db)
	require.NoError(t, err)

	meeting, err := svc.Create(context.Background(), CreateMeetingInput{
		Title:       "Monthly breakfast",
		Location:    "Downtown office",
		ScheduledAt: time.Date(2025, time.June, 12, 8, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	member := approveAndRegister(t, db, "attendee@example.com")
	return db, svc, meeting, member
}

func TestCreateMeetingValidation(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewMeetingService(db)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateMeetingInput{Title: " "})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), CreateMeetingInput{Title: "No date"})
	require.Error(t, err)
}

func TestCheckInCreatesPresence(t *testing.T) {
	_, svc, meeting, member := meetingFixture(t)

	presence, err := svc.CheckIn(context.Background(), CheckInInput{
		MeetingID: meeting.ID,
		MemberID:  member.ID,
		CheckedIn: true,
		Location:  "Front desk",
	})
	require.NoError(t, err)
	require.True(t, presence.CheckedIn)
	require.NotNil(t, presence.CheckedAt)
	require.Equal(t, "Front desk", presence.Location)
}

func TestCheckInUpsertsSingleRow(t *testing.T) {
	db, svc, meeting, member := meetingFixture(t)

	first, err := svc.CheckIn(context.Background(), CheckInInput{
		MeetingID: meeting.ID,
		MemberID:  member.ID,
		CheckedIn: true,
	})
	require.NoError(t, err)

	// Repeated check-in refreshes the same row
	second, err := svc.CheckIn(context.Background(), CheckInInput{
		MeetingID: meeting.ID,
		MemberID:  member.ID,
		CheckedIn: false,
		Notes:     "Left early",
	})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.False(t, second.CheckedIn)
	require.Nil(t, second.CheckedAt)
	require.Equal(t, "Left early", second.Notes)

	var count int64
	require.NoError(t, db.Model(&models.Presence{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestCheckInUnknownParties(t *testing.T) {
	_, svc, meeting, member := meetingFixture(t)

	_, err := svc.CheckIn(context.Background(), CheckInInput{
		MeetingID: "missing-id",
		MemberID:  member.ID,
	})
	require.ErrorIs(t, err, ErrMeetingNotFound)

	_, err = svc.CheckIn(context.Background(), CheckInInput{
		MeetingID: meeting.ID,
		MemberID:  "missing-id",
	})
	require.ErrorIs(t, err, ErrMemberNotFound)
}

func TestListPresencesWithStats(t *testing.T) {
	db, svc, meeting, member := meetingFixture(t)

	other := approveAndRegister(t, db, "second@example.com")

	_, err := svc.CheckIn(context.Background(), CheckInInput{
		MeetingID: meeting.ID, MemberID: member.ID, CheckedIn: true,
	})
	require.NoError(t, err)
	_, err = svc.CheckIn(context.Background(), CheckInInput{
		MeetingID: meeting.ID, MemberID: other.ID, CheckedIn: false,
	})
	require.NoError(t, err)

	presences, stats, err := svc.ListPresences(context.Background(), meeting.ID)
	require.NoError(t, err)
	require.Len(t, presences, 2)
	require.EqualValues(t, 2, stats.Total)
	require.EqualValues(t, 1, stats.CheckedIn)

	_, _, err = svc.ListPresences(context.Background(), "missing-id")
	require.ErrorIs(t, err, ErrMeetingNotFound)
}

func TestListMemberPresences(t *testing.T) {
	_, svc, meeting, member := meetingFixture(t)

	_, err := svc.CheckIn(context.Background(), CheckInInput{
		MeetingID: meeting.ID, MemberID: member.ID, CheckedIn: true,
	})
	require.NoError(t, err)

	presences, err := svc.ListMemberPresences(context.Background(), member.ID)
	require.NoError(t, err)
	require.Len(t, presences, 1)
	require.NotNil(t, presences[0].Meeting)

	_, err = svc.ListMemberPresences(context.Background(), "missing-id")
	require.ErrorIs(t, err, ErrMemberNotFound)
}

func TestDeleteMeetingRemovesPresences(t *testing.T) {
	db, svc, meeting, member := meetingFixture(t)

	_, err := svc.CheckIn(context.Background(), CheckInInput{
		MeetingID: meeting.ID, MemberID: member.ID, CheckedIn: true,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), meeting.ID))

	_, err = svc.GetByID(context.Background(), meeting.ID)
	require.ErrorIs(t, err, ErrMeetingNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Presence{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestUpdateMeeting(t *testing.T) {
	_, svc, meeting, _ := meetingFixture(t)

	title := "Rescheduled breakfast"
	when := time.Date(2025, time.June, 19, 8, 0, 0, 0, time.UTC)
	updated, err := svc.Update(context.Background(), meeting.ID, UpdateMeetingInput{
		Title:       &title,
		ScheduledAt: &when,
	})
	require.NoError(t, err)
	require.Equal(t, "Rescheduled breakfast", updated.Title)
	require.True(t, updated.ScheduledAt.Equal(when))
}
