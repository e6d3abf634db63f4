package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/conexahub/conexa/internal/models"
)

// StatsService aggregates counters for the admin dashboard.
type StatsService struct {
	db *gorm.DB
}

// NewStatsService constructs a StatsService.
func NewStatsService(db *gorm.DB) (*StatsService, error) {
	if db == nil {
		return nil, errors.New("stats service: db is required")
	}
	return &StatsService{db: db}, nil
}

// IntentionStats breaks intentions down by lifecycle state.
type IntentionStats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

// DashboardStats is the admin dashboard summary.
type DashboardStats struct {
	Intentions    IntentionStats `json:"intentions"`
	Members       MemberStats    `json:"members"`
	Referrals     ReferralStats  `json:"referrals"`
	Announcements int64          `json:"announcements"`
	Opportunities int64          `json:"opportunities"`
	Meetings      int64          `json:"meetings"`
	Posts         int64          `json:"posts"`
}

// Dashboard assembles the full admin summary.
func (s *StatsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	ctx = ensureContext(ctx)

	stats := &DashboardStats{}

	intentions, err := s.Intentions(ctx)
	if err != nil {
		return nil, err
	}
	stats.Intentions = *intentions

	var memberTotals MemberStats
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Member{}).Count(&memberTotals.TotalMembers).Error; err != nil {
		return nil, fmt.Errorf("stats service: count members: %w", err)
	}
	if err := db.Model(&models.Member{}).Where("is_active = ?", true).Count(&memberTotals.ActiveMembers).Error; err != nil {
		return nil, fmt.Errorf("stats service: count active members: %w", err)
	}
	memberTotals.InactiveMembers = memberTotals.TotalMembers - memberTotals.ActiveMembers

	var referralStats ReferralStats
	referralStats.ByStatus = map[string]int64{}
	if err := db.Model(&models.Referral{}).Count(&referralStats.Total).Error; err != nil {
		return nil, fmt.Errorf("stats service: count referrals: %w", err)
	}
	rows := []struct {
		Status string
		Count  int64
	}{}
	err = db.Model(&models.Referral{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("stats service: group referrals: %w", err)
	}
	for _, row := range rows {
		referralStats.ByStatus[row.Status] = row.Count
	}
	stats.Referrals = referralStats

	memberTotals.TotalReferrals = referralStats.Total
	memberTotals.ClosedReferrals = referralStats.ByStatus[string(models.ReferralClosed)]
	stats.Members = memberTotals

	counts := []struct {
		model any
		dst   *int64
		name  string
	}{
		{&models.Announcement{}, &stats.Announcements, "announcements"},
		{&models.BusinessOpportunity{}, &stats.Opportunities, "opportunities"},
		{&models.Meeting{}, &stats.Meetings, "meetings"},
		{&models.Post{}, &stats.Posts, "posts"},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("stats service: count %s: %w", c.name, err)
		}
	}

	return stats, nil
}

// Intentions tallies intentions per lifecycle state.
func (s *StatsService) Intentions(ctx context.Context) (*IntentionStats, error) {
	ctx = ensureContext(ctx)

	stats := &IntentionStats{}
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Intention{}).Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("stats service: count intentions: %w", err)
	}

	rows := []struct {
		Status string
		Count  int64
	}{}
	err := db.Model(&models.Intention{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("stats service: group intentions: %w", err)
	}
	for _, row := range rows {
		switch models.IntentionStatus(row.Status) {
		case models.IntentionPending:
			stats.Pending = row.Count
		case models.IntentionApproved:
			stats.Approved = row.Count
		case models.IntentionRejected:
			stats.Rejected = row.Count
		}
	}

	return stats, nil
}
