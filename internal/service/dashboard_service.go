package service

import (
	"context"
	"math"
	"time"

	"computing-marketplace/api/internal/apperr"
	"computing-marketplace/api/internal/models"
)

type DashboardStore interface {
	CountBetween(ctx context.Context, table string, from, to time.Time) (int64, error)
	RevenueBetween(ctx context.Context, from, to time.Time) (int64, error)
	InquiryStatusCounts(ctx context.Context) (map[models.InquiryStatus]int64, error)
	InquiryDailyCounts(ctx context.Context, since time.Time) (map[string]int64, error)
}

type KanbanSource interface {
	ListByStatus(ctx context.Context, status models.InquiryStatus, limit int) ([]models.Inquiry, error)
}

var dashboardPeriods = map[string]int{"7d": 7, "30d": 30, "90d": 90}

const (
	defaultTrendDays = 30
	maxTrendDays     = 365
	kanbanColumnSize = 50
)

type DashboardService struct {
	stats    DashboardStore
	kanban   KanbanSource
	activity ActivityStore
	now      func() time.Time
}

func NewDashboardService(stats DashboardStore, kanban KanbanSource, activity ActivityStore) *DashboardService {
	return &DashboardService{stats: stats, kanban: kanban, activity: activity, now: time.Now}
}

type Metric struct {
	Total         int64   `json:"total"`
	Current       int64   `json:"current"`
	Previous      int64   `json:"previous"`
	ChangePercent float64 `json:"changePercent"`
}

type StatusShare struct {
	Status  models.InquiryStatus `json:"status"`
	Count   int64                `json:"count"`
	Percent float64              `json:"percent"`
}

type DashboardStats struct {
	Period           string        `json:"period"`
	Users            Metric        `json:"users"`
	Products         Metric        `json:"products"`
	Inquiries        Metric        `json:"inquiries"`
	Orders           Metric        `json:"orders"`
	RevenueCents     Metric        `json:"revenueCents"`
	InquiryBreakdown []StatusShare `json:"inquiryBreakdown"`
}

// Stats compares the trailing window against the window before it.
func (s *DashboardService) Stats(ctx context.Context, period string) (DashboardStats, error) {
	if period == "" {
		period = "30d"
	}
	days, ok := dashboardPeriods[period]
	if !ok {
		return DashboardStats{}, apperr.Validation("Invalid period", map[string]string{"period": "must be one of 7d, 30d, 90d"})
	}

	now := s.now().UTC()
	windowStart := now.AddDate(0, 0, -days)
	prevStart := windowStart.AddDate(0, 0, -days)

	out := DashboardStats{Period: period}
	for table, dst := range map[string]*Metric{
		"users":     &out.Users,
		"products":  &out.Products,
		"inquiries": &out.Inquiries,
		"orders":    &out.Orders,
	} {
		m, err := s.metric(func(from, to time.Time) (int64, error) {
			return s.stats.CountBetween(ctx, table, from, to)
		}, prevStart, windowStart, now)
		if err != nil {
			return DashboardStats{}, apperr.Internal(err)
		}
		*dst = m
	}

	revenue, err := s.metric(func(from, to time.Time) (int64, error) {
		return s.stats.RevenueBetween(ctx, from, to)
	}, prevStart, windowStart, now)
	if err != nil {
		return DashboardStats{}, apperr.Internal(err)
	}
	out.RevenueCents = revenue

	counts, err := s.stats.InquiryStatusCounts(ctx)
	if err != nil {
		return DashboardStats{}, apperr.Internal(err)
	}
	out.InquiryBreakdown = StatusBreakdown(counts)
	return out, nil
}

func (s *DashboardService) metric(count func(from, to time.Time) (int64, error), prevStart, windowStart, now time.Time) (Metric, error) {
	total, err := count(time.Time{}, now)
	if err != nil {
		return Metric{}, err
	}
	current, err := count(windowStart, now)
	if err != nil {
		return Metric{}, err
	}
	previous, err := count(prevStart, windowStart)
	if err != nil {
		return Metric{}, err
	}
	return Metric{
		Total:         total,
		Current:       current,
		Previous:      previous,
		ChangePercent: PercentChange(previous, current),
	}, nil
}

// PercentChange is the change from previous to current, rounded to one decimal.
// Growth from zero counts as 100%.
func PercentChange(previous, current int64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return round1(float64(current-previous) / float64(previous) * 100)
}

// StatusBreakdown lists every inquiry status, including empty ones, in board order.
func StatusBreakdown(counts map[models.InquiryStatus]int64) []StatusShare {
	var total int64
	for _, n := range counts {
		total += n
	}
	shares := make([]StatusShare, 0, len(models.InquiryStatuses))
	for _, status := range models.InquiryStatuses {
		share := StatusShare{Status: status, Count: counts[status]}
		if total > 0 {
			share.Percent = round1(float64(share.Count) / float64(total) * 100)
		}
		shares = append(shares, share)
	}
	return shares
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

type TrendPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// InquiryTrend returns one point per UTC day, oldest first, ending today.
func (s *DashboardService) InquiryTrend(ctx context.Context, days int) ([]TrendPoint, error) {
	if days <= 0 {
		days = defaultTrendDays
	}
	if days > maxTrendDays {
		days = maxTrendDays
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -(days - 1))
	counts, err := s.stats.InquiryDailyCounts(ctx, since)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return FillTrend(since, days, counts), nil
}

func FillTrend(since time.Time, days int, counts map[string]int64) []TrendPoint {
	points := make([]TrendPoint, 0, days)
	for i := 0; i < days; i++ {
		day := since.AddDate(0, 0, i).Format("2006-01-02")
		points = append(points, TrendPoint{Date: day, Count: counts[day]})
	}
	return points
}

type KanbanColumn struct {
	Status models.InquiryStatus `json:"status"`
	Items  []models.Inquiry     `json:"items"`
}

func (s *DashboardService) Kanban(ctx context.Context) ([]KanbanColumn, error) {
	columns := make([]KanbanColumn, 0, len(models.InquiryStatuses))
	for _, status := range models.InquiryStatuses {
		items, err := s.kanban.ListByStatus(ctx, status, kanbanColumnSize)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		columns = append(columns, KanbanColumn{Status: status, Items: items})
	}
	return columns, nil
}

func (s *DashboardService) RecentActivity(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	logs, err := s.activity.Recent(ctx, limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return logs, nil
}
