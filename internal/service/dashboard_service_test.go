package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"computing-marketplace/api/internal/apperr"
	"computing-marketplace/api/internal/models"
)

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name              string
		previous, current int64
		want              float64
	}{
		{"flat zero", 0, 0, 0},
		{"growth from zero", 0, 7, 100},
		{"doubled", 10, 20, 100},
		{"halved", 10, 5, -50},
		{"rounded", 3, 4, 33.3},
		{"unchanged", 4, 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PercentChange(tt.previous, tt.current))
		})
	}
}

func TestStatusBreakdownListsEveryStatus(t *testing.T) {
	shares := StatusBreakdown(map[models.InquiryStatus]int64{
		models.InquiryPending: 3,
		models.InquiryClosed:  1,
	})
	require.Len(t, shares, len(models.InquiryStatuses))

	byStatus := map[models.InquiryStatus]StatusShare{}
	for _, s := range shares {
		byStatus[s.Status] = s
	}
	assert.Equal(t, 75.0, byStatus[models.InquiryPending].Percent)
	assert.Equal(t, 25.0, byStatus[models.InquiryClosed].Percent)
	assert.Equal(t, int64(0), byStatus[models.InquiryContacted].Count)

	empty := StatusBreakdown(nil)
	for _, s := range empty {
		assert.Zero(t, s.Percent)
	}
}

func TestFillTrend(t *testing.T) {
	since := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)
	points := FillTrend(since, 4, map[string]int64{"2026-02-28": 2, "2026-03-02": 5})

	assert.Equal(t, []TrendPoint{
		{Date: "2026-02-27", Count: 0},
		{Date: "2026-02-28", Count: 2},
		{Date: "2026-03-01", Count: 0},
		{Date: "2026-03-02", Count: 5},
	}, points)
}

type cannedStats struct {
	since time.Time
}

func (c *cannedStats) CountBetween(_ context.Context, table string, from, _ time.Time) (int64, error) {
	if from.IsZero() {
		return 100, nil
	}
	if table == "orders" {
		return 0, nil
	}
	return 10, nil
}

func (c *cannedStats) RevenueBetween(context.Context, time.Time, time.Time) (int64, error) {
	return 5000, nil
}

func (c *cannedStats) InquiryStatusCounts(context.Context) (map[models.InquiryStatus]int64, error) {
	return map[models.InquiryStatus]int64{models.InquiryPending: 1}, nil
}

func (c *cannedStats) InquiryDailyCounts(_ context.Context, since time.Time) (map[string]int64, error) {
	c.since = since
	return map[string]int64{since.Format("2006-01-02"): 4}, nil
}

func TestDashboardStats(t *testing.T) {
	stats := &cannedStats{}
	svc := NewDashboardService(stats, nil, &memoryActivity{})
	svc.now = func() time.Time { return time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	out, err := svc.Stats(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "30d", out.Period)
	assert.Equal(t, Metric{Total: 100, Current: 10, Previous: 10, ChangePercent: 0}, out.Users)
	assert.Equal(t, int64(0), out.Orders.Current)
	assert.Equal(t, int64(5000), out.RevenueCents.Current)
	assert.Len(t, out.InquiryBreakdown, len(models.InquiryStatuses))

	_, err = svc.Stats(ctx, "1y")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	trend, err := svc.InquiryTrend(ctx, 7)
	require.NoError(t, err)
	require.Len(t, trend, 7)
	assert.Equal(t, "2026-10-09", trend[0].Date)
	assert.Equal(t, int64(4), trend[0].Count)
	assert.Equal(t, "2026-10-15", trend[6].Date)
	assert.Equal(t, time.Date(2026, 10, 9, 0, 0, 0, 0, time.UTC), stats.since)
}
