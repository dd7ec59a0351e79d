package store

import (
	"context"
	"fmt"
	"time"

	dashboard "github.com/goliatone/go-flowdash/components/dashboard"
)

// Stats aggregates counts across workflows and executions. "Today" is the
// calendar day of the store clock in its own location.
func (s *Store) Stats(ctx context.Context) (dashboard.DashboardStats, error) {
	var (
		stats     dashboard.DashboardStats
		successes int
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'active' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(time_saved_hours), 0)
		FROM workflows`).Scan(&stats.TotalWorkflows, &stats.ActiveWorkflows, &stats.TotalTimeSaved)
	if err != nil {
		return dashboard.DashboardStats{}, fmt.Errorf("store: workflow stats: %w", err)
	}

	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN start_time >= ? AND start_time < ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN start_time >= ? AND start_time < ? AND status = 'error' THEN 1 ELSE 0 END), 0)
		FROM executions`,
		formatTime(dayStart), formatTime(dayEnd), formatTime(dayStart), formatTime(dayEnd),
	).Scan(&stats.TotalExecutions, &successes, &stats.ExecutionsToday, &stats.ErrorsToday)
	if err != nil {
		return dashboard.DashboardStats{}, fmt.Errorf("store: execution stats: %w", err)
	}

	stats.SuccessRate = dashboard.SuccessRate(successes, stats.TotalExecutions)
	stats.TotalROI = dashboard.CalculateROI(stats.TotalTimeSaved)
	return stats, nil
}
