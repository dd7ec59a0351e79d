package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-flowdash/components/dashboard"
)

// StatsInput is the empty message for stats and overview queries.
type StatsInput struct{}

type statsService interface {
	Stats(ctx context.Context) (dashboard.DashboardStats, error)
}

// DashboardStatsQuery returns the aggregate figures.
type DashboardStatsQuery struct {
	service statsService
}

// NewDashboardStatsQuery builds the query.
func NewDashboardStatsQuery(service statsService) *DashboardStatsQuery {
	return &DashboardStatsQuery{service: service}
}

var _ gocommand.Querier[StatsInput, dashboard.DashboardStats] = (*DashboardStatsQuery)(nil)

// Query resolves the stats.
func (q *DashboardStatsQuery) Query(ctx context.Context, _ StatsInput) (dashboard.DashboardStats, error) {
	return q.service.Stats(ctx)
}

type overviewService interface {
	Dashboard(ctx context.Context) (dashboard.Overview, error)
}

// OverviewQuery returns the main dashboard view model.
type OverviewQuery struct {
	service overviewService
}

// NewOverviewQuery builds the query.
func NewOverviewQuery(service overviewService) *OverviewQuery {
	return &OverviewQuery{service: service}
}

var _ gocommand.Querier[StatsInput, dashboard.Overview] = (*OverviewQuery)(nil)

// Query resolves the overview.
func (q *OverviewQuery) Query(ctx context.Context, _ StatsInput) (dashboard.Overview, error) {
	return q.service.Dashboard(ctx)
}
