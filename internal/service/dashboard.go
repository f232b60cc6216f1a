package service

import (
	"context"
	"time"

	"adminpanel/client"
	"adminpanel/internal/endpoints"
	v1 "adminpanel/pkg/api/v1"
	"adminpanel/pkg/constraints"
)

// AnalyticsQuery selects the window of an analytics series.
type AnalyticsQuery struct {
	Range    constraints.TimeRange
	Start    time.Time
	End      time.Time
	Category string
}

func (q AnalyticsQuery) query() *Query {
	out := &Query{}
	out.Add("range", string(q.Range))
	if !q.Start.IsZero() {
		out.Add("startDate", q.Start.Format(time.DateOnly))
	}
	if !q.End.IsZero() {
		out.Add("endDate", q.End.Format(time.DateOnly))
	}
	out.Add("category", q.Category)
	return out
}

type DashboardService struct {
	api     API
	timeout time.Duration
}

// NewDashboardService applies timeout to the chart series; stats use the
// client default.
func NewDashboardService(api API, timeout time.Duration) *DashboardService {
	if timeout <= 0 {
		timeout = constraints.AnalyticsTimeout
	}
	return &DashboardService{api: api, timeout: timeout}
}

func (s *DashboardService) Stats(ctx context.Context) (*v1.Response[v1.DashboardStats], error) {
	return client.Decode[v1.DashboardStats](s.api.Get(ctx, endpoints.DashboardStats))
}

func (s *DashboardService) Revenue(ctx context.Context, q AnalyticsQuery) (*v1.Response[v1.ChartData], error) {
	return s.series(ctx, endpoints.DashboardRevenue, q)
}

func (s *DashboardService) UserGrowth(ctx context.Context, q AnalyticsQuery) (*v1.Response[v1.ChartData], error) {
	return s.series(ctx, endpoints.DashboardUsers, q)
}

func (s *DashboardService) Enquiries(ctx context.Context, q AnalyticsQuery) (*v1.Response[v1.ChartData], error) {
	return s.series(ctx, endpoints.DashboardEnquiries, q)
}

func (s *DashboardService) series(ctx context.Context, path string, q AnalyticsQuery) (*v1.Response[v1.ChartData], error) {
	return client.Decode[v1.ChartData](s.api.Get(ctx, withQuery(path, q.query()), client.Timeout(s.timeout)))
}
