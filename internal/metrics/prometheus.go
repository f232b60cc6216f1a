package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type prometheusObserver struct {
	requests *prometheus.HistogramVec
	refresh  *prometheus.CounterVec
	mockHits *prometheus.CounterVec
}

var (
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "adminpanel_client_request_duration_seconds",
		Help:    "Duration of API client requests by endpoint and outcome.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint", "outcome"})
	refreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adminpanel_client_token_refresh_total",
		Help: "Token refresh attempts by result.",
	}, []string{"success"})
	mockHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adminpanel_client_mock_hits_total",
		Help: "Requests answered by the mock response shim.",
	}, []string{"endpoint"})
)

func NewPrometheusObserver() ClientObserver {
	return &prometheusObserver{
		requests: requestDuration,
		refresh:  refreshTotal,
		mockHits: mockHitsTotal,
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func (p *prometheusObserver) ObserveRequest(method, endpoint, outcome string, seconds float64) {
	p.requests.WithLabelValues(method, endpoint, outcome).Observe(seconds)
}

func (p *prometheusObserver) RecordRefresh(success bool) {
	p.refresh.WithLabelValues(strconv.FormatBool(success)).Inc()
}

func (p *prometheusObserver) RecordMockHit(endpoint string) {
	p.mockHits.WithLabelValues(endpoint).Inc()
}
