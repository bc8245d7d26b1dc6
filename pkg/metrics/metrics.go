package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "mailer_http_requests_total", Help: "HTTP requests"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mailer_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	CampaignRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "mailer_campaign_runs_total", Help: "Campaign runs by final status"},
		[]string{"trigger", "status"},
	)
	CampaignRunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mailer_campaign_run_duration_seconds",
			Help:    "Wall-clock time of a campaign run",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 900},
		},
	)
	EmailsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "mailer_emails_total", Help: "Per-recipient send outcomes"},
		[]string{"outcome"},
	)
	RunsRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "mailer_runs_rejected_total", Help: "Triggers rejected because a run was in progress"},
	)

	HealthIssues = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "mailer_health_issues", Help: "Issues found by the latest health check"},
	)
	AlertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "mailer_alerts_total", Help: "Operator alert notifications"},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration,
		CampaignRunsTotal, CampaignRunDuration, EmailsTotal, RunsRejectedTotal,
		HealthIssues, AlertsTotal,
	)
}

func Handler() http.Handler { return promhttp.Handler() }
