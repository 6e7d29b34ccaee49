package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusRecorder implements Recorder backed by Prometheus collectors.
type PrometheusRecorder struct {
	redirects        *prometheus.CounterVec
	redirectCache    *prometheus.CounterVec
	redirectDuration prometheus.Histogram

	linkOps         *prometheus.CounterVec
	clickIncrements prometheus.Counter
	clicksRecorded  *prometheus.CounterVec
}

// NewPrometheus returns a Recorder registered against the given registerer.
// Pass prometheus.DefaultRegisterer for the standard /metrics exposition.
func NewPrometheus(reg prometheus.Registerer) *PrometheusRecorder {
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		redirects: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "afftrack_redirects_total",
			Help: "Redirect requests by outcome.",
		}, []string{"outcome"}),
		redirectCache: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "afftrack_redirect_cache_total",
			Help: "Slug cache lookups on the redirect path.",
		}, []string{"result"}),
		redirectDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "afftrack_redirect_duration_seconds",
			Help:    "Time to resolve a redirect.",
			Buckets: prometheus.DefBuckets,
		}),
		linkOps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "afftrack_link_operations_total",
			Help: "Link mutations by operation.",
		}, []string{"operation"}),
		clickIncrements: factory.NewCounter(prometheus.CounterOpts{
			Name: "afftrack_click_increments_total",
			Help: "Click counter increments applied to links.",
		}),
		clicksRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "afftrack_clicks_recorded_total",
			Help: "Click events written to the event log, by status.",
		}, []string{"status"}),
	}
}

// IncRedirect counts a redirect by outcome.
func (p *PrometheusRecorder) IncRedirect(outcome string) {
	p.redirects.WithLabelValues(outcome).Inc()
}

// IncRedirectCacheHit counts a slug cache hit.
func (p *PrometheusRecorder) IncRedirectCacheHit() {
	p.redirectCache.WithLabelValues("hit").Inc()
}

// IncRedirectCacheMiss counts a slug cache miss.
func (p *PrometheusRecorder) IncRedirectCacheMiss() {
	p.redirectCache.WithLabelValues("miss").Inc()
}

// ObserveRedirectDuration records redirect resolution latency.
func (p *PrometheusRecorder) ObserveRedirectDuration(duration time.Duration) {
	p.redirectDuration.Observe(duration.Seconds())
}

// IncLinkCreated counts a link creation.
func (p *PrometheusRecorder) IncLinkCreated() {
	p.linkOps.WithLabelValues("create").Inc()
}

// IncLinkUpdated counts a link update.
func (p *PrometheusRecorder) IncLinkUpdated() {
	p.linkOps.WithLabelValues("update").Inc()
}

// IncLinkDeleted counts a link deletion.
func (p *PrometheusRecorder) IncLinkDeleted() {
	p.linkOps.WithLabelValues("delete").Inc()
}

// IncClickIncremented counts a click counter increment.
func (p *PrometheusRecorder) IncClickIncremented() {
	p.clickIncrements.Inc()
}

// IncClickRecorded counts a recorded click event by status.
func (p *PrometheusRecorder) IncClickRecorded(status string) {
	p.clicksRecorded.WithLabelValues(status).Inc()
}
