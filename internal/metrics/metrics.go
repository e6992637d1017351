// Package metrics collects and exposes Prometheus metrics for the
// funnel service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector registers and records the service's counters.
type Collector struct {
	registry         *prometheus.Registry
	signups          prometheus.Counter
	quizCompleted    prometheus.Counter
	checkoutsStarted prometheus.Counter
	webhookEvents    *prometheus.CounterVec
	reportsGenerated prometheus.Counter
	modulesUnlocked  prometheus.Counter
	accountsArchived prometheus.Counter
	accessDenied     *prometheus.CounterVec
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		signups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rowan_signups_total",
			Help: "Accounts created.",
		}),
		quizCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rowan_quiz_completed_total",
			Help: "Diagnostic quizzes submitted.",
		}),
		checkoutsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rowan_checkouts_started_total",
			Help: "Stripe checkout sessions created.",
		}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rowan_webhook_events_total",
			Help: "Billing webhook events by kind.",
		}, []string{"kind"}),
		reportsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rowan_reports_generated_total",
			Help: "AI reports generated.",
		}),
		modulesUnlocked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rowan_modules_unlocked_total",
			Help: "Module unlocks persisted.",
		}),
		accountsArchived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rowan_accounts_archived_total",
			Help: "Accounts moved to archived by the sweep.",
		}),
		accessDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rowan_access_denied_total",
			Help: "Module access denials by reason.",
		}, []string{"reason"}),
	}

	c.registry.MustRegister(
		c.signups, c.quizCompleted, c.checkoutsStarted, c.webhookEvents,
		c.reportsGenerated, c.modulesUnlocked, c.accountsArchived, c.accessDenied,
	)
	return c
}

func (c *Collector) RecordSignup()                  { c.signups.Inc() }
func (c *Collector) RecordQuizCompleted()           { c.quizCompleted.Inc() }
func (c *Collector) RecordCheckoutStarted()         { c.checkoutsStarted.Inc() }
func (c *Collector) RecordWebhookEvent(kind string) { c.webhookEvents.WithLabelValues(kind).Inc() }
func (c *Collector) RecordReportGenerated()         { c.reportsGenerated.Inc() }
func (c *Collector) RecordModulesUnlocked(n int)    { c.modulesUnlocked.Add(float64(n)) }
func (c *Collector) RecordAccountArchived()         { c.accountsArchived.Inc() }
func (c *Collector) RecordAccessDenied(reason string) {
	c.accessDenied.WithLabelValues(reason).Inc()
}

// Handler returns the /metrics endpoint for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
