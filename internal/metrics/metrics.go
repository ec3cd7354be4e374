package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AlertsActive tracks the size of the visible alert set after each refresh
	AlertsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crm_automation_alerts_active",
			Help: "Current number of visible automation alerts",
		},
	)

	// AlertsDismissed tracks dismissed alerts
	AlertsDismissed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crm_automation_alerts_dismissed_total",
			Help: "Total number of alert dismissals",
		},
	)

	// AlertsSnoozed tracks snoozed alerts
	AlertsSnoozed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crm_automation_alerts_snoozed_total",
			Help: "Total number of alert snoozes",
		},
	)

	// RemindersDispatched tracks reminder notifications by channel and outcome
	RemindersDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_automation_reminders_dispatched_total",
			Help: "Total number of reminder notifications dispatched",
		},
		[]string{"channel", "status"},
	)

	// DispatchDuration tracks per-channel delivery duration
	DispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crm_automation_dispatch_duration_seconds",
			Help:    "Reminder dispatch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"channel"},
	)

	// DispatchQueueSize tracks the current dispatch queue size
	DispatchQueueSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crm_automation_dispatch_queue_size",
			Help: "Current number of jobs in the dispatch priority queue",
		},
	)

	// SweepDuration tracks how long the reminder sweep takes
	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crm_automation_sweep_duration_seconds",
			Help:    "Reminder sweep duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// DLQSize tracks the size of the dead letter queue
	DLQSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crm_automation_dlq_size",
			Help: "Number of dispatches in the dead letter queue",
		},
	)

	// EmailBounces tracks email bounce events
	EmailBounces = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_automation_email_bounces_total",
			Help: "Total number of email bounce events",
		},
		[]string{"type"}, // hard, soft, complaint
	)

	// RateLimitExceeded tracks rate limit violations
	RateLimitExceeded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_automation_rate_limit_exceeded_total",
			Help: "Total number of rate limit exceeded events",
		},
		[]string{"user_id"},
	)

	// ConsumerRestarts tracks event consumer restart events
	ConsumerRestarts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crm_automation_consumer_restarts_total",
			Help: "Total number of CRM event consumer restarts",
		},
	)
)
