// Package metrics defines and registers all custom Prometheus metrics for
// the applicant tracking API. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics register with the default Prometheus registry at package load; the
// router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ats"

// ── Application metrics ──────────────────────────────────────────────────────

// ApplicationsSubmittedTotal counts successfully created applications.
// Label:
//   - job_type: the posting type applied to ("Internship" or "Job")
var ApplicationsSubmittedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "applications_submitted_total",
		Help:      "Total number of applications successfully submitted.",
	},
	[]string{"job_type"},
)

// StatusTransitionsTotal counts committed status transitions.
// Label:
//   - status: the new application status (e.g. "Shortlisted")
var StatusTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_transitions_total",
		Help:      "Total number of application status transitions committed.",
	},
	[]string{"status"},
)

// ── Notification metrics ─────────────────────────────────────────────────────

// NotificationsSentTotal counts status emails delivered.
var NotificationsSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_sent_total",
		Help:      "Total number of status-change emails delivered.",
	},
	[]string{"status"},
)

// NotificationsFailedTotal counts status emails that could not be delivered.
// Failures never affect the transition that triggered them.
var NotificationsFailedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_failed_total",
		Help:      "Total number of status-change emails that failed to send.",
	},
	[]string{"status"},
)

// ── Resume store metrics ─────────────────────────────────────────────────────

// ResumeOperationsTotal counts artifact store operations by outcome.
// Labels:
//   - op: "store" or "retrieve"
//   - result: "ok", "rejected", or "error"
var ResumeOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resume_operations_total",
		Help:      "Total number of resume store operations, by operation and result.",
	},
	[]string{"op", "result"},
)

// ResumeDownloadDuration measures resume retrieval latency end-to-end,
// including a remote backend fetch when one is configured.
var ResumeDownloadDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "resume_download_duration_seconds",
		Help:      "Duration of resume retrieval from request to first byte.",
		Buckets:   prometheus.DefBuckets,
	},
)
