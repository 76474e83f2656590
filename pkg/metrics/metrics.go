package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	bookingSubsystem = "booking"

	// Acceptance metrics
	acceptanceTotal = "acceptance_total"

	// Lifecycle metrics
	transitionsTotal = "transitions_total"

	// Notification metrics
	notificationDeliveriesTotal = "notification_deliveries_total"

	// Job metrics
	JobStatusCount = "job_status_count"

	// Labels
	outcomeLabel   = "outcome"
	operationLabel = "operation"
	channelLabel   = "channel"
	statusLabel    = "status"
)

// Acceptance outcomes.
const (
	AcceptanceAccepted     = "accepted"
	AcceptanceAlreadyTaken = "already_taken"
	AcceptanceNotEligible  = "not_eligible"
	AcceptanceError        = "error"
)

/**
* Metrics definition
**/
var acceptanceTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: bookingSubsystem,
		Name:      acceptanceTotal,
		Help:      "number of acceptance attempts partitioned by outcome",
	},
	[]string{outcomeLabel},
)

var transitionsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: bookingSubsystem,
		Name:      transitionsTotal,
		Help:      "number of lifecycle operations partitioned by operation and outcome",
	},
	[]string{operationLabel, outcomeLabel},
)

var notificationDeliveriesTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: bookingSubsystem,
		Name:      notificationDeliveriesTotal,
		Help:      "number of notification deliveries partitioned by channel and outcome",
	},
	[]string{channelLabel, outcomeLabel},
)

var jobStatusCountMetric = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Subsystem: bookingSubsystem,
		Name:      JobStatusCount,
		Help:      "metrics to record the number of jobs in each status",
	},
	[]string{statusLabel},
)

func IncreaseAcceptanceMetric(outcome string) {
	acceptanceTotalMetric.With(prometheus.Labels{outcomeLabel: outcome}).Inc()
}

func IncreaseTransitionMetric(operation, outcome string) {
	transitionsTotalMetric.With(prometheus.Labels{
		operationLabel: operation,
		outcomeLabel:   outcome,
	}).Inc()
}

func IncreaseNotificationMetric(channel, outcome string) {
	notificationDeliveriesTotalMetric.With(prometheus.Labels{
		channelLabel: channel,
		outcomeLabel: outcome,
	}).Inc()
}

func UpdateJobStatusCountMetric(status string, count int64) {
	jobStatusCountMetric.With(prometheus.Labels{statusLabel: status}).Set(float64(count))
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(acceptanceTotalMetric)
	prometheus.MustRegister(transitionsTotalMetric)
	prometheus.MustRegister(notificationDeliveriesTotalMetric)
	prometheus.MustRegister(jobStatusCountMetric)
}
