package notifier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	passesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifier_passes_total",
		Help: "Number of completed reconciliation passes.",
	})

	passDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "notifier_pass_duration_seconds",
		Help:    "Duration of a reconciliation pass.",
		Buckets: prometheus.DefBuckets,
	})

	remindersSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_reminders_sent_total",
		Help: "Reminders sent, labelled by kind (24h, 1h).",
	}, []string{"kind"})

	bookingsCancelled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_bookings_cancelled_total",
		Help: "Bookings cancelled, labelled by reason (conflict, unconfirmed).",
	}, []string{"reason"})

	bookingsPassed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifier_bookings_passed_total",
		Help: "Bookings moved to the passed state.",
	})
)
