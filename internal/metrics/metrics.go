package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shala_http_request_duration_seconds",
		Help:    "HTTP request latency by method, route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shala_bookings_created_total",
		Help: "Bookings successfully confirmed.",
	})

	BookingConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shala_booking_conflicts_total",
		Help: "Booking attempts rejected by a business rule, by code.",
	}, []string{"code"})

	BookingsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shala_bookings_cancelled_total",
		Help: "Bookings cancelled by their owner or an admin cascade.",
	})

	PackagesPurchased = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shala_packages_purchased_total",
		Help: "User packages created through purchase.",
	})

	PaymentsVerified = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shala_payments_verified_total",
		Help: "Payments approved by an admin.",
	})

	PaymentsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shala_payments_rejected_total",
		Help: "Payments rejected by an admin.",
	})
)
