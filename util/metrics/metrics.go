package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReservationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookyard_reservations_created_total",
		Help: "Reservations successfully created.",
	})

	ReservationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookyard_reservation_failures_total",
		Help: "Rejected reservation operations by failure code.",
	}, []string{"reason"})

	FeedDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookyard_feed_dropped_total",
		Help: "Feed events dropped because the publish buffer was full.",
	})
)
