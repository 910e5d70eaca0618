package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LocksAcquired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booking_slot_locks_acquired_total",
		Help: "Slot locks successfully acquired.",
	})

	LockConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_slot_lock_conflicts_total",
		Help: "Slot lock attempts rejected, by reason.",
	}, []string{"reason"})

	BookingsConfirmed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_confirmed_total",
		Help: "Bookings confirmed, by confirmation source.",
	}, []string{"source"})

	BookingsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booking_expired_total",
		Help: "Pending bookings expired by the sweeper.",
	})

	SweeperLocksReleased = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booking_sweeper_locks_released_total",
		Help: "Expired slot locks released by the sweeper.",
	})
)
