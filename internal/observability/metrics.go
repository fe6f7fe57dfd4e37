package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// CheckinsTotal counts classified and persisted check-ins by verdict.
	CheckinsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkins_total",
			Help: "Check-ins persisted, by verdict status and allowed flag.",
		},
		[]string{"status", "allowed"},
	)

	// StoreErrorsTotal counts record store failures by operation
	// (append, lookup, fetch, list). Misses are not failures.
	StoreErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_errors_total",
			Help: "Record store failures by operation.",
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(CheckinsTotal, StoreErrorsTotal)
}

// RecordCheckin counts one persisted check-in.
func RecordCheckin(status string, allowed bool) {
	CheckinsTotal.WithLabelValues(status, strconv.FormatBool(allowed)).Inc()
}

// RecordStoreError counts one failed store operation.
func RecordStoreError(op string) {
	StoreErrorsTotal.WithLabelValues(op).Inc()
}
