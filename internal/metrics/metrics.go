// Package metrics registers Prometheus counters for balance-affecting
// operations. Exposition is the embedding application's concern; this module
// only counts.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ExpensesCreated counts successfully committed expense creations.
	ExpensesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "yopago",
		Name:      "expenses_created_total",
		Help:      "Number of expenses created.",
	})

	// ExpensesUpdated counts successfully committed expense updates.
	ExpensesUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "yopago",
		Name:      "expenses_updated_total",
		Help:      "Number of expenses updated.",
	})

	// ExpensesDeleted counts successfully committed expense deletions.
	ExpensesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "yopago",
		Name:      "expenses_deleted_total",
		Help:      "Number of expenses deleted.",
	})

	// SettlementsComputed counts settlement calculations.
	SettlementsComputed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "yopago",
		Name:      "settlements_computed_total",
		Help:      "Number of settlement calculations performed.",
	})

	// PaymentsConfirmed counts payment confirmations.
	PaymentsConfirmed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "yopago",
		Name:      "payments_confirmed_total",
		Help:      "Number of payments confirmed.",
	})

	// Resplits counts full group re-splits.
	Resplits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "yopago",
		Name:      "resplits_total",
		Help:      "Number of full group re-splits executed.",
	})

	// EventsDropped counts domain events dropped because the publish buffer
	// was full.
	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "yopago",
		Name:      "events_dropped_total",
		Help:      "Number of domain events dropped due to a full buffer.",
	})
)
