package rls

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scopedTxTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tome_rls_scoped_transactions_total",
		Help: "Scoped transactions by facade mode and outcome",
	}, []string{"mode", "outcome"})

	bypassTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tome_rls_bypass_total",
		Help: "RLS bypass invocations by audit reason",
	}, []string{"reason"})
)
