package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LedgerEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_events_total",
			Help: "Total ledger state transitions by event type",
		},
		[]string{"event_type"},
	)

	PayoutAmount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_payout_amount_total",
			Help: "Total funds paid out to selected candidates",
		},
	)

	FeeAmount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_fee_amount_total",
			Help: "Total platform fees collected",
		},
	)

	RefundAmount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_refund_amount_total",
			Help: "Total stakes refunded from escrow",
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP requests",
		},
		[]string{"method", "status"},
	)
)
