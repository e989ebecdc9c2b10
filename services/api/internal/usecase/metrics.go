package usecase

import "github.com/prometheus/client_golang/prometheus"

var (
	likeToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unievent_like_toggles_total",
			Help: "Like toggles by resulting state",
		},
		[]string{"state"},
	)

	likeTogglesCoalesced = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "unievent_like_toggles_coalesced_total",
			Help: "Toggle requests that shared the result of an identical in-flight toggle",
		},
	)

	txRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unievent_tx_retries_total",
			Help: "Transactions re-run after a storage conflict",
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(likeToggles)
	prometheus.MustRegister(likeTogglesCoalesced)
	prometheus.MustRegister(txRetries)
}
