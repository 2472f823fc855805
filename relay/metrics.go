package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pushesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rxpanel_relay_pushes_total",
		Help: "Number of VFO updates pushed to the backend.",
	})
	pushErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rxpanel_relay_push_errors_total",
		Help: "Number of VFO updates the backend rejected or that failed to send.",
	})
	coalescedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rxpanel_relay_coalesced_total",
		Help: "Number of VFO updates coalesced by the debounce window.",
	})
	unlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rxpanel_relay_unlocks_total",
		Help: "Number of defensive VFO unlocks after a transmitter disappeared.",
	})
)
