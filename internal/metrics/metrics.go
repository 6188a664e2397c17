// Package metrics exposes the service's prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Checkins counts admission decisions by outcome.
	Checkins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "narthex_checkins_total",
		Help: "Admission decisions by outcome.",
	}, []string{"outcome"})

	// Overrides counts supervisor override actions.
	Overrides = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "narthex_overrides_total",
		Help: "Supervisor override actions by kind.",
	}, []string{"action"})

	// SyncReplays counts kiosk offline-queue replay resolutions.
	SyncReplays = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "narthex_sync_replays_total",
		Help: "Offline queue replay resolutions by result.",
	}, []string{"result"})
)
