package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"target-shooting/internal/scoring"
)

type metrics struct {
	registry       *prometheus.Registry
	gamesCreated   prometheus.Counter
	hits           *prometheus.CounterVec
	roomsCompleted *prometheus.CounterVec
	conflicts      prometheus.Counter
	logins         *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		gamesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "target_shooting",
			Name:      "games_created_total",
			Help:      "Games created.",
		}),
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "target_shooting",
			Name:      "hits_total",
			Help:      "Hit submissions by room and outcome.",
		}, []string{"room", "result"}),
		roomsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "target_shooting",
			Name:      "rooms_completed_total",
			Help:      "Rooms locked by room completion.",
		}, []string{"room"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "target_shooting",
			Name:      "write_conflicts_total",
			Help:      "Game writes retried after a concurrent update.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "target_shooting",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.gamesCreated,
		m.hits,
		m.roomsCompleted,
		m.conflicts,
		m.logins,
	)
	return m
}

func (m *metrics) hit(room scoring.RoomID, recorded bool) {
	result := "recorded"
	if !recorded {
		result = "duplicate"
	}
	m.hits.WithLabelValues(room.Key(), result).Inc()
}

func (m *metrics) roomCompleted(room scoring.RoomID) {
	m.roomsCompleted.WithLabelValues(room.Key()).Inc()
}

func (m *metrics) conflict() {
	m.conflicts.Inc()
}
