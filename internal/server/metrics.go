package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the game counters exported on /metrics. Each Server owns its
// own registry so tests can build servers without collector collisions.
type Metrics struct {
	Registry *prometheus.Registry

	RoundsStarted prometheus.Counter
	Guesses       prometheus.Counter
	Wins          prometheus.Counter
	WinnerTx      *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		Registry: registry,
		RoundsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "cenvorto_rounds_started_total",
			Help: "Rounds started, i.e. secrets dealt.",
		}),
		Guesses: factory.NewCounter(prometheus.CounterOpts{
			Name: "cenvorto_guesses_total",
			Help: "Guesses evaluated.",
		}),
		Wins: factory.NewCounter(prometheus.CounterOpts{
			Name: "cenvorto_wins_total",
			Help: "Correct guesses.",
		}),
		WinnerTx: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cenvorto_winner_tx_total",
			Help: "Winner-marking transactions by outcome.",
		}, []string{"status"}),
	}
}
