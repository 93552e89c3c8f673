// Package metrics exposes the bot's operational counters and the HTTP
// surface they are scraped from.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters incremented by the update dispatcher.
type Metrics struct {
	Updates       prometheus.Counter
	InlineQueries *prometheus.CounterVec
	ChosenResults *prometheus.CounterVec
	Commands      *prometheus.CounterVec
	Callbacks     *prometheus.CounterVec
}

// New registers the counter set on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Updates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Updates received from the messaging endpoint.",
		}),
		InlineQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bot_inline_queries_total",
			Help: "Inline queries answered, by resolver mode.",
		}, []string{"mode"}),
		ChosenResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bot_chosen_results_total",
			Help: "Chosen inline results handled, by outcome.",
		}, []string{"outcome"}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Commands processed, by name.",
		}, []string{"command"}),
		Callbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bot_callbacks_total",
			Help: "Button-press callbacks processed, by action.",
		}, []string{"action"}),
	}

	reg.MustRegister(m.Updates, m.InlineQueries, m.ChosenResults, m.Commands, m.Callbacks)

	return m
}
