package dispatch

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/illmade-knight/go-amqp2http/pkg/mapping"
)

var (
	dispatchOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "amqp2http",
			Name:      "dispatch_outcomes_total",
			Help:      "No of dispatched messages by routing key, response code and outcome",
		},
		[]string{
			"routing_key",
			"code",
			"outcome",
		},
	)
	dispatchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "amqp2http",
			Name:      "dispatch_errors_total",
			Help:      "No of dispatches that failed before a response was received",
		},
		[]string{
			"routing_key",
		},
	)
)

func observeOutcome(endpoint mapping.EventEndpoint, status int, outcome Outcome) {
	dispatchOutcomes.WithLabelValues(endpoint.RoutingKey, strconv.Itoa(status), outcome.Action.String()).Inc()
}

func observeTransportError(endpoint mapping.EventEndpoint) {
	dispatchErrors.WithLabelValues(endpoint.RoutingKey).Inc()
}
