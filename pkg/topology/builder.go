// Package topology turns a validated event mapping into a set of isolated
// consumer groups, one per (integration, upstream exchange) pair, each
// bound to one dispatch handler per configured endpoint.
package topology

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/illmade-knight/go-amqp2http/pkg/dispatch"
	"github.com/illmade-knight/go-amqp2http/pkg/mapping"
)

// Handler processes one delivery and reports its outcome.
type Handler func(ctx context.Context, msg *dispatch.Message) (dispatch.Outcome, error)

// Binding ties one routing key and handler identity to a handler. The
// identity travels as explicit data; nothing is derived from function names.
type Binding struct {
	HandlerID  string
	RoutingKey string
	Handle     Handler
}

// GroupSpec describes one consumer group for the factory. GroupID is used
// as the group's own exchange name and queue namespace on the bus.
type GroupSpec struct {
	GroupID          string
	UpstreamExchange string
	Bindings         []Binding
}

// ConsumerGroup is a runnable, independently healthcheckable set of bus
// bindings. The bus-side implementation is an external collaborator.
type ConsumerGroup interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Healthy() bool
}

// GroupFactory builds a runnable consumer group from a spec.
type GroupFactory func(spec GroupSpec) (ConsumerGroup, error)

// HealthRegistry receives one named probe per consumer group.
type HealthRegistry interface {
	AddCheck(name string, check func() bool)
}

// Builder constructs the consumer-group topology for an event mapping.
type Builder struct {
	dispatcher *dispatch.Dispatcher
	factory    GroupFactory
	logger     zerolog.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(dispatcher *dispatch.Dispatcher, factory GroupFactory, logger zerolog.Logger) (*Builder, error) {
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher cannot be nil")
	}
	if factory == nil {
		return nil, fmt.Errorf("factory cannot be nil")
	}
	return &Builder{
		dispatcher: dispatcher,
		factory:    factory,
		logger:     logger.With().Str("component", "TopologyBuilder").Logger(),
	}, nil
}

// Build validates the mapping and constructs one consumer group per
// (integration, exchange) pair, registering a health check named
// AMQP_{integration}_{exchange} for each. Any failure aborts the whole
// build; a partial topology is not a supported state.
func (b *Builder) Build(m mapping.EventMapping, health HealthRegistry) (*Topology, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid event mapping: %w", err)
	}

	groups := make(map[string]map[string]ConsumerGroup)
	for integration, iconf := range m.Integrations {
		for exchange, econf := range iconf.Exchanges {
			groupID := mapping.GroupID(integration, exchange)

			bindings := make([]Binding, 0, len(econf.Queues))
			seen := make(map[string]struct{}, len(econf.Queues))
			for _, endpoint := range econf.Queues {
				handlerID := mapping.HandlerID(groupID, endpoint.RoutingKey, endpoint.URL)
				if _, dup := seen[handlerID]; dup {
					return nil, fmt.Errorf(
						"duplicate handler identity %q: endpoint %q is registered twice under consumer group %q",
						handlerID, endpoint.URL, groupID)
				}
				seen[handlerID] = struct{}{}

				// The handler closes over its endpoint, so the dispatcher
				// always knows which (routing key, URL) pair it serves
				// regardless of which message arrives.
				bindings = append(bindings, Binding{
					HandlerID:  handlerID,
					RoutingKey: endpoint.RoutingKey,
					Handle: func(ctx context.Context, msg *dispatch.Message) (dispatch.Outcome, error) {
						return b.dispatcher.Dispatch(ctx, endpoint, msg)
					},
				})
			}

			group, err := b.factory(GroupSpec{
				GroupID:          groupID,
				UpstreamExchange: exchange,
				Bindings:         bindings,
			})
			if err != nil {
				return nil, fmt.Errorf("building consumer group %q: %w", groupID, err)
			}

			health.AddCheck("AMQP_"+groupID, group.Healthy)

			if groups[integration] == nil {
				groups[integration] = make(map[string]ConsumerGroup)
			}
			groups[integration][exchange] = group

			b.logger.Info().
				Str("group", groupID).
				Int("handlers", len(bindings)).
				Msg("Consumer group constructed")
		}
	}

	return &Topology{groups: groups}, nil
}
