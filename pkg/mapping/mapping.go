// Package mapping holds the declarative event mapping that drives the
// bridge: which integrations listen to which upstream exchanges, and which
// (routing key, URL) pairs each exchange dispatches to. The mapping is
// parsed once at startup, validated, and read-only afterwards.
package mapping

import (
	"fmt"
	"net/url"
)

// EventEndpoint is one HTTP destination for messages matching RoutingKey
// within an upstream exchange.
type EventEndpoint struct {
	RoutingKey string `json:"routing_key"`
	URL        string `json:"url"`
}

// Validate checks the endpoint has a routing key and an absolute http(s) URL.
func (e EventEndpoint) Validate() error {
	if e.RoutingKey == "" {
		return fmt.Errorf("endpoint with url %q has an empty routing key", e.URL)
	}
	u, err := url.Parse(e.URL)
	if err != nil {
		return fmt.Errorf("endpoint %q has a malformed url %q: %w", e.RoutingKey, e.URL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("endpoint %q url %q is not an absolute http(s) url", e.RoutingKey, e.URL)
	}
	return nil
}

// ExchangeMapping lists the endpoints attached to one upstream exchange.
// Order carries no delivery semantics but is preserved so identity
// generation is deterministic.
type ExchangeMapping struct {
	Queues []EventEndpoint `json:"queues"`
}

// IntegrationMapping collects the upstream exchanges one integration
// listens to, keyed by exchange name.
type IntegrationMapping struct {
	Exchanges map[string]ExchangeMapping `json:"exchanges"`
}

// EventMapping is the root of the configuration: integration name to
// IntegrationMapping.
type EventMapping struct {
	Integrations map[string]IntegrationMapping `json:"integrations"`
}

// Validate checks every key is non-empty and every endpoint is valid.
func (m EventMapping) Validate() error {
	for integration, iconf := range m.Integrations {
		if integration == "" {
			return fmt.Errorf("event mapping contains an empty integration name")
		}
		for exchange, econf := range iconf.Exchanges {
			if exchange == "" {
				return fmt.Errorf("integration %q contains an empty exchange name", integration)
			}
			for _, endpoint := range econf.Queues {
				if err := endpoint.Validate(); err != nil {
					return fmt.Errorf("integration %q exchange %q: %w", integration, exchange, err)
				}
			}
		}
	}
	return nil
}
