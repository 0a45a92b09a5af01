package topology

import (
	"context"
	"fmt"
)

// Topology owns the constructed consumer groups for the process lifetime.
// It is read-only after Build; the nested index exists only so the host can
// reach individual group handles for health reporting.
type Topology struct {
	groups map[string]map[string]ConsumerGroup
}

// Group returns the consumer group for one (integration, exchange) pair.
func (t *Topology) Group(integration, exchange string) (ConsumerGroup, bool) {
	group, ok := t.groups[integration][exchange]
	return group, ok
}

// GroupCount returns the number of consumer groups.
func (t *Topology) GroupCount() int {
	n := 0
	for _, exchanges := range t.groups {
		n += len(exchanges)
	}
	return n
}

// Start starts every consumer group. The first failure aborts the startup;
// groups already running are stopped again so the caller never observes a
// partially started topology.
func (t *Topology) Start(ctx context.Context) error {
	var started []ConsumerGroup
	for integration, exchanges := range t.groups {
		for exchange, group := range exchanges {
			if err := group.Start(ctx); err != nil {
				for _, s := range started {
					_ = s.Stop(ctx)
				}
				return fmt.Errorf("starting consumer group %q: %w", integration+"_"+exchange, err)
			}
			started = append(started, group)
		}
	}
	return nil
}

// Stop stops every consumer group, returning the first error encountered
// after attempting all of them.
func (t *Topology) Stop(ctx context.Context) error {
	var firstErr error
	for _, exchanges := range t.groups {
		for _, group := range exchanges {
			if err := group.Stop(ctx); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
