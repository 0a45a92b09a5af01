package mapping

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GroupID returns the consumer-group identity for one (integration,
// upstream exchange) pair. Both parts are map keys in the EventMapping, so
// the result is unique per pair. The id doubles as the group's exchange and
// queue namespace on the broker, so it must be stable across restarts.
func GroupID(integration, upstreamExchange string) string {
	return integration + "_" + upstreamExchange
}

// HandlerID returns the identity for one endpoint registration within a
// consumer group. Two endpoints may share a routing key (fan-out to several
// URLs), so the URL is folded in as a short hash rather than verbatim: URLs
// can be arbitrarily long and contain characters unsuitable for broker
// entity names.
func HandlerID(groupID, routingKey, endpointURL string) string {
	sum := sha256.Sum256([]byte(endpointURL))
	return fmt.Sprintf("%s_%s_%s", groupID, routingKey, hex.EncodeToString(sum[:4]))
}
