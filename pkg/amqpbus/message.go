package amqpbus

import (
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/illmade-knight/go-amqp2http/pkg/dispatch"
)

// NewMessage converts an AMQP delivery into the bridge's message
// representation. The payload is copied so the delivery buffer can be
// reused, and the settlement handles close over the delivery's
// acknowledger.
func NewMessage(delivery amqp.Delivery, logger zerolog.Logger) *dispatch.Message {
	payload := make([]byte, len(delivery.Body))
	copy(payload, delivery.Body)

	headers := make(map[string]interface{}, len(delivery.Headers))
	for key, value := range delivery.Headers {
		headers[key] = value
	}

	return &dispatch.Message{
		ID:              delivery.MessageId,
		Payload:         payload,
		ContentType:     delivery.ContentType,
		ContentEncoding: delivery.ContentEncoding,
		CorrelationID:   delivery.CorrelationId,
		Headers:         headers,
		Redelivered:     delivery.Redelivered,
		Ack: func() {
			if err := delivery.Ack(false); err != nil {
				logger.Error().Err(err).Str("msg_id", delivery.MessageId).Msg("Failed to ack message")
			}
		},
		Nack: func() {
			if err := delivery.Nack(false, true); err != nil {
				logger.Error().Err(err).Str("msg_id", delivery.MessageId).Msg("Failed to nack message")
			}
		},
		Reject: func() {
			if err := delivery.Nack(false, false); err != nil {
				logger.Error().Err(err).Str("msg_id", delivery.MessageId).Msg("Failed to reject message")
			}
		},
	}
}
