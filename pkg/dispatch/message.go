package dispatch

// Message is the bridge's internal representation of one delivery from the
// bus. It carries the raw payload, the AMQP metadata the dispatcher may
// forward as headers, and the settlement handles.
type Message struct {
	// ID is the publisher-assigned message id. Empty means unset.
	ID string

	// Payload is the raw body, forwarded to the endpoint unmodified.
	Payload []byte

	// ContentType, ContentEncoding and CorrelationID mirror the AMQP
	// message properties. Empty means the property was not set and the
	// corresponding HTTP header must be omitted.
	ContentType     string
	ContentEncoding string
	CorrelationID   string

	// Headers holds the message's own header table.
	Headers map[string]interface{}

	// Redelivered reports whether the bus has delivered this message before.
	Redelivered bool

	// Ack signals the bus to permanently remove the message.
	Ack func()

	// Nack signals the bus to redeliver the message later.
	Nack func()

	// Reject signals the bus to drop the message without redelivery,
	// dead-lettering it if the queue is configured to.
	Reject func()
}
