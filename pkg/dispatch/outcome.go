package dispatch

// Action is the delivery outcome class the bus side acts on.
type Action int

const (
	// Ack acknowledges the message positively.
	Ack Action = iota
	// Requeue negatively acknowledges the message with redelivery requested.
	Requeue
	// Reject negatively acknowledges the message without redelivery.
	Reject
)

func (a Action) String() string {
	switch a {
	case Ack:
		return "ack"
	case Requeue:
		return "requeue"
	case Reject:
		return "reject"
	default:
		return "unknown"
	}
}

// Outcome is the result of dispatching one message to one endpoint. Reason
// is empty for Ack and explains the decision otherwise.
type Outcome struct {
	Action Action
	Reason string
}

func acked() Outcome {
	return Outcome{Action: Ack}
}

func requeued(reason string) Outcome {
	return Outcome{Action: Requeue, Reason: reason}
}

func rejected(reason string) Outcome {
	return Outcome{Action: Reject, Reason: reason}
}
