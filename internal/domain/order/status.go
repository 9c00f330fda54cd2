// internal/domain/order/status.go
package order

// Allowed forward transitions per status. CANCELLED is reachable from any
// non-terminal state; DELIVERED and CANCELLED are terminal. Skipping forward
// steps (e.g. PENDING to SHIPPED) is permitted, moving backward is not.
var validTransitions = map[Status][]Status{
	StatusPending: {
		StatusProcessing,
		StatusShipped,
		StatusDelivered,
		StatusCancelled,
	},
	StatusProcessing: {
		StatusShipped,
		StatusDelivered,
		StatusCancelled,
	},
	StatusShipped: {
		StatusDelivered,
		StatusCancelled,
	},
	StatusDelivered: {},
	StatusCancelled: {},
}

// IsValidTransition reports whether an order may move from one status to
// another. Setting the same status again is treated as a no-op and allowed.
func IsValidTransition(from, to Status) bool {
	if from == to {
		return true
	}

	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == to {
			return true
		}
	}
	return false
}
