package orders

import (
	"github.com/marketloop/marketloop-backend/pkg/enums"
)

// itemTransitions is the full per-item lifecycle. Delivered and cancelled
// are terminal.
var itemTransitions = map[enums.ItemStatus][]enums.ItemStatus{
	enums.ItemStatusPending:   {enums.ItemStatusConfirmed, enums.ItemStatusCancelled},
	enums.ItemStatusConfirmed: {enums.ItemStatusShipped, enums.ItemStatusCancelled},
	enums.ItemStatusShipped:   {enums.ItemStatusDelivered},
}

// CanTransitionItem reports whether an item may move from one status to another.
func CanTransitionItem(from, to enums.ItemStatus) bool {
	if from == to {
		return false
	}
	for _, allowed := range itemTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CanTransitionOrder reports whether the top-level order status may change.
// Cancelled is terminal; every other move is allowed because the order-level
// status is an administrative override, not a workflow step.
func CanTransitionOrder(from, to enums.OrderStatus) bool {
	if from == to {
		return false
	}
	if from == enums.OrderStatusCancelled {
		return false
	}
	return to.IsValid()
}
