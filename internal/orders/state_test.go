package orders

import (
	"testing"

	"github.com/marketloop/marketloop-backend/pkg/enums"
)

func TestItemTransitions(t *testing.T) {
	cases := []struct {
		from    enums.ItemStatus
		to      enums.ItemStatus
		allowed bool
	}{
		{enums.ItemStatusPending, enums.ItemStatusConfirmed, true},
		{enums.ItemStatusPending, enums.ItemStatusCancelled, true},
		{enums.ItemStatusPending, enums.ItemStatusShipped, false},
		{enums.ItemStatusPending, enums.ItemStatusDelivered, false},
		{enums.ItemStatusConfirmed, enums.ItemStatusShipped, true},
		{enums.ItemStatusConfirmed, enums.ItemStatusCancelled, true},
		{enums.ItemStatusConfirmed, enums.ItemStatusDelivered, false},
		{enums.ItemStatusConfirmed, enums.ItemStatusPending, false},
		{enums.ItemStatusShipped, enums.ItemStatusDelivered, true},
		{enums.ItemStatusShipped, enums.ItemStatusCancelled, false},
		{enums.ItemStatusDelivered, enums.ItemStatusShipped, false},
		{enums.ItemStatusDelivered, enums.ItemStatusCancelled, false},
		{enums.ItemStatusDelivered, enums.ItemStatusPending, false},
		{enums.ItemStatusCancelled, enums.ItemStatusPending, false},
		{enums.ItemStatusCancelled, enums.ItemStatusConfirmed, false},
		{enums.ItemStatusPending, enums.ItemStatusPending, false},
	}

	for _, tc := range cases {
		if got := CanTransitionItem(tc.from, tc.to); got != tc.allowed {
			t.Errorf("item %s -> %s: got %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestOrderTransitions(t *testing.T) {
	cases := []struct {
		from    enums.OrderStatus
		to      enums.OrderStatus
		allowed bool
	}{
		{enums.OrderStatusPending, enums.OrderStatusConfirmed, true},
		{enums.OrderStatusPending, enums.OrderStatusDelivered, true},
		{enums.OrderStatusConfirmed, enums.OrderStatusPending, true},
		{enums.OrderStatusShipped, enums.OrderStatusCancelled, true},
		{enums.OrderStatusCancelled, enums.OrderStatusPending, false},
		{enums.OrderStatusCancelled, enums.OrderStatusConfirmed, false},
		{enums.OrderStatusDelivered, enums.OrderStatusShipped, true},
		{enums.OrderStatusPending, enums.OrderStatusPending, false},
		{enums.OrderStatusPending, enums.OrderStatus("bogus"), false},
	}

	for _, tc := range cases {
		if got := CanTransitionOrder(tc.from, tc.to); got != tc.allowed {
			t.Errorf("order %s -> %s: got %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}
