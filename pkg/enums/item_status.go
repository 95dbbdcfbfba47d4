package enums

import "fmt"

// ItemStatus tracks fulfillment for one order line, advanced by its seller
// independently of the rest of the order.
type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "pending"
	ItemStatusConfirmed ItemStatus = "confirmed"
	ItemStatusShipped   ItemStatus = "shipped"
	ItemStatusDelivered ItemStatus = "delivered"
	ItemStatusCancelled ItemStatus = "cancelled"
)

var validItemStatuses = []ItemStatus{
	ItemStatusPending,
	ItemStatusConfirmed,
	ItemStatusShipped,
	ItemStatusDelivered,
	ItemStatusCancelled,
}

// String implements fmt.Stringer.
func (i ItemStatus) String() string {
	return string(i)
}

// IsValid reports whether the value is a known ItemStatus.
func (i ItemStatus) IsValid() bool {
	for _, candidate := range validItemStatuses {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseItemStatus converts raw input into an ItemStatus.
func ParseItemStatus(value string) (ItemStatus, error) {
	for _, candidate := range validItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item status %q", value)
}
