package types

import "time"

// PaymentResult is the gateway-issued receipt recorded when an order settles.
type PaymentResult struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	UpdateTime time.Time `json:"update_time"`
}
