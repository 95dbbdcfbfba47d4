package types

import (
	"fmt"
	"strings"
)

// ShippingAddress is the destination captured on an order. All four fields
// are required; the order keeps its own copy so later profile edits never
// rewrite history.
type ShippingAddress struct {
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

// Validate reports the first missing field, if any.
func (s ShippingAddress) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"address", s.Address},
		{"city", s.City},
		{"postal_code", s.PostalCode},
		{"country", s.Country},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("shipping address: missing %s", f.name)
		}
	}
	return nil
}
