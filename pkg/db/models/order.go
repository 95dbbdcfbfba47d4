package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/marketloop/marketloop-backend/pkg/enums"
	"github.com/marketloop/marketloop-backend/pkg/types"
)

// Order is the buyer's purchase aggregate. Items are owned by the order and
// never outlive it; TotalAmountCents is fixed at creation and is not touched
// by any later stock or payment event.
type Order struct {
	ID                uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID           uuid.UUID             `gorm:"column:buyer_id;type:uuid;not null"`
	ShippingAddress   types.ShippingAddress `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	PaymentMethod     string                `gorm:"column:payment_method;not null;default:'stripe'"`
	TotalAmountCents  int                   `gorm:"column:total_amount_cents;not null"`
	PaymentStatus     enums.PaymentStatus   `gorm:"column:payment_status;type:payment_status;not null;default:'unpaid'"`
	OrderStatus       enums.OrderStatus     `gorm:"column:order_status;type:order_status;not null;default:'pending'"`
	CheckoutSessionID *string               `gorm:"column:checkout_session_id;uniqueIndex"`
	PaymentResult     *types.PaymentResult  `gorm:"column:payment_result;type:jsonb;serializer:json"`
	PaidAt            *time.Time            `gorm:"column:paid_at"`
	DeliveredAt       *time.Time            `gorm:"column:delivered_at"`
	Items             []OrderItem           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// RecomputedTotalCents sums quantity times the purchase-time price snapshot.
// It must always equal TotalAmountCents.
func (o *Order) RecomputedTotalCents() int {
	total := 0
	for _, item := range o.Items {
		total += item.Qty * item.PriceAtPurchaseCents
	}
	return total
}
