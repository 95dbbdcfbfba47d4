package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/marketloop/marketloop-backend/pkg/enums"
)

// OrderItem is one product line within an order. SellerID is denormalized
// from the product at order creation and never re-derived, so seller
// attribution survives later product edits or handovers.
type OrderItem struct {
	ID                   uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID              uuid.UUID        `gorm:"column:order_id;type:uuid;not null"`
	ProductID            uuid.UUID        `gorm:"column:product_id;type:uuid;not null"`
	SellerID             uuid.UUID        `gorm:"column:seller_id;type:uuid;not null"`
	Qty                  int              `gorm:"column:qty;not null"`
	PriceAtPurchaseCents int              `gorm:"column:price_at_purchase_cents;not null"`
	Status               enums.ItemStatus `gorm:"column:status;type:item_status;not null;default:'pending'"`
	CreatedAt            time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
