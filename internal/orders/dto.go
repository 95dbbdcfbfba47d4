package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/marketloop/marketloop-backend/pkg/enums"
	"github.com/marketloop/marketloop-backend/pkg/types"
)

// Actor identifies who is calling an operation. Roles are passed explicitly
// so services never reach into ambient request state.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
	Email  string
}

// NewOrderItemInput is one requested purchase line.
type NewOrderItemInput struct {
	ProductID uuid.UUID
	Qty       int
}

// CreateOrderInput carries everything needed to persist a pending order.
type CreateOrderInput struct {
	Buyer           Actor
	ShippingAddress types.ShippingAddress
	PaymentMethod   string
	Items           []NewOrderItemInput
}

// InitiatePaymentInput starts the hosted checkout for an existing order.
type InitiatePaymentInput struct {
	OrderID uuid.UUID
	Actor   Actor
}

// InitiatePaymentResult returns where the buyer should be redirected.
type InitiatePaymentResult struct {
	OrderID     uuid.UUID `json:"order_id"`
	SessionID   string    `json:"session_id"`
	RedirectURL string    `json:"redirect_url"`
}

// UpdateOrderStatusInput is the admin-only top-level status override.
type UpdateOrderStatusInput struct {
	OrderID uuid.UUID
	Target  enums.OrderStatus
	Actor   Actor
}

// UpdateItemStatusInput advances a single item through its lifecycle.
type UpdateItemStatusInput struct {
	OrderID uuid.UUID
	ItemID  uuid.UUID
	Target  enums.ItemStatus
	Actor   Actor
}

// OrderItemView is the item projection shared by all order reads.
type OrderItemView struct {
	ID                   uuid.UUID        `json:"id"`
	ProductID            uuid.UUID        `json:"product_id"`
	SellerID             uuid.UUID        `json:"seller_id"`
	Qty                  int              `json:"qty"`
	PriceAtPurchaseCents int              `json:"price_at_purchase_cents"`
	Status               enums.ItemStatus `json:"status"`
}

// OrderView is the full order projection returned by single-order reads.
type OrderView struct {
	ID                uuid.UUID             `json:"id"`
	BuyerID           uuid.UUID             `json:"buyer_id"`
	ShippingAddress   types.ShippingAddress `json:"shipping_address"`
	PaymentMethod     string                `json:"payment_method"`
	TotalAmountCents  int                   `json:"total_amount_cents"`
	PaymentStatus     enums.PaymentStatus   `json:"payment_status"`
	OrderStatus       enums.OrderStatus     `json:"order_status"`
	CheckoutSessionID *string               `json:"checkout_session_id,omitempty"`
	PaymentResult     *types.PaymentResult  `json:"payment_result,omitempty"`
	PaidAt            *time.Time            `json:"paid_at,omitempty"`
	DeliveredAt       *time.Time            `json:"delivered_at,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
	Items             []OrderItemView       `json:"items"`
}

// OrderSummary is the row shape used by the paginated lists.
type OrderSummary struct {
	ID               uuid.UUID           `json:"id"`
	BuyerID          uuid.UUID           `json:"buyer_id"`
	CreatedAt        time.Time           `json:"created_at"`
	TotalAmountCents int                 `json:"total_amount_cents"`
	TotalItems       int                 `json:"total_items"`
	PaymentStatus    enums.PaymentStatus `json:"payment_status"`
	OrderStatus      enums.OrderStatus   `json:"order_status"`
	Items            []OrderItemView     `json:"items,omitempty"`
}

// OrderList wraps the paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}
