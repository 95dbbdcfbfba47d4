package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketloop/marketloop-backend/pkg/db/models"
	"github.com/marketloop/marketloop-backend/pkg/enums"
	"github.com/marketloop/marketloop-backend/pkg/pagination"
	"github.com/marketloop/marketloop-backend/pkg/types"
)

// Repository defines persistence operations for the orders tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByCheckoutSession(ctx context.Context, sessionID string) (*models.Order, error)
	SetCheckoutSession(ctx context.Context, orderID uuid.UUID, sessionID string) error
	MarkPaid(ctx context.Context, orderID uuid.UUID, result types.PaymentResult, paidAt time.Time) (bool, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, deliveredAt *time.Time) error
	UpdateItemStatus(ctx context.Context, itemID uuid.UUID, status enums.ItemStatus) error
	SetAllItemStatuses(ctx context.Context, orderID uuid.UUID, status enums.ItemStatus) error
	CancelOrderAndItems(ctx context.Context, orderID uuid.UUID) error
	ListBuyerOrders(ctx context.Context, buyerID uuid.UUID, params pagination.Params) (*OrderList, error)
	ListSellerOrders(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*OrderList, error)
	ListAllOrders(ctx context.Context, params pagination.Params) (*OrderList, error)
}
