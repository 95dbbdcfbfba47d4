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

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByCheckoutSession(ctx context.Context, sessionID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("checkout_session_id = ?", sessionID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// SetCheckoutSession overwrites the session pointer. Re-initiating payment
// intentionally replaces an abandoned session.
func (r *repository) SetCheckoutSession(ctx context.Context, orderID uuid.UUID, sessionID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("checkout_session_id", sessionID).Error
}

// MarkPaid flips the order to paid only while it is still unpaid. The guard
// is what makes confirmation idempotent under concurrent calls: exactly one
// caller sees a row update, everyone else gets false.
func (r *repository) MarkPaid(ctx context.Context, orderID uuid.UUID, result types.PaymentResult, paidAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", orderID, enums.PaymentStatusUnpaid).
		Updates(map[string]any{
			"payment_status": enums.PaymentStatusPaid,
			"order_status":   enums.OrderStatusConfirmed,
			"payment_result": result,
			"paid_at":        paidAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, deliveredAt *time.Time) error {
	updates := map[string]any{"order_status": status}
	if deliveredAt != nil {
		updates["delivered_at"] = *deliveredAt
	}
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}

func (r *repository) UpdateItemStatus(ctx context.Context, itemID uuid.UUID, status enums.ItemStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("id = ?", itemID).
		Update("status", status).Error
}

func (r *repository) SetAllItemStatuses(ctx context.Context, orderID uuid.UUID, status enums.ItemStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("order_id = ?", orderID).
		Update("status", status).Error
}

// CancelOrderAndItems cancels the order and every item in one sweep. Used by
// the pre-payment auto-cancel path, never after money has moved.
func (r *repository) CancelOrderAndItems(ctx context.Context, orderID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("order_status", enums.OrderStatusCancelled).Error
	if err != nil {
		return err
	}
	return r.SetAllItemStatuses(ctx, orderID, enums.ItemStatusCancelled)
}

func (r *repository) ListBuyerOrders(ctx context.Context, buyerID uuid.UUID, params pagination.Params) (*OrderList, error) {
	q := r.db.WithContext(ctx).
		Preload("Items").
		Where("buyer_id = ?", buyerID)
	return r.listOrders(q, params, uuid.Nil)
}

func (r *repository) ListSellerOrders(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*OrderList, error) {
	sub := r.db.Model(&models.OrderItem{}).
		Select("order_id").
		Where("seller_id = ?", sellerID)
	q := r.db.WithContext(ctx).
		Preload("Items", "seller_id = ?", sellerID).
		Where("id IN (?)", sub)
	return r.listOrders(q, params, sellerID)
}

func (r *repository) ListAllOrders(ctx context.Context, params pagination.Params) (*OrderList, error) {
	q := r.db.WithContext(ctx).Preload("Items")
	return r.listOrders(q, params, uuid.Nil)
}

func (r *repository) listOrders(q *gorm.DB, params pagination.Params, itemSeller uuid.UUID) (*OrderList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var rows []models.Order
	err = q.Order("created_at DESC").
		Order("id DESC").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &OrderList{Orders: make([]OrderSummary, 0, len(rows))}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}

	for _, row := range rows {
		summary := OrderSummary{
			ID:               row.ID,
			BuyerID:          row.BuyerID,
			CreatedAt:        row.CreatedAt,
			TotalAmountCents: row.TotalAmountCents,
			TotalItems:       len(row.Items),
			PaymentStatus:    row.PaymentStatus,
			OrderStatus:      row.OrderStatus,
			Items:            itemViews(row.Items, itemSeller),
		}
		list.Orders = append(list.Orders, summary)
	}

	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}

func itemViews(items []models.OrderItem, sellerFilter uuid.UUID) []OrderItemView {
	views := make([]OrderItemView, 0, len(items))
	for _, item := range items {
		if sellerFilter != uuid.Nil && item.SellerID != sellerFilter {
			continue
		}
		views = append(views, OrderItemView{
			ID:                   item.ID,
			ProductID:            item.ProductID,
			SellerID:             item.SellerID,
			Qty:                  item.Qty,
			PriceAtPurchaseCents: item.PriceAtPurchaseCents,
			Status:               item.Status,
		})
	}
	return views
}
