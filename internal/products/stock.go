package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketloop/marketloop-backend/pkg/db/models"
)

// Snapshot is the point-in-time product view order creation prices from.
type Snapshot struct {
	ProductID  uuid.UUID
	SellerID   uuid.UUID
	Title      string
	PriceCents int
	Stock      int
	IsActive   bool
}

// HasStock reports whether the snapshot can cover the requested quantity.
// Snapshot checks are advisory; only Decrement is binding.
func (s Snapshot) HasStock(qty int) bool {
	return s.IsActive && s.Stock >= qty
}

// StockLedger reads product snapshots and applies binding stock decrements.
type StockLedger interface {
	WithTx(tx *gorm.DB) StockLedger
	Snapshots(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]Snapshot, error)
	Decrement(ctx context.Context, productID uuid.UUID, qty int) (bool, error)
}

type stockLedger struct {
	db *gorm.DB
}

// NewStockLedger builds a ledger bound to the provided DB.
func NewStockLedger(db *gorm.DB) StockLedger {
	return &stockLedger{db: db}
}

func (l *stockLedger) WithTx(tx *gorm.DB) StockLedger {
	if tx == nil {
		return l
	}
	return &stockLedger{db: tx}
}

// Snapshots loads the products for the given IDs. Missing IDs are simply
// absent from the result; callers decide whether that is an error.
func (l *stockLedger) Snapshots(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]Snapshot, error) {
	out := make(map[uuid.UUID]Snapshot, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	var rows []models.Product
	err := l.db.WithContext(ctx).
		Where("id IN ?", productIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, p := range rows {
		out[p.ID] = Snapshot{
			ProductID:  p.ID,
			SellerID:   p.SellerID,
			Title:      p.Title,
			PriceCents: p.PriceCents,
			Stock:      p.Stock,
			IsActive:   p.IsActive,
		}
	}
	return out, nil
}

// Decrement subtracts qty from the product's stock only when enough remains.
// The guard in the WHERE clause makes concurrent decrements serialize on the
// row, so stock never goes negative. Returns false when the guard rejected.
func (l *stockLedger) Decrement(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	if qty <= 0 {
		return false, nil
	}
	res := l.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND is_active = ? AND stock >= ?", productID, true, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
