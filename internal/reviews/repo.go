package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketloop/marketloop-backend/pkg/db/models"
	"github.com/marketloop/marketloop-backend/pkg/enums"
	"github.com/marketloop/marketloop-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a reviews repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, review *models.Review) (*models.Review, error) {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

func (r *repository) ExistsForBuyer(ctx context.Context, productID, buyerID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("product_id = ? AND buyer_id = ?", productID, buyerID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasDeliveredItem reports whether one of the buyer's orders holds the product
// with a delivered item. This is the review eligibility gate.
func (r *repository) HasDeliveredItem(ctx context.Context, buyerID, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.buyer_id = ? AND order_items.product_id = ? AND order_items.status = ?",
			buyerID, productID, enums.ItemStatusDelivered).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) ProductExists(ctx context.Context, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RecomputeProductAggregate rewrites the product's rating aggregate from the
// active reviews. Running it after every write keeps the aggregate exact
// instead of drifting with incremental math.
func (r *repository) RecomputeProductAggregate(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE products
		SET average_rating = COALESCE((SELECT AVG(rating) FROM reviews WHERE product_id = ? AND is_active = ?), 0),
			total_reviews = (SELECT COUNT(*) FROM reviews WHERE product_id = ? AND is_active = ?)
		WHERE id = ?
	`, productID, true, productID, true, productID).Error
}

func (r *repository) ListByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) (*ReviewList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx).
		Where("product_id = ? AND is_active = ?", productID, true)
	if cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var rows []models.Review
	err = q.Order("created_at DESC").
		Order("id DESC").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &ReviewList{Reviews: make([]ReviewView, 0, len(rows))}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for _, row := range rows {
		list.Reviews = append(list.Reviews, ReviewView{
			ID:        row.ID,
			ProductID: row.ProductID,
			BuyerID:   row.BuyerID,
			Rating:    row.Rating,
			Comment:   row.Comment,
			CreatedAt: row.CreatedAt,
		})
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
