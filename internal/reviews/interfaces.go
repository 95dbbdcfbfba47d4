package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketloop/marketloop-backend/pkg/db/models"
	"github.com/marketloop/marketloop-backend/pkg/pagination"
)

// Repository defines persistence operations for product reviews.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, review *models.Review) (*models.Review, error)
	ExistsForBuyer(ctx context.Context, productID, buyerID uuid.UUID) (bool, error)
	HasDeliveredItem(ctx context.Context, buyerID, productID uuid.UUID) (bool, error)
	ProductExists(ctx context.Context, productID uuid.UUID) (bool, error)
	RecomputeProductAggregate(ctx context.Context, productID uuid.UUID) error
	ListByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) (*ReviewList, error)
}
