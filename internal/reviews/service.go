package reviews

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketloop/marketloop-backend/pkg/db"
	"github.com/marketloop/marketloop-backend/pkg/db/models"
	pkgerrors "github.com/marketloop/marketloop-backend/pkg/errors"
	"github.com/marketloop/marketloop-backend/pkg/logger"
	"github.com/marketloop/marketloop-backend/pkg/pagination"
)

const uniqueReviewIndex = "idx_reviews_product_buyer"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the review operations.
type Service interface {
	CreateReview(ctx context.Context, input CreateReviewInput) (*ReviewView, error)
	ListReviews(ctx context.Context, productID uuid.UUID, params pagination.Params) (*ReviewList, error)
}

type service struct {
	repo Repository
	tx   txRunner
	logg *logger.Logger
}

// NewService builds the reviews service with the required dependencies.
func NewService(repo Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

// CreateReview accepts one review per buyer+product, gated on the buyer
// having actually received the product.
func (s *service) CreateReview(ctx context.Context, input CreateReviewInput) (*ReviewView, error) {
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	exists, err := s.repo.ProductExists(ctx, input.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	eligible, err := s.repo.HasDeliveredItem(ctx, input.Actor.UserID, input.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check review eligibility")
	}
	if !eligible {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "reviews require a delivered purchase of the product")
	}

	reviewed, err := s.repo.ExistsForBuyer(ctx, input.ProductID, input.Actor.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing review")
	}
	if reviewed {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product already reviewed")
	}

	review := &models.Review{
		ProductID: input.ProductID,
		BuyerID:   input.Actor.UserID,
		Rating:    input.Rating,
		Comment:   input.Comment,
		IsActive:  true,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.Create(ctx, review); err != nil {
			// The unique index still backstops the pre-check under races.
			if db.IsUniqueViolation(err, uniqueReviewIndex) {
				return pkgerrors.New(pkgerrors.CodeConflict, "product already reviewed")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist review")
		}
		if err := txRepo.RecomputeProductAggregate(ctx, input.ProductID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recompute rating aggregate")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(ctx, "review created")
	return &ReviewView{
		ID:        review.ID,
		ProductID: review.ProductID,
		BuyerID:   review.BuyerID,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}, nil
}

func (s *service) ListReviews(ctx context.Context, productID uuid.UUID, params pagination.Params) (*ReviewList, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	list, err := s.repo.ListByProduct(ctx, productID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	return list, nil
}
