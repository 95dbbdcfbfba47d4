package reviews

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketloop/marketloop-backend/pkg/db/models"
	pkgerrors "github.com/marketloop/marketloop-backend/pkg/errors"
	"github.com/marketloop/marketloop-backend/pkg/logger"
	"github.com/marketloop/marketloop-backend/pkg/pagination"
)

type stubReviewsRepo struct {
	productExists bool
	delivered     bool
	reviewed      bool
	created       *models.Review
	recomputed    bool
	createErr     error
}

func (s *stubReviewsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubReviewsRepo) Create(ctx context.Context, review *models.Review) (*models.Review, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	s.created = review
	return review, nil
}

func (s *stubReviewsRepo) ExistsForBuyer(ctx context.Context, productID, buyerID uuid.UUID) (bool, error) {
	return s.reviewed, nil
}

func (s *stubReviewsRepo) HasDeliveredItem(ctx context.Context, buyerID, productID uuid.UUID) (bool, error) {
	return s.delivered, nil
}

func (s *stubReviewsRepo) ProductExists(ctx context.Context, productID uuid.UUID) (bool, error) {
	return s.productExists, nil
}

func (s *stubReviewsRepo) RecomputeProductAggregate(ctx context.Context, productID uuid.UUID) error {
	s.recomputed = true
	return nil
}

func (s *stubReviewsRepo) ListByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) (*ReviewList, error) {
	return &ReviewList{}, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, logger.New(logger.Options{ServiceName: "reviews-test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	return svc
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error with code %s, got %v", code, err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, typed.Code(), err)
	}
}

func TestCreateReviewHappyPath(t *testing.T) {
	repo := &stubReviewsRepo{productExists: true, delivered: true}
	svc := newTestService(t, repo)

	comment := "works great"
	view, err := svc.CreateReview(context.Background(), CreateReviewInput{
		ProductID: uuid.New(),
		Rating:    5,
		Comment:   &comment,
		Actor:     Actor{UserID: uuid.New()},
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if view.Rating != 5 {
		t.Fatalf("unexpected rating %d", view.Rating)
	}
	if repo.created == nil {
		t.Fatalf("review not persisted")
	}
	if !repo.recomputed {
		t.Fatalf("rating aggregate not recomputed")
	}
}

func TestCreateReviewGuards(t *testing.T) {
	cases := []struct {
		name  string
		repo  *stubReviewsRepo
		input CreateReviewInput
		code  pkgerrors.Code
	}{
		{
			name:  "missing identity",
			repo:  &stubReviewsRepo{productExists: true, delivered: true},
			input: CreateReviewInput{ProductID: uuid.New(), Rating: 4},
			code:  pkgerrors.CodeUnauthorized,
		},
		{
			name:  "rating too low",
			repo:  &stubReviewsRepo{productExists: true, delivered: true},
			input: CreateReviewInput{ProductID: uuid.New(), Rating: 0, Actor: Actor{UserID: uuid.New()}},
			code:  pkgerrors.CodeValidation,
		},
		{
			name:  "rating too high",
			repo:  &stubReviewsRepo{productExists: true, delivered: true},
			input: CreateReviewInput{ProductID: uuid.New(), Rating: 6, Actor: Actor{UserID: uuid.New()}},
			code:  pkgerrors.CodeValidation,
		},
		{
			name:  "product missing",
			repo:  &stubReviewsRepo{productExists: false, delivered: true},
			input: CreateReviewInput{ProductID: uuid.New(), Rating: 4, Actor: Actor{UserID: uuid.New()}},
			code:  pkgerrors.CodeNotFound,
		},
		{
			name:  "not delivered",
			repo:  &stubReviewsRepo{productExists: true, delivered: false},
			input: CreateReviewInput{ProductID: uuid.New(), Rating: 4, Actor: Actor{UserID: uuid.New()}},
			code:  pkgerrors.CodeForbidden,
		},
		{
			name:  "already reviewed",
			repo:  &stubReviewsRepo{productExists: true, delivered: true, reviewed: true},
			input: CreateReviewInput{ProductID: uuid.New(), Rating: 4, Actor: Actor{UserID: uuid.New()}},
			code:  pkgerrors.CodeConflict,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(t, tc.repo)
			_, err := svc.CreateReview(context.Background(), tc.input)
			assertCode(t, err, tc.code)
		})
	}
}
