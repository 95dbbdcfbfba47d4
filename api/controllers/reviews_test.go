package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/marketloop/marketloop-backend/internal/reviews"
	"github.com/marketloop/marketloop-backend/pkg/enums"
	"github.com/marketloop/marketloop-backend/pkg/pagination"
)

type stubReviewsService struct {
	createInput *reviews.CreateReviewInput
	listProduct uuid.UUID
	err         error
}

func (s *stubReviewsService) CreateReview(_ context.Context, input reviews.CreateReviewInput) (*reviews.ReviewView, error) {
	s.createInput = &input
	if s.err != nil {
		return nil, s.err
	}
	return &reviews.ReviewView{ID: uuid.New(), ProductID: input.ProductID, Rating: input.Rating}, nil
}

func (s *stubReviewsService) ListReviews(_ context.Context, productID uuid.UUID, _ pagination.Params) (*reviews.ReviewList, error) {
	s.listProduct = productID
	if s.err != nil {
		return nil, s.err
	}
	return &reviews.ReviewList{}, nil
}

func TestCreateReviewReturns201(t *testing.T) {
	svc := &stubReviewsService{}
	handler := CreateReview(svc, nil)

	productID := uuid.New()
	req := authedRequest(http.MethodPost, "/api/v1/products/"+productID.String()+"/reviews", `{"rating":5,"comment":"great"}`, enums.UserRoleBuyer)
	req = withURLParams(req, map[string]string{"productID": productID.String()})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.createInput == nil || svc.createInput.ProductID != productID {
		t.Fatalf("product id not forwarded, got %+v", svc.createInput)
	}
	if svc.createInput.Rating != 5 {
		t.Fatalf("rating not forwarded")
	}
	if svc.createInput.Comment == nil || *svc.createInput.Comment != "great" {
		t.Fatalf("comment not forwarded")
	}
}

func TestCreateReviewRejectsOutOfRangeRating(t *testing.T) {
	svc := &stubReviewsService{}
	handler := CreateReview(svc, nil)

	productID := uuid.New()
	req := authedRequest(http.MethodPost, "/api/v1/products/"+productID.String()+"/reviews", `{"rating":6}`, enums.UserRoleBuyer)
	req = withURLParams(req, map[string]string{"productID": productID.String()})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.createInput != nil {
		t.Fatalf("service should not be called with invalid rating")
	}
}

func TestListReviewsRejectsMalformedProductID(t *testing.T) {
	handler := ListReviews(&stubReviewsService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/not-a-uuid/reviews", nil)
	req = withURLParams(req, map[string]string{"productID": "not-a-uuid"})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListReviewsForwardsProductID(t *testing.T) {
	svc := &stubReviewsService{}
	handler := ListReviews(svc, nil)

	productID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+productID.String()+"/reviews", nil)
	req = withURLParams(req, map[string]string{"productID": productID.String()})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.listProduct != productID {
		t.Fatalf("product id not forwarded")
	}
}
