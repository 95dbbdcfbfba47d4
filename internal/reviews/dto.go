package reviews

import (
	"time"

	"github.com/google/uuid"

	"github.com/marketloop/marketloop-backend/pkg/enums"
)

// Actor identifies the review author plus their role.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// CreateReviewInput carries a new product review.
type CreateReviewInput struct {
	ProductID uuid.UUID
	Rating    int
	Comment   *string
	Actor     Actor
}

// ReviewView is the projection returned to clients.
type ReviewView struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	BuyerID   uuid.UUID `json:"buyer_id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewList wraps paginated reviews plus the next page cursor.
type ReviewList struct {
	Reviews    []ReviewView `json:"reviews"`
	NextCursor string       `json:"next_cursor,omitempty"`
}
