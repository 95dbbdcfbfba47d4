package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the catalog listing the order core reads snapshots from and
// decrements stock against. Catalog management itself lives elsewhere.
type Product struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID      uuid.UUID `gorm:"column:seller_id;type:uuid;not null"`
	Title         string    `gorm:"column:title;not null"`
	Description   string    `gorm:"column:description;not null"`
	PriceCents    int       `gorm:"column:price_cents;not null"`
	Stock         int       `gorm:"column:stock;not null;default:0"`
	IsActive      bool      `gorm:"column:is_active;not null;default:true"`
	AverageRating float64   `gorm:"column:average_rating;not null;default:0"`
	TotalReviews  int       `gorm:"column:total_reviews;not null;default:0"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
