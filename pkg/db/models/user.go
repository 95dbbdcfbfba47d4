package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/marketloop/marketloop-backend/pkg/enums"
)

// User mirrors the identity service's record. This core never writes users;
// the row exists for foreign keys and read projections.
type User struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string         `gorm:"column:name;not null"`
	Email     string         `gorm:"column:email;not null;uniqueIndex"`
	Role      enums.UserRole `gorm:"column:role;type:user_role;not null;default:'buyer'"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
