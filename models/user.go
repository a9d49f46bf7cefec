package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the dashboard account that owns campaigns. Identity and
// authentication live outside this service; the engine only reads the
// profile to resolve the effective niche for a batch.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_users_uuid" json:"uuid"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Niche     string    `gorm:"size:255" json:"niche,omitempty"`
	IsActive  *bool     `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName returns the table name for the model
func (User) TableName() string {
	return "users"
}

// HasNiche reports whether the profile carries its own segmentation label
func (u *User) HasNiche() bool {
	return u != nil && u.Niche != ""
}

// UserFilter represents filter criteria for users
type UserFilter struct {
	ID       *uint      `json:"id,omitempty"`
	UUID     *uuid.UUID `json:"uuid,omitempty"`
	Niche    *string    `json:"niche,omitempty"`
	IsActive *bool      `json:"is_active,omitempty"`
}
