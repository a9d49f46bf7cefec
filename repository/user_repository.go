package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/wasend/wasend/models"
	"gorm.io/gorm"
)

// UserRepositoryImpl implements the UserRepository interface
type UserRepositoryImpl struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

// ByID retrieves a user profile by ID. Missing users resolve to nil, not an
// error: campaign ownership carries no referential integrity.
func (r *UserRepositoryImpl) ByID(ctx context.Context, id uint) (*models.User, error) {
	db := r.db
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		db = tx
	}

	var user models.User
	err := db.Last(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by ID %d: %w", id, err)
	}

	return &user, nil
}
