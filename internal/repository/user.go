package repository

import (
	"context"

	"postboard/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	List(ctx context.Context) ([]models.User, error)
}

type userRepository struct {
	base
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{base{db: db}}
}

// Create inserts user and fills in its assigned ID.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.run(ctx, "create", "users", func(db *gorm.DB) error {
		return db.Create(user).Error
	})
}

// List returns every user ordered by ID.
func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	err := r.run(ctx, "list", "users", func(db *gorm.DB) error {
		return db.Order("id ASC").Find(&users).Error
	})
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}
