package repository

import (
	"context"

	"postboard/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	ListByUserID(ctx context.Context, userID uint) ([]models.Post, error)
}

type postRepository struct {
	base
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{base{db: db}}
}

// Create inserts post. The store's foreign key is the only check that
// post.UserID names an existing user.
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.run(ctx, "create", "posts", func(db *gorm.DB) error {
		return db.Create(post).Error
	})
}

// ListByUserID returns the posts owned by userID, oldest first. An unknown
// user simply has no posts.
func (r *postRepository) ListByUserID(ctx context.Context, userID uint) ([]models.Post, error) {
	posts := make([]models.Post, 0)
	err := r.run(ctx, "list_by_user", "posts", func(db *gorm.DB) error {
		return db.Where("user_id = ?", userID).Order("id ASC").Find(&posts).Error
	})
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}
