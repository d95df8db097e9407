package service

import (
	"context"

	"postboard/internal/models"
	"postboard/internal/repository"
)

type PostService struct {
	postRepo repository.PostRepository
}

func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

// CreatePost stores message as a post owned by userID. Whether the user
// exists is left to the store's foreign key.
func (s *PostService) CreatePost(ctx context.Context, userID uint, message string) (*models.Post, error) {
	post := &models.Post{Message: message, UserID: &userID}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) ListPostsForUser(ctx context.Context, userID uint) ([]models.Post, error) {
	return s.postRepo.ListByUserID(ctx, userID)
}
