// Package service holds the use cases behind the HTTP handlers.
package service

import (
	"context"

	"postboard/internal/models"
	"postboard/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// CreateUser stores a new user with the given username.
func (s *UserService) CreateUser(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{Username: username}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}
