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

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetUserByEmail returns nil, nil when no account uses email.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.userRepo.GetByEmail(ctx, email)
}

// CreateUser stores an already hashed user. A taken email is a Conflict.
func (s *UserService) CreateUser(ctx context.Context, user *models.User) error {
	existing, err := s.userRepo.GetByEmail(ctx, user.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return models.NewConflictError("User with this email already exists")
	}
	return s.userRepo.Create(ctx, user)
}

func (s *UserService) ListUsersByPostCount(ctx context.Context, page models.Page) (*models.Paged[models.User], error) {
	users, total, err := s.userRepo.ListByPostCount(ctx, page)
	if err != nil {
		return nil, err
	}
	return paged(users, total, page), nil
}
