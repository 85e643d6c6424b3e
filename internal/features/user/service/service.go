package service

import (
	"context"
	"errors"
	"time"

	apperrors "crowdfund-backend/internal/common/errors"
	"crowdfund-backend/internal/features/user/mapper"
	"crowdfund-backend/internal/features/user/models"
	"crowdfund-backend/internal/features/user/repository"
)

type UserService interface {
	GetUser(ctx context.Context, id string) (*models.UserResponse, error)
	// GetOrCreateUser upserts the profile of a signed-in user.
	GetOrCreateUser(ctx context.Context, id, username, firstName, lastName string) (*models.UserResponse, error)
}

type userService struct {
	repo repository.UserRepository
	now  func() time.Time
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *userService) GetUser(ctx context.Context, id string) (*models.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperrors.NewUserNotFoundError(id)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("get user", err)
	}

	return mapper.ToUserResponse(user), nil
}

func (s *userService) GetOrCreateUser(ctx context.Context, id, username, firstName, lastName string) (*models.UserResponse, error) {
	if id == "" {
		return nil, apperrors.NewValidationError("id", "user id is required")
	}

	user, err := s.repo.GetByID(ctx, id)
	if err == nil {
		if !user.SameProfile(username, firstName, lastName) {
			user.Username = username
			user.FirstName = firstName
			user.LastName = lastName
			if err := s.repo.Update(ctx, user); err != nil {
				return nil, apperrors.NewDatabaseError("update user", err)
			}
		}
		return mapper.ToUserResponse(user), nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperrors.NewDatabaseError("get user", err)
	}

	now := s.now()
	newUser := &models.User{
		ID:        id,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.repo.Create(ctx, newUser)
	if errors.Is(err, repository.ErrUserExists) {
		// a concurrent request signed the same user in first
		return s.GetUser(ctx, id)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("create user", err)
	}

	return mapper.ToUserResponse(newUser), nil
}
