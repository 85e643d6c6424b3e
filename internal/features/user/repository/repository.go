package repository

import (
	"context"
	"errors"

	"crowdfund-backend/internal/features/user/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// UserRepository stores profiles by Telegram id. Create fails with
// ErrUserExists and Update with ErrUserNotFound instead of overwriting or
// inserting.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}
