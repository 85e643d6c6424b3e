package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"crowdfund-backend/internal/features/user/models"
	"crowdfund-backend/internal/features/user/repository"
)

const userKeyPrefix = "user:"

type userRepository struct {
	client redis.UniversalClient
}

// NewUserRepository stores each profile as one JSON string under user:<id>.
func NewUserRepository(client redis.UniversalClient) repository.UserRepository {
	return &userRepository{client: client}
}

func userKey(id string) string { return userKeyPrefix + id }

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	ok, err := r.write(ctx, user, redis.SetArgs{Mode: "NX"})
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrUserExists
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	raw, err := r.client.Get(ctx, userKey(id)).Bytes()
	if err == redis.Nil {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}

	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", id, err)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	prev := user.UpdatedAt
	user.UpdatedAt = time.Now().UTC()
	ok, err := r.write(ctx, user, redis.SetArgs{Mode: "XX"})
	if err != nil || !ok {
		user.UpdatedAt = prev
	}
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrUserNotFound
	}
	return nil
}

// write sets the key under the NX or XX condition in args and reports
// whether the condition held.
func (r *userRepository) write(ctx context.Context, user *models.User, args redis.SetArgs) (bool, error) {
	raw, err := json.Marshal(user)
	if err != nil {
		return false, fmt.Errorf("encode user %s: %w", user.ID, err)
	}
	err = r.client.SetArgs(ctx, userKey(user.ID), raw, args).Err()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("write user %s: %w", user.ID, err)
	}
	return true, nil
}
