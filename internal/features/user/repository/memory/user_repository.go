package memory

import (
	"context"
	"sync"
	"time"

	"crowdfund-backend/internal/features/user/models"
	"crowdfund-backend/internal/features/user/repository"
)

type userRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewUserRepository() repository.UserRepository {
	return &userRepository{users: make(map[string]models.User)}
}

func (r *userRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; ok {
		return repository.ErrUserExists
	}
	r.users[user.ID] = *user
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func (r *userRepository) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	user.UpdatedAt = time.Now().UTC()
	r.users[user.ID] = *user
	return nil
}
