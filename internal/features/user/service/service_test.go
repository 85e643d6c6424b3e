package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "crowdfund-backend/internal/common/errors"
	"crowdfund-backend/internal/features/user/models"
	"crowdfund-backend/internal/features/user/repository"
	"crowdfund-backend/internal/features/user/repository/memory"
)

// lateRepo misses the first lookup, as if another request created the
// user between the lookup and the insert.
type lateRepo struct {
	repository.UserRepository
	missed bool
}

func (r *lateRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if !r.missed {
		r.missed = true
		return nil, repository.ErrUserNotFound
	}
	return r.UserRepository.GetByID(ctx, id)
}

func TestUserService_GetOrCreateUser(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(memory.NewUserRepository())

	created, err := svc.GetOrCreateUser(ctx, "42", "jane", "Jane", "Doe")
	require.NoError(t, err)
	assert.Equal(t, "42", created.ID)
	assert.Equal(t, "Jane Doe", created.DisplayName)

	updated, err := svc.GetOrCreateUser(ctx, "42", "jane", "Janet", "")
	require.NoError(t, err)
	assert.Equal(t, "Janet", updated.DisplayName)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	got, err := svc.GetUser(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "Janet", got.FirstName)
}

func TestUserService_Errors(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(memory.NewUserRepository())

	_, err := svc.GetUser(ctx, "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUserNotFound))

	_, err = svc.GetOrCreateUser(ctx, "", "", "", "")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))
}

func TestUserService_GetOrCreateUser_LostRace(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewUserRepository()
	require.NoError(t, inner.Create(ctx, &models.User{ID: "42", FirstName: "Jane"}))

	svc := NewUserService(&lateRepo{UserRepository: inner})
	got, err := svc.GetOrCreateUser(ctx, "42", "jane", "Jane", "")
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.FirstName)
}
