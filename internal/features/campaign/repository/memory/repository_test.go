package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowdfund-backend/internal/features/campaign/models"
	"crowdfund-backend/internal/features/campaign/repository"
)

func TestRepository_InsertGet(t *testing.T) {
	ctx := context.Background()
	repo := NewCampaignRepository()

	id, err := repo.Insert(ctx, &models.Campaign{OwnerID: "u1", ProjectName: "Cats", Goal: 1000})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rec, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, "Cats", rec.Data.ProjectName)
	assert.NotNil(t, rec.Data.Donors)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrCampaignNotFound)
}

func TestRepository_ReturnedRecordsDoNotAlias(t *testing.T) {
	ctx := context.Background()
	repo := NewCampaignRepository()

	id, err := repo.Insert(ctx, &models.Campaign{OwnerID: "u1", Donors: []string{"u9"}})
	require.NoError(t, err)

	rec, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	rec.Data.Donors[0] = "tampered"

	again, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"u9"}, again.Data.Donors)
}

func TestRepository_DonationScenario(t *testing.T) {
	ctx := context.Background()
	repo := NewCampaignRepository()

	id, err := repo.Insert(ctx, &models.Campaign{Goal: 1000, Raised: 200, Donors: []string{"u1"}})
	require.NoError(t, err)

	rec, err := repo.Update(ctx, id, repository.Donation("u2", 50))
	require.NoError(t, err)
	assert.Equal(t, int64(250), rec.Data.Raised)
	assert.Equal(t, []string{"u1", "u2"}, rec.Data.Donors)

	rec, err = repo.Update(ctx, id, repository.Donation("u2", 50))
	require.NoError(t, err)
	assert.Equal(t, int64(300), rec.Data.Raised)
	assert.Equal(t, []string{"u1", "u2", "u2"}, rec.Data.Donors)

	_, err = repo.Update(ctx, "missing", repository.Donation("u2", 50))
	assert.ErrorIs(t, err, repository.ErrCampaignNotFound)
}

func TestRepository_ConcurrentDonations(t *testing.T) {
	ctx := context.Background()
	repo := NewCampaignRepository()

	id, err := repo.Insert(ctx, &models.Campaign{Goal: 1000})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Update(ctx, id, repository.Donation("u", 2))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rec, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(100), rec.Data.Raised)
	assert.Len(t, rec.Data.Donors, 50)
}

func TestRepository_QueryWhere(t *testing.T) {
	ctx := context.Background()
	repo := NewCampaignRepository()

	a, err := repo.Insert(ctx, &models.Campaign{OwnerID: "u1", ProjectName: "A"})
	require.NoError(t, err)
	_, err = repo.Insert(ctx, &models.Campaign{OwnerID: "u2", ProjectName: "B"})
	require.NoError(t, err)
	_, err = repo.Update(ctx, a, repository.Donation("u3", 10))
	require.NoError(t, err)

	byOwner, err := repo.QueryWhere(ctx, repository.WhereOwner("u1"))
	require.NoError(t, err)
	require.Len(t, byOwner, 1)
	assert.Equal(t, a, byOwner[0].ID)

	byDonor, err := repo.QueryWhere(ctx, repository.WhereDonor("u3"))
	require.NoError(t, err)
	require.Len(t, byDonor, 1)
	assert.Equal(t, a, byDonor[0].ID)

	none, err := repo.QueryWhere(ctx, repository.WhereDonor("nobody"))
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = repo.QueryWhere(ctx, repository.Query{Field: "goal", Op: repository.OpEqual, Value: "1"})
	assert.ErrorIs(t, err, repository.ErrUnsupportedQuery)
}

func TestRepository_GetAllKeepsInsertOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewCampaignRepository()

	first, _ := repo.Insert(ctx, &models.Campaign{ProjectName: "first"})
	second, _ := repo.Insert(ctx, &models.Campaign{ProjectName: "second"})

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first, all[0].ID)
	assert.Equal(t, second, all[1].ID)
}
