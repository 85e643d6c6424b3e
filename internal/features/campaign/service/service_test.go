package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowdfund-backend/internal/common/cache"
	apperrors "crowdfund-backend/internal/common/errors"
	"crowdfund-backend/internal/features/campaign/events"
	"crowdfund-backend/internal/features/campaign/models"
	"crowdfund-backend/internal/features/campaign/repository"
	"crowdfund-backend/internal/features/campaign/repository/memory"
)

type countingRepo struct {
	repository.CampaignRepository
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]error
}

func newCountingRepo() *countingRepo {
	return &countingRepo{
		CampaignRepository: memory.NewCampaignRepository(),
		calls:              map[string]int{},
		fail:               map[string]error{},
	}
}

func (r *countingRepo) hit(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[name]++
	return r.fail[name]
}

func (r *countingRepo) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		n += c
	}
	return n
}

func (r *countingRepo) GetAll(ctx context.Context) ([]models.CampaignRecord, error) {
	if err := r.hit("GetAll"); err != nil {
		return nil, err
	}
	return r.CampaignRepository.GetAll(ctx)
}

func (r *countingRepo) GetByID(ctx context.Context, id string) (*models.CampaignRecord, error) {
	if err := r.hit("GetByID"); err != nil {
		return nil, err
	}
	return r.CampaignRepository.GetByID(ctx, id)
}

func (r *countingRepo) Insert(ctx context.Context, c *models.Campaign) (string, error) {
	if err := r.hit("Insert"); err != nil {
		return "", err
	}
	return r.CampaignRepository.Insert(ctx, c)
}

func (r *countingRepo) Update(ctx context.Context, id string, m repository.Mutation) (*models.CampaignRecord, error) {
	if err := r.hit("Update"); err != nil {
		return nil, err
	}
	return r.CampaignRepository.Update(ctx, id, m)
}

func (r *countingRepo) QueryWhere(ctx context.Context, q repository.Query) ([]models.CampaignRecord, error) {
	if err := r.hit("QueryWhere"); err != nil {
		return nil, err
	}
	return r.CampaignRepository.QueryWhere(ctx, q)
}

type fakeObjects struct {
	mu        sync.Mutex
	uploads   []string
	urlCalls  int
	uploadErr error
}

func (f *fakeObjects) Upload(_ context.Context, key string, _ []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, key)
	return f.uploadErr
}

func (f *fakeObjects) URL(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urlCalls++
	return "https://cdn.test/" + key, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e models.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

var fixedNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func newTestService(t *testing.T) (*campaignService, *countingRepo, *fakeObjects, *recordingPublisher) {
	t.Helper()
	repo := newCountingRepo()
	objects := &fakeObjects{}
	pub := &recordingPublisher{}
	svc := NewCampaignService(Dependencies{Repo: repo, Objects: objects, Events: pub}).(*campaignService)
	svc.now = func() time.Time { return fixedNow }
	return svc, repo, objects, pub
}

func validCreate(owner string) models.CampaignCreate {
	return models.CampaignCreate{
		OwnerName:   "Jane Doe",
		OwnerID:     owner,
		ProjectName: "Cat shelter",
		Goal:        1000,
		About:       "Warm beds for cats",
		Category:    "animals",
		Media:       &models.MediaFile{Name: "cat.png", Data: []byte("png")},
	}
}

func TestCreateCampaign(t *testing.T) {
	ctx := context.Background()
	svc, _, objects, pub := newTestService(t)

	rec, err := svc.CreateCampaign(ctx, validCreate("u1"))
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, []string{"folder/cat.png u1 Cat shelter"}, objects.uploads)
	assert.Equal(t, "https://cdn.test/folder/cat.png u1 Cat shelter", rec.Data.Image)
	assert.Equal(t, int64(0), rec.Data.Raised)
	assert.Equal(t, []string{}, rec.Data.Donors)
	assert.Equal(t, "Jane Doe", rec.Data.Owner)
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), rec.Data.StartDate)
	assert.Equal(t, time.Date(2026, 11, 19, 0, 0, 0, 0, time.UTC), rec.Data.EndDate)

	require.Len(t, pub.events, 1)
	assert.Equal(t, models.EventCampaignCreated, pub.events[0].Type)
	assert.Equal(t, rec.ID, pub.events[0].CampaignID)

	owned, err := svc.ListCampaignsByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, rec.ID, owned[0].ID)
	assert.Equal(t, int64(0), owned[0].Data.Raised)
	assert.Empty(t, owned[0].Data.Donors)
}

func TestCreateCampaign_InvalidMakesNoRemoteCalls(t *testing.T) {
	cases := map[string]func(*models.CampaignCreate){
		"zero goal":     func(c *models.CampaignCreate) { c.Goal = 0 },
		"negative goal": func(c *models.CampaignCreate) { c.Goal = -5 },
		"empty name":    func(c *models.CampaignCreate) { c.ProjectName = "" },
		"missing media": func(c *models.CampaignCreate) { c.Media = nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			svc, repo, objects, _ := newTestService(t)
			in := validCreate("u1")
			mutate(&in)

			rec, err := svc.CreateCampaign(context.Background(), in)
			assert.Nil(t, rec)
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))
			assert.Zero(t, repo.total())
			assert.Empty(t, objects.uploads)
			assert.Zero(t, objects.urlCalls)
		})
	}
}

func TestCreateCampaign_UploadFailureWritesNothing(t *testing.T) {
	svc, repo, objects, pub := newTestService(t)
	objects.uploadErr = errors.New("bucket unavailable")

	rec, err := svc.CreateCampaign(context.Background(), validCreate("u1"))
	assert.Nil(t, rec)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeStorageError))
	assert.Zero(t, objects.urlCalls)
	assert.Zero(t, repo.total())
	assert.Empty(t, pub.events)
}

func TestCreateCampaign_InsertFailure(t *testing.T) {
	svc, repo, objects, pub := newTestService(t)
	repo.fail["Insert"] = errors.New("quota exceeded")

	rec, err := svc.CreateCampaign(context.Background(), validCreate("u1"))
	assert.Nil(t, rec)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDatabaseError))
	assert.Len(t, objects.uploads, 1)
	assert.Empty(t, pub.events)
}

func TestDonate_Scenario(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, pub := newTestService(t)

	id, err := repo.CampaignRepository.Insert(ctx, &models.Campaign{OwnerID: "o", Goal: 1000, Raised: 200, Donors: []string{"u1"}})
	require.NoError(t, err)

	rec, err := svc.Donate(ctx, models.DonationCreate{DonorID: "u2", CampaignID: id, Amount: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(250), rec.Data.Raised)
	assert.Equal(t, []string{"u1", "u2"}, rec.Data.Donors)

	rec, err = svc.Donate(ctx, models.DonationCreate{DonorID: "u2", CampaignID: id, Amount: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(300), rec.Data.Raised)
	assert.Equal(t, []string{"u1", "u2", "u2"}, rec.Data.Donors)

	require.Len(t, pub.events, 2)
	assert.Equal(t, models.EventDonationReceived, pub.events[1].Type)
	assert.Equal(t, int64(300), pub.events[1].Raised)
	assert.Equal(t, "o", pub.events[1].OwnerID)

	donated, err := svc.ListDonationsByDonor(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, donated, 1)
	assert.Equal(t, id, donated[0].ID)
}

func TestDonate_MissingCampaignIsSilentNoop(t *testing.T) {
	svc, repo, _, pub := newTestService(t)

	rec, err := svc.Donate(context.Background(), models.DonationCreate{DonorID: "u2", CampaignID: "nope", Amount: 50})
	assert.NoError(t, err)
	assert.Nil(t, rec)
	assert.Equal(t, 1, repo.calls["GetByID"])
	assert.Zero(t, repo.calls["Update"])
	assert.Empty(t, pub.events)
}

func TestDonate_InvalidAmount(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	for _, amount := range []int64{0, -10} {
		_, err := svc.Donate(context.Background(), models.DonationCreate{DonorID: "u2", CampaignID: "c", Amount: amount})
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))
	}
	assert.Zero(t, repo.total())
}

func TestDonate_ConcurrentUpdateMapsToConflict(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newTestService(t)
	id, err := repo.CampaignRepository.Insert(ctx, &models.Campaign{Goal: 10})
	require.NoError(t, err)
	repo.fail["Update"] = repository.ErrConcurrentUpdate

	_, err = svc.Donate(ctx, models.DonationCreate{DonorID: "u2", CampaignID: id, Amount: 1})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConflict))
}

func TestUpdateCampaign_RoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _, objects, _ := newTestService(t)

	created, err := svc.CreateCampaign(ctx, validCreate("u1"))
	require.NoError(t, err)
	_, err = svc.Donate(ctx, models.DonationCreate{DonorID: "u9", CampaignID: created.ID, Amount: 40})
	require.NoError(t, err)

	before, err := svc.GetCampaign(ctx, created.ID)
	require.NoError(t, err)

	_, err = svc.UpdateCampaign(ctx, models.CampaignUpdate{
		CampaignID:  created.ID,
		OwnerID:     "u1",
		ProjectName: "Dog shelter",
		About:       "Now for dogs",
		Category:    "pets",
		Media:       &models.MediaFile{Name: "cat.png", Data: []byte("png")},
	})
	require.NoError(t, err)

	after, err := svc.GetCampaign(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dog shelter", after.Data.ProjectName)
	assert.Equal(t, "Now for dogs", after.Data.About)
	assert.Equal(t, "pets", after.Data.Category)
	assert.Equal(t, "https://cdn.test/folder/cat.png u1 Dog shelter", after.Data.Image)

	assert.Equal(t, before.Data.Goal, after.Data.Goal)
	assert.Equal(t, before.Data.Raised, after.Data.Raised)
	assert.Equal(t, before.Data.Donors, after.Data.Donors)
	assert.Equal(t, before.Data.StartDate, after.Data.StartDate)
	assert.Equal(t, before.Data.EndDate, after.Data.EndDate)

	// media is uploaded again on every edit
	assert.Len(t, objects.uploads, 2)
}

func TestUpdateCampaign_MissingAndNotOwner(t *testing.T) {
	ctx := context.Background()
	svc, repo, objects, _ := newTestService(t)

	edit := models.CampaignUpdate{
		CampaignID:  "nope",
		OwnerID:     "u1",
		ProjectName: "Dog shelter",
		About:       "Now for dogs",
		Media:       &models.MediaFile{Name: "dog.png", Data: []byte("png")},
	}
	rec, err := svc.UpdateCampaign(ctx, edit)
	assert.NoError(t, err)
	assert.Nil(t, rec)
	assert.Len(t, objects.uploads, 1)
	assert.Zero(t, repo.calls["Update"])

	created, err := svc.CreateCampaign(ctx, validCreate("u1"))
	require.NoError(t, err)

	edit.CampaignID = created.ID
	edit.OwnerID = "intruder"
	_, err = svc.UpdateCampaign(ctx, edit)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotOwner))
	assert.Zero(t, repo.calls["Update"])
}

func TestGetCampaign(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.GetCampaign(context.Background(), "nope")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeCampaignNotFound))

	_, err = svc.GetCampaign(context.Background(), "")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))
}

func TestListAllCampaigns_Failure(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	repo.fail["GetAll"] = errors.New("permission denied")

	records, err := svc.ListAllCampaigns(context.Background())
	assert.Nil(t, records)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDatabaseError))
}

func TestListAllCampaigns_CachedAndInvalidated(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newCountingRepo()
	svc := NewCampaignService(Dependencies{
		Repo:    repo,
		Objects: &fakeObjects{},
		Cache:   cache.NewCacheService(client),
		Events:  events.NewStreamPublisher(client, "test:events", 0),
		ListTTL: time.Minute,
	})

	first, err := svc.ListAllCampaigns(ctx)
	require.NoError(t, err)
	assert.Empty(t, first)
	_, err = svc.ListAllCampaigns(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls["GetAll"])

	_, err = svc.CreateCampaign(ctx, validCreate("u1"))
	require.NoError(t, err)

	all, err := svc.ListAllCampaigns(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, 2, repo.calls["GetAll"])

	n, err := client.XLen(ctx, "test:events").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

type staticRanking []string

func (r staticRanking) Top(_ context.Context, limit int) ([]string, error) {
	if len(r) > limit {
		return r[:limit], nil
	}
	return r, nil
}

func TestTopCampaigns(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newTestService(t)

	low, _ := repo.CampaignRepository.Insert(ctx, &models.Campaign{Raised: 10})
	high, _ := repo.CampaignRepository.Insert(ctx, &models.Campaign{Raised: 90})
	mid, _ := repo.CampaignRepository.Insert(ctx, &models.Campaign{Raised: 50})

	top, err := svc.TopCampaigns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, high, top[0].ID)
	assert.Equal(t, mid, top[1].ID)

	svc.ranking = staticRanking{low, "gone", high}
	top, err = svc.TopCampaigns(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, low, top[0].ID)
	assert.Equal(t, high, top[1].ID)

	_, err = svc.TopCampaigns(ctx, 0)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))
}
