package crowdfundclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"crowdfund-backend/internal/common/middleware"
	campaignhttp "crowdfund-backend/internal/features/campaign/delivery/http"
	"crowdfund-backend/internal/features/campaign/models"
	"crowdfund-backend/internal/features/campaign/repository/memory"
	"crowdfund-backend/internal/features/campaign/service"
	"crowdfund-backend/internal/features/campaign/syncstore"
	usermemory "crowdfund-backend/internal/features/user/repository/memory"
	userservice "crowdfund-backend/internal/features/user/service"
	"crowdfund-backend/internal/platform/storage"
	"crowdfund-backend/internal/platform/telegram"
)

const testBotToken = "123456:TEST-TOKEN"

func newAPI(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	objects, err := storage.NewFileStore(t.TempDir(), "http://media.test")
	require.NoError(t, err)
	users := userservice.NewUserService(usermemory.NewUserRepository())
	campaigns := service.NewCampaignService(service.Dependencies{
		Repo:    memory.NewCampaignRepository(),
		Objects: objects,
	})

	logger := zerolog.Nop()
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.ErrorHandler(logger),
		middleware.TelegramAuth(testBotToken, time.Hour, logger),
		middleware.AutoCreateUser(users, logger),
	)
	campaignhttp.NewCampaignHandler(campaigns, users, 1<<20, logger).
		RegisterRoutes(router.Group("/api/v1"), middleware.RequireAuth(logger))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv.URL + "/api/v1"
}

func clientFor(t *testing.T, base string, id int64, name string) *Client {
	t.Helper()
	raw, err := telegram.SignInitData(initdata.User{ID: id, FirstName: name}, testBotToken, time.Now())
	require.NoError(t, err)
	return New(base, WithInitData(raw))
}

func media(name string) *models.MediaFile {
	return &models.MediaFile{Name: name, ContentType: "image/png", Data: []byte("png")}
}

func TestClient_StoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	base := newAPI(t)

	owner := syncstore.New(clientFor(t, base, 42, "Jane"))
	donor := syncstore.New(clientFor(t, base, 7, "Bob"))

	created, err := owner.CreateCampaign(ctx, models.CampaignCreate{
		OwnerID:     "42",
		ProjectName: "Cat shelter",
		Goal:        300,
		About:       "Warm beds for stray cats",
		Media:       media("cat.png"),
	}).Wait(ctx)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "Jane", created.Data.Owner)
	assert.Equal(t, syncstore.StatusSucceeded, owner.Snapshot().Status)

	for _, amount := range []int64{100, 150} {
		_, err := donor.Donate(ctx, models.DonationCreate{DonorID: "7", CampaignID: created.ID, Amount: amount}).Wait(ctx)
		require.NoError(t, err)
	}
	current := donor.Snapshot().CurrentCampaign
	require.NotNil(t, current)
	assert.Equal(t, int64(250), current.Data.Raised)
	assert.Equal(t, []string{"7", "7"}, current.Data.Donors)

	missing, err := donor.Donate(ctx, models.DonationCreate{DonorID: "7", CampaignID: "nope", Amount: 5}).Wait(ctx)
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = donor.ListDonationsByDonor(ctx, "7").Wait(ctx)
	require.NoError(t, err)
	require.Len(t, donor.Snapshot().UserDonations, 1)

	_, err = owner.ListCampaignsByOwner(ctx, "42").Wait(ctx)
	require.NoError(t, err)
	require.Len(t, owner.Snapshot().UserCampaigns, 1)

	updated, err := owner.UpdateCampaign(ctx, models.CampaignUpdate{
		CampaignID:  created.ID,
		OwnerID:     "42",
		ProjectName: "Cat palace",
		About:       "Bigger beds",
		Media:       media("palace.png"),
	}).Wait(ctx)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Cat palace", updated.Data.ProjectName)
	assert.Equal(t, int64(250), updated.Data.Raised)

	all, err := owner.ListAllCampaigns(ctx).Wait(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Cat palace", owner.Snapshot().AllCampaigns[0].Data.ProjectName)
}

func TestClient_Errors(t *testing.T) {
	ctx := context.Background()
	base := newAPI(t)

	_, err := New(base).GetCampaign(ctx, "nope")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "CAMPAIGN_NOT_FOUND", apiErr.Code)
	assert.NotEmpty(t, apiErr.RequestID)

	_, err = New(base).Donate(ctx, models.DonationCreate{CampaignID: "x", Amount: 1})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	store := syncstore.New(New(base))
	_, err = store.GetCampaign(ctx, "nope").Wait(ctx)
	require.Error(t, err)
	snap := store.Snapshot()
	assert.Equal(t, syncstore.StatusFailed, snap.Status)
	assert.Nil(t, snap.CurrentCampaign)
}

func TestClient_NonEnvelopeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).ListAllCampaigns(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Empty(t, apiErr.Code)
}
