package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "crowdfund-backend/internal/common/errors"
)

func validCreate() CampaignCreate {
	return CampaignCreate{
		OwnerName:   "Jane Doe",
		OwnerID:     "u1",
		ProjectName: "Build a cat shelter",
		Goal:        1000,
		About:       "Warm beds for stray cats",
		Category:    "animals",
		Media:       &MediaFile{Name: "cat.png", Data: []byte("png")},
	}
}

func TestCampaignCreate_Validate(t *testing.T) {
	in := validCreate()
	require.NoError(t, in.Validate(time.Now()))

	cases := map[string]func(*CampaignCreate){
		"project_name": func(c *CampaignCreate) { c.ProjectName = "" },
		"goal":         func(c *CampaignCreate) { c.Goal = 0 },
		"about":        func(c *CampaignCreate) { c.About = "no!" },
		"file":         func(c *CampaignCreate) { c.Media = nil },
		"owner_id":     func(c *CampaignCreate) { c.OwnerID = " " },
	}
	for field, mutate := range cases {
		in := validCreate()
		mutate(&in)
		err := in.Validate(time.Now())
		require.Error(t, err, field)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
		assert.Equal(t, field, appErr.Details["field"])
	}
}

func TestCampaignCreate_ValidateTimeline(t *testing.T) {
	in := validCreate()
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)
	in.StartDate, in.EndDate = &start, &end
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, apperrors.HasCode(in.Validate(now), apperrors.ErrCodeValidation))

	onlyEnd := validCreate()
	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	onlyEnd.EndDate = &past
	err := onlyEnd.Validate(now)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))

	sameDay := validCreate()
	today := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	sameDay.EndDate = &today
	assert.NoError(t, sameDay.Validate(now))
}

func TestCampaignCreate_Timeline(t *testing.T) {
	now := time.Date(2026, 10, 19, 15, 4, 5, 0, time.UTC)

	in := validCreate()
	start, end := in.Timeline(now)
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 11, 19, 0, 0, 0, 0, time.UTC), end)

	picked := time.Date(2026, 10, 25, 9, 0, 0, 0, time.UTC)
	in.StartDate = &picked
	start, end = in.Timeline(now)
	assert.Equal(t, time.Date(2026, 10, 25, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 11, 19, 0, 0, 0, 0, time.UTC), end)

	late := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	in.StartDate = &late
	assert.True(t, apperrors.HasCode(in.Validate(now), apperrors.ErrCodeValidation))
}

func TestDonationCreate_Validate(t *testing.T) {
	ok := DonationCreate{DonorID: "u2", CampaignID: "c1", Amount: 50}
	assert.NoError(t, ok.Validate())

	zero := ok
	zero.Amount = 0
	assert.Error(t, zero.Validate())

	negative := ok
	negative.Amount = -1
	assert.Error(t, negative.Validate())
}

func TestCampaign_Progress(t *testing.T) {
	c := Campaign{Goal: 1000, Raised: 250}
	assert.Equal(t, 25, c.Progress())

	c.Raised = 5000
	assert.Equal(t, 100, c.Progress())

	c.Goal = 0
	assert.Equal(t, 0, c.Progress())
}

func TestCampaign_CloneDoesNotAlias(t *testing.T) {
	c := Campaign{Donors: []string{"u1"}}
	cp := c.Clone()
	cp.Donors[0] = "changed"

	assert.Equal(t, "u1", c.Donors[0])
}

func TestCampaign_Normalize(t *testing.T) {
	var c Campaign
	c.Normalize()
	assert.NotNil(t, c.Donors)
	assert.Empty(t, c.Donors)
}

func TestMediaKey(t *testing.T) {
	assert.Equal(t, "folder/cat.png u1 Cat shelter", MediaKey("cat.png", "u1", "Cat shelter"))
}
