package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"crowdfund-backend/internal/common/cache"
	apperrors "crowdfund-backend/internal/common/errors"
	"crowdfund-backend/internal/common/logger"
	"crowdfund-backend/internal/features/campaign/events"
	"crowdfund-backend/internal/features/campaign/models"
	"crowdfund-backend/internal/features/campaign/repository"
	"crowdfund-backend/internal/platform/storage"
)

const (
	DefaultTopLimit = 10
	MaxTopLimit     = 100
)

type CampaignService interface {
	ListAllCampaigns(ctx context.Context) ([]models.CampaignRecord, error)
	CreateCampaign(ctx context.Context, in models.CampaignCreate) (*models.CampaignRecord, error)
	// Donate returns (nil, nil) when the campaign does not exist.
	Donate(ctx context.Context, in models.DonationCreate) (*models.CampaignRecord, error)
	GetCampaign(ctx context.Context, id string) (*models.CampaignRecord, error)
	// UpdateCampaign returns (nil, nil) when the campaign does not exist.
	UpdateCampaign(ctx context.Context, in models.CampaignUpdate) (*models.CampaignRecord, error)
	ListCampaignsByOwner(ctx context.Context, ownerID string) ([]models.CampaignRecord, error)
	ListDonationsByDonor(ctx context.Context, donorID string) ([]models.CampaignRecord, error)
	TopCampaigns(ctx context.Context, limit int) ([]models.CampaignRecord, error)
}

// Ranking orders campaign ids by amount raised.
type Ranking interface {
	Top(ctx context.Context, limit int) ([]string, error)
}

// Dependencies wires a CampaignService. Cache, Events and Ranking are
// optional.
type Dependencies struct {
	Repo    repository.CampaignRepository
	Objects storage.ObjectStore
	Cache   *cache.CacheService
	Events  events.Publisher
	Ranking Ranking
	ListTTL time.Duration
}

type campaignService struct {
	repo    repository.CampaignRepository
	objects storage.ObjectStore
	cache   *cache.CacheService
	events  events.Publisher
	ranking Ranking
	listTTL time.Duration
	log     zerolog.Logger
	now     func() time.Time
}

func NewCampaignService(deps Dependencies) CampaignService {
	publisher := deps.Events
	if publisher == nil {
		publisher = events.NewNopPublisher()
	}
	ttl := deps.ListTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &campaignService{
		repo:    deps.Repo,
		objects: deps.Objects,
		cache:   deps.Cache,
		events:  publisher,
		ranking: deps.Ranking,
		listTTL: ttl,
		log:     logger.Component("campaign_service"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *campaignService) ListAllCampaigns(ctx context.Context) ([]models.CampaignRecord, error) {
	load := func() (interface{}, error) {
		return s.repo.GetAll(ctx)
	}

	if s.cache == nil {
		records, err := s.repo.GetAll(ctx)
		if err != nil {
			return nil, repoError("list campaigns", err)
		}
		return records, nil
	}

	var records []models.CampaignRecord
	if err := s.cache.GetOrSet(ctx, cache.KeyAllCampaigns, &records, s.listTTL, load); err != nil {
		return nil, repoError("list campaigns", err)
	}
	if records == nil {
		records = []models.CampaignRecord{}
	}
	return records, nil
}

func (s *campaignService) CreateCampaign(ctx context.Context, in models.CampaignCreate) (*models.CampaignRecord, error) {
	var (
		key    string
		url    string
		record *models.CampaignRecord
	)

	err := runPipeline(ctx, s.log, "create_campaign",
		stage{name: "validate", run: func(context.Context) error {
			return in.Validate(s.now())
		}},
		stage{name: "upload", run: func(ctx context.Context) error {
			key = models.MediaKey(in.Media.Name, in.OwnerID, in.ProjectName)
			if err := s.objects.Upload(ctx, key, in.Media.Data); err != nil {
				return apperrors.NewStorageError("upload media", err)
			}
			return nil
		}},
		stage{name: "resolve_url", run: func(ctx context.Context) error {
			var err error
			if url, err = s.objects.URL(ctx, key); err != nil {
				return apperrors.NewStorageError("resolve media url", err)
			}
			return nil
		}},
		stage{name: "insert", run: func(ctx context.Context) error {
			now := s.now()
			start, end := in.Timeline(now)
			campaign := models.Campaign{
				Owner:       in.OwnerName,
				OwnerID:     in.OwnerID,
				ProjectName: in.ProjectName,
				About:       in.About,
				Goal:        in.Goal,
				Raised:      0,
				Category:    in.Category,
				StartDate:   start,
				EndDate:     end,
				Image:       url,
				Donors:      []string{},
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			id, err := s.repo.Insert(ctx, &campaign)
			if err != nil {
				return repoError("insert campaign", err)
			}
			record = &models.CampaignRecord{ID: id, Data: campaign}
			return nil
		}},
		stage{name: "publish", run: func(ctx context.Context) error {
			s.afterWrite(ctx, models.Event{
				Type:       models.EventCampaignCreated,
				CampaignID: record.ID,
				OwnerID:    in.OwnerID,
				Raised:     0,
			})
			return nil
		}},
	)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("campaign_id", record.ID).Str("owner_id", in.OwnerID).Msg("campaign created")
	return record, nil
}

func (s *campaignService) Donate(ctx context.Context, in models.DonationCreate) (*models.CampaignRecord, error) {
	var record *models.CampaignRecord

	err := runPipeline(ctx, s.log, "donate",
		stage{name: "validate", run: func(context.Context) error {
			return in.Validate()
		}},
		stage{name: "lookup", run: func(ctx context.Context) error {
			_, err := s.repo.GetByID(ctx, in.CampaignID)
			if errors.Is(err, repository.ErrCampaignNotFound) {
				s.log.Debug().Str("campaign_id", in.CampaignID).Msg("donation to missing campaign ignored")
				return errHalt
			}
			if err != nil {
				return repoError("get campaign", err)
			}
			return nil
		}},
		stage{name: "apply", run: func(ctx context.Context) error {
			updated, err := s.repo.Update(ctx, in.CampaignID, repository.Donation(in.DonorID, in.Amount))
			if errors.Is(err, repository.ErrCampaignNotFound) {
				return errHalt
			}
			if err != nil {
				return repoError("apply donation", err)
			}
			record = updated
			return nil
		}},
		stage{name: "publish", run: func(ctx context.Context) error {
			s.afterWrite(ctx, models.Event{
				Type:       models.EventDonationReceived,
				CampaignID: record.ID,
				OwnerID:    record.Data.OwnerID,
				DonorID:    in.DonorID,
				Amount:     in.Amount,
				Raised:     record.Data.Raised,
			})
			return nil
		}},
	)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *campaignService) GetCampaign(ctx context.Context, id string) (*models.CampaignRecord, error) {
	if id == "" {
		return nil, apperrors.NewValidationError("campaign_id", "campaign id is required")
	}
	record, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrCampaignNotFound) {
		return nil, apperrors.NewCampaignNotFoundError(id)
	}
	if err != nil {
		return nil, repoError("get campaign", err)
	}
	return record, nil
}

func (s *campaignService) UpdateCampaign(ctx context.Context, in models.CampaignUpdate) (*models.CampaignRecord, error) {
	var (
		key    string
		url    string
		record *models.CampaignRecord
	)

	err := runPipeline(ctx, s.log, "update_campaign",
		stage{name: "validate", run: func(context.Context) error {
			return in.Validate()
		}},
		stage{name: "upload", run: func(ctx context.Context) error {
			key = models.MediaKey(in.Media.Name, in.OwnerID, in.ProjectName)
			if err := s.objects.Upload(ctx, key, in.Media.Data); err != nil {
				return apperrors.NewStorageError("upload media", err)
			}
			return nil
		}},
		stage{name: "resolve_url", run: func(ctx context.Context) error {
			var err error
			if url, err = s.objects.URL(ctx, key); err != nil {
				return apperrors.NewStorageError("resolve media url", err)
			}
			return nil
		}},
		stage{name: "lookup", run: func(ctx context.Context) error {
			existing, err := s.repo.GetByID(ctx, in.CampaignID)
			if errors.Is(err, repository.ErrCampaignNotFound) {
				s.log.Debug().Str("campaign_id", in.CampaignID).Msg("edit of missing campaign ignored")
				return errHalt
			}
			if err != nil {
				return repoError("get campaign", err)
			}
			if existing.Data.OwnerID != in.OwnerID {
				return apperrors.NewNotOwnerError(in.CampaignID).WithUserID(in.OwnerID)
			}
			return nil
		}},
		stage{name: "apply", run: func(ctx context.Context) error {
			updated, err := s.repo.Update(ctx, in.CampaignID, repository.EditFields(models.CampaignEdit{
				ProjectName: in.ProjectName,
				About:       in.About,
				Image:       url,
				Category:    in.Category,
			}))
			if errors.Is(err, repository.ErrCampaignNotFound) {
				return errHalt
			}
			if err != nil {
				return repoError("update campaign", err)
			}
			record = updated
			return nil
		}},
		stage{name: "publish", run: func(ctx context.Context) error {
			s.afterWrite(ctx, models.Event{
				Type:       models.EventCampaignUpdated,
				CampaignID: record.ID,
				OwnerID:    in.OwnerID,
				Raised:     record.Data.Raised,
			})
			return nil
		}},
	)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *campaignService) ListCampaignsByOwner(ctx context.Context, ownerID string) ([]models.CampaignRecord, error) {
	if ownerID == "" {
		return nil, apperrors.NewValidationError("owner_id", "owner id is required")
	}
	records, err := s.repo.QueryWhere(ctx, repository.WhereOwner(ownerID))
	if err != nil {
		return nil, repoError("query campaigns by owner", err)
	}
	return records, nil
}

func (s *campaignService) ListDonationsByDonor(ctx context.Context, donorID string) ([]models.CampaignRecord, error) {
	if donorID == "" {
		return nil, apperrors.NewValidationError("donor_id", "donor id is required")
	}
	records, err := s.repo.QueryWhere(ctx, repository.WhereDonor(donorID))
	if err != nil {
		return nil, repoError("query campaigns by donor", err)
	}
	return records, nil
}

// TopCampaigns ranks campaigns by amount raised. The leaderboard is used when
// it has entries; otherwise every campaign is loaded and sorted.
func (s *campaignService) TopCampaigns(ctx context.Context, limit int) ([]models.CampaignRecord, error) {
	if limit <= 0 || limit > MaxTopLimit {
		return nil, apperrors.NewValidationError("limit", "limit must be between 1 and 100")
	}

	load := func() (interface{}, error) {
		return s.loadTop(ctx, limit)
	}
	if s.cache == nil {
		v, err := load()
		if err != nil {
			return nil, err
		}
		return v.([]models.CampaignRecord), nil
	}

	var records []models.CampaignRecord
	if err := s.cache.GetOrSet(ctx, cache.TopCampaignsKey(limit), &records, s.listTTL, load); err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.CampaignRecord{}
	}
	return records, nil
}

func (s *campaignService) loadTop(ctx context.Context, limit int) ([]models.CampaignRecord, error) {
	if s.ranking != nil {
		ids, err := s.ranking.Top(ctx, limit)
		if err != nil {
			s.log.Warn().Err(err).Msg("leaderboard unavailable, falling back to full scan")
		} else if len(ids) > 0 {
			out := make([]models.CampaignRecord, 0, len(ids))
			for _, id := range ids {
				record, err := s.repo.GetByID(ctx, id)
				if errors.Is(err, repository.ErrCampaignNotFound) {
					continue
				}
				if err != nil {
					return nil, repoError("get campaign", err)
				}
				out = append(out, *record)
			}
			return out, nil
		}
	}

	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, repoError("list campaigns", err)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Data.Raised > all[j].Data.Raised
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// afterWrite drops cached lists and publishes event. Failures are logged and
// never fail the write that already happened.
func (s *campaignService) afterWrite(ctx context.Context, event models.Event) {
	event.OccurredAt = s.now()
	if s.cache != nil {
		if err := s.cache.InvalidateCampaignLists(ctx); err != nil {
			s.log.Warn().Err(err).Str("campaign_id", event.CampaignID).Msg("failed to invalidate campaign lists")
		}
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("campaign_id", event.CampaignID).Str("event", string(event.Type)).Msg("failed to publish event")
	}
}

func repoError(operation string, err error) error {
	if apperrors.IsAppError(err) {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrConcurrentUpdate):
		return apperrors.Wrap(err, apperrors.ErrCodeConflict, "campaign was modified concurrently, try again").
			WithDetail("operation", operation)
	case errors.Is(err, repository.ErrUnsupportedQuery):
		return apperrors.Wrap(err, apperrors.ErrCodeBadRequest, err.Error()).
			WithDetail("operation", operation)
	}
	return apperrors.NewDatabaseError(operation, err)
}
