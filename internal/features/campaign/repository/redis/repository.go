package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"crowdfund-backend/internal/features/campaign/models"
	"crowdfund-backend/internal/features/campaign/repository"
)

const (
	keyPrefixCampaign    = "campaign:"
	keyPrefixOwnerIndex  = "campaigns:owner:"
	keyPrefixDonorIndex  = "campaigns:donor:"
	keyAllCampaigns      = "campaigns:all"
	keyCampaignSequence  = "campaigns:seq"
	defaultMaxCASRetries = 32
)

type redisRepository struct {
	client     redis.UniversalClient
	maxRetries int
	now        func() time.Time
}

// NewCampaignRepository stores each campaign as a JSON document under
// campaign:<id>. campaigns:all is a sorted set scored by insertion sequence;
// owner and donor lookups go through plain sets.
func NewCampaignRepository(client redis.UniversalClient) repository.CampaignRepository {
	return &redisRepository{
		client:     client,
		maxRetries: defaultMaxCASRetries,
		now:        time.Now,
	}
}

func makeCampaignKey(id string) string {
	return keyPrefixCampaign + id
}

func makeOwnerIndexKey(ownerID string) string {
	return keyPrefixOwnerIndex + ownerID
}

func makeDonorIndexKey(donorID string) string {
	return keyPrefixDonorIndex + donorID
}

func decodeCampaign(data []byte) (models.Campaign, error) {
	var c models.Campaign
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("failed to unmarshal campaign: %w", err)
	}
	c.Normalize()
	return c, nil
}

func (r *redisRepository) GetAll(ctx context.Context) ([]models.CampaignRecord, error) {
	ids, err := r.client.ZRange(ctx, keyAllCampaigns, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return r.loadMany(ctx, ids)
}

func (r *redisRepository) GetByID(ctx context.Context, id string) (*models.CampaignRecord, error) {
	data, err := r.client.Get(ctx, makeCampaignKey(id)).Bytes()
	if err == redis.Nil {
		return nil, repository.ErrCampaignNotFound
	}
	if err != nil {
		return nil, err
	}

	c, err := decodeCampaign(data)
	if err != nil {
		return nil, err
	}
	return &models.CampaignRecord{ID: id, Data: c}, nil
}

func (r *redisRepository) Insert(ctx context.Context, campaign *models.Campaign) (string, error) {
	c := campaign.Clone()
	c.Normalize()

	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal campaign: %w", err)
	}

	seq, err := r.client.Incr(ctx, keyCampaignSequence).Result()
	if err != nil {
		return "", err
	}

	id := uuid.New().String()
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, makeCampaignKey(id), data, 0)
	pipe.ZAdd(ctx, keyAllCampaigns, redis.Z{Score: float64(seq), Member: id})
	if c.OwnerID != "" {
		pipe.SAdd(ctx, makeOwnerIndexKey(c.OwnerID), id)
	}
	for _, donor := range c.Donors {
		pipe.SAdd(ctx, makeDonorIndexKey(donor), id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return id, nil
}

// Update is a WATCH/MULTI compare-and-swap on the campaign document, retried
// until it commits against an unchanged document or the retries run out.
func (r *redisRepository) Update(ctx context.Context, id string, m repository.Mutation) (*models.CampaignRecord, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	key := makeCampaignKey(id)
	for attempt := 0; attempt < r.maxRetries; attempt++ {
		var updated models.Campaign
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err == redis.Nil {
				return repository.ErrCampaignNotFound
			}
			if err != nil {
				return err
			}

			c, err := decodeCampaign(data)
			if err != nil {
				return err
			}
			m.Apply(&c, r.now())

			out, err := json.Marshal(c)
			if err != nil {
				return fmt.Errorf("failed to marshal campaign: %w", err)
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, out, 0)
				for _, donor := range m.AppendDonors {
					pipe.SAdd(ctx, makeDonorIndexKey(donor), id)
				}
				return nil
			})
			if err != nil {
				return err
			}
			updated = c
			return nil
		}, key)

		if err == nil {
			return &models.CampaignRecord{ID: id, Data: updated}, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, repository.ErrConcurrentUpdate
}

func (r *redisRepository) QueryWhere(ctx context.Context, q repository.Query) ([]models.CampaignRecord, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var indexKey string
	switch q.Field {
	case repository.FieldOwnerID:
		indexKey = makeOwnerIndexKey(q.Value)
	case repository.FieldDonors:
		indexKey = makeDonorIndexKey(q.Value)
	}

	var candidates []models.CampaignRecord
	if indexKey != "" {
		ids, err := r.client.SMembers(ctx, indexKey).Result()
		if err != nil {
			return nil, err
		}
		candidates, err = r.loadMany(ctx, ids)
		if err != nil {
			return nil, err
		}
	} else {
		all, err := r.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		candidates = all
	}

	out := make([]models.CampaignRecord, 0, len(candidates))
	for i := range candidates {
		if q.Matches(&candidates[i].Data) {
			out = append(out, candidates[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Data.CreatedAt.Equal(out[j].Data.CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].Data.CreatedAt.Before(out[j].Data.CreatedAt)
	})
	return out, nil
}

// loadMany fetches documents in ids order, skipping ids whose document is gone.
func (r *redisRepository) loadMany(ctx context.Context, ids []string) ([]models.CampaignRecord, error) {
	out := make([]models.CampaignRecord, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = makeCampaignKey(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		c, err := decodeCampaign([]byte(s))
		if err != nil {
			return nil, err
		}
		out = append(out, models.CampaignRecord{ID: ids[i], Data: c})
	}
	return out, nil
}
