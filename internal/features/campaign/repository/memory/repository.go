// Package memory is an in-process campaign repository for development and
// tests. Records are copied on the way in and out.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"crowdfund-backend/internal/features/campaign/models"
	"crowdfund-backend/internal/features/campaign/repository"
)

type memoryRepository struct {
	mu    sync.RWMutex
	docs  map[string]models.Campaign
	order []string
	now   func() time.Time
}

func NewCampaignRepository() repository.CampaignRepository {
	return &memoryRepository{
		docs: make(map[string]models.Campaign),
		now:  time.Now,
	}
}

func (r *memoryRepository) GetAll(ctx context.Context) ([]models.CampaignRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.CampaignRecord, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, models.CampaignRecord{ID: id, Data: r.docs[id].Clone()})
	}
	return out, nil
}

func (r *memoryRepository) GetByID(ctx context.Context, id string) (*models.CampaignRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.docs[id]
	if !ok {
		return nil, repository.ErrCampaignNotFound
	}
	return &models.CampaignRecord{ID: id, Data: c.Clone()}, nil
}

func (r *memoryRepository) Insert(ctx context.Context, campaign *models.Campaign) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c := campaign.Clone()
	c.Normalize()

	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.New().String()
	r.docs[id] = c
	r.order = append(r.order, id)
	return id, nil
}

func (r *memoryRepository) Update(ctx context.Context, id string, m repository.Mutation) (*models.CampaignRecord, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.docs[id]
	if !ok {
		return nil, repository.ErrCampaignNotFound
	}
	c = c.Clone()
	m.Apply(&c, r.now())
	r.docs[id] = c
	return &models.CampaignRecord{ID: id, Data: c.Clone()}, nil
}

func (r *memoryRepository) QueryWhere(ctx context.Context, q repository.Query) ([]models.CampaignRecord, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	all, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.CampaignRecord, 0)
	for i := range all {
		if q.Matches(&all[i].Data) {
			out = append(out, all[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Data.CreatedAt.Before(out[j].Data.CreatedAt)
	})
	return out, nil
}
