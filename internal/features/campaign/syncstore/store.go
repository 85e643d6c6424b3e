// Package syncstore is the client-side cache of campaign data. It runs every
// read and write against a Backend and keeps four record collections plus a
// store-wide status that views render from.
package syncstore

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "crowdfund-backend/internal/common/errors"
	"crowdfund-backend/internal/common/logger"
	"crowdfund-backend/internal/common/validation"
	"crowdfund-backend/internal/features/campaign/models"
)

// Status is the store-wide progress flag. Every operation writes it, so with
// operations in flight it reflects whichever phase transition happened last.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Backend is the remote side of the store: the HTTP client or the in-process
// campaign service. Donate and UpdateCampaign return (nil, nil) when the
// campaign does not exist.
type Backend interface {
	ListAllCampaigns(ctx context.Context) ([]models.CampaignRecord, error)
	CreateCampaign(ctx context.Context, in models.CampaignCreate) (*models.CampaignRecord, error)
	Donate(ctx context.Context, in models.DonationCreate) (*models.CampaignRecord, error)
	GetCampaign(ctx context.Context, id string) (*models.CampaignRecord, error)
	UpdateCampaign(ctx context.Context, in models.CampaignUpdate) (*models.CampaignRecord, error)
	ListCampaignsByOwner(ctx context.Context, ownerID string) ([]models.CampaignRecord, error)
	ListDonationsByDonor(ctx context.Context, donorID string) ([]models.CampaignRecord, error)
}

// Snapshot is a read-only copy of the cache.
type Snapshot struct {
	AllCampaigns    []models.CampaignRecord `json:"all_campaigns"`
	UserCampaigns   []models.CampaignRecord `json:"user_campaigns"`
	UserDonations   []models.CampaignRecord `json:"user_donations"`
	CurrentCampaign *models.CampaignRecord  `json:"current_campaign"`
	Status          Status                  `json:"status"`
	Error           string                  `json:"error,omitempty"`
}

func emptySnapshot() Snapshot {
	return Snapshot{
		AllCampaigns:  []models.CampaignRecord{},
		UserCampaigns: []models.CampaignRecord{},
		UserDonations: []models.CampaignRecord{},
		Status:        StatusIdle,
	}
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.AllCampaigns = cloneRecords(s.AllCampaigns)
	out.UserCampaigns = cloneRecords(s.UserCampaigns)
	out.UserDonations = cloneRecords(s.UserDonations)
	if s.CurrentCampaign != nil {
		c := s.CurrentCampaign.Clone()
		out.CurrentCampaign = &c
	}
	return out
}

func cloneRecords(in []models.CampaignRecord) []models.CampaignRecord {
	out := make([]models.CampaignRecord, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

type slot int

const (
	slotAllCampaigns slot = iota
	slotUserCampaigns
	slotUserDonations
	slotCurrentCampaign
)

// Store is safe for concurrent use.
type Store struct {
	backend Backend
	log     zerolog.Logger

	mu      sync.RWMutex
	snap    Snapshot
	subs    map[int]chan Snapshot
	nextSub int
}

func New(backend Backend) *Store {
	return &Store{
		backend: backend,
		log:     logger.Component("syncstore"),
		snap:    emptySnapshot(),
		subs:    make(map[int]chan Snapshot),
	}
}

// Snapshot returns a deep copy of the current cache.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.clone()
}

// Subscribe returns a channel receiving a snapshot after every phase
// transition and Reset. A slow subscriber loses intermediate snapshots but
// always receives the most recent one. cancel closes the channel.
func (s *Store) Subscribe(buffer int) (<-chan Snapshot, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Snapshot, buffer)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Reset clears every collection and returns the status to idle. It makes no
// backend call.
func (s *Store) Reset() {
	s.mu.Lock()
	s.snap = emptySnapshot()
	s.broadcastLocked()
	s.mu.Unlock()
}

// broadcastLocked must be called with s.mu held for writing.
func (s *Store) broadcastLocked() {
	for _, ch := range s.subs {
		snap := s.snap.clone()
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func (s *Store) clearSlotLocked(target slot) {
	switch target {
	case slotAllCampaigns:
		s.snap.AllCampaigns = []models.CampaignRecord{}
	case slotUserCampaigns:
		s.snap.UserCampaigns = []models.CampaignRecord{}
	case slotUserDonations:
		s.snap.UserDonations = []models.CampaignRecord{}
	case slotCurrentCampaign:
		s.snap.CurrentCampaign = nil
	}
}

func (s *Store) pending(target slot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearSlotLocked(target)
	s.snap.Status = StatusLoading
	s.snap.Error = ""
	s.broadcastLocked()
}

func (s *Store) fulfilled(apply func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	apply(&s.snap)
	s.snap.Status = StatusSucceeded
	s.snap.Error = ""
	s.broadcastLocked()
}

func (s *Store) rejected(target slot, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearSlotLocked(target)
	s.snap.Status = StatusFailed
	s.snap.Error = err.Error()
	s.broadcastLocked()
}

// dispatch runs one operation in its own goroutine: pending, then validate,
// then call, then fulfilled or rejected. A validation failure rejects the
// operation without calling the backend.
func dispatch[T any](
	ctx context.Context,
	s *Store,
	name string,
	target slot,
	validate func() error,
	call func(ctx context.Context) (T, error),
	apply func(*Snapshot, T),
) *Operation[T] {
	op := newOperation[T](name)
	s.pending(target)

	go func() {
		var zero T
		if validate != nil {
			if err := validate(); err != nil {
				s.log.Warn().Err(err).Str("operation", name).Msg("operation rejected by validation")
				s.rejected(target, err)
				op.settle(zero, err)
				return
			}
		}

		result, err := call(ctx)
		if err != nil {
			s.log.Error().Err(err).Str("operation", name).Msg("operation failed")
			s.rejected(target, err)
			op.settle(zero, err)
			return
		}

		s.fulfilled(func(snap *Snapshot) { apply(snap, result) })
		op.settle(result, nil)
	}()

	return op
}

func setCurrent(snap *Snapshot, record *models.CampaignRecord) {
	if record == nil {
		snap.CurrentCampaign = nil
		return
	}
	c := record.Clone()
	snap.CurrentCampaign = &c
}

func records(in []models.CampaignRecord) []models.CampaignRecord {
	if in == nil {
		return []models.CampaignRecord{}
	}
	return cloneRecords(in)
}

// ListAllCampaigns replaces the all-campaigns collection.
func (s *Store) ListAllCampaigns(ctx context.Context) *Operation[[]models.CampaignRecord] {
	return dispatch(ctx, s, "list_all_campaigns", slotAllCampaigns, nil,
		s.backend.ListAllCampaigns,
		func(snap *Snapshot, out []models.CampaignRecord) { snap.AllCampaigns = records(out) },
	)
}

// CreateCampaign submits a new campaign and caches it as the current one.
func (s *Store) CreateCampaign(ctx context.Context, in models.CampaignCreate) *Operation[*models.CampaignRecord] {
	return dispatch(ctx, s, "create_campaign", slotCurrentCampaign, func() error { return in.Validate(time.Now()) },
		func(ctx context.Context) (*models.CampaignRecord, error) { return s.backend.CreateCampaign(ctx, in) },
		setCurrent,
	)
}

// Donate records a donation and caches the updated campaign as the current
// one. A missing campaign fulfills with a nil record and no effect.
func (s *Store) Donate(ctx context.Context, in models.DonationCreate) *Operation[*models.CampaignRecord] {
	return dispatch(ctx, s, "donate", slotCurrentCampaign, in.Validate,
		func(ctx context.Context) (*models.CampaignRecord, error) { return s.backend.Donate(ctx, in) },
		setCurrent,
	)
}

// GetCampaign caches one campaign as the current one.
func (s *Store) GetCampaign(ctx context.Context, id string) *Operation[*models.CampaignRecord] {
	return dispatch(ctx, s, "get_campaign", slotCurrentCampaign,
		func() error { return nonEmpty("campaign_id", id) },
		func(ctx context.Context) (*models.CampaignRecord, error) { return s.backend.GetCampaign(ctx, id) },
		setCurrent,
	)
}

// UpdateCampaign edits a campaign and caches the result as the current one.
func (s *Store) UpdateCampaign(ctx context.Context, in models.CampaignUpdate) *Operation[*models.CampaignRecord] {
	return dispatch(ctx, s, "update_campaign", slotCurrentCampaign, in.Validate,
		func(ctx context.Context) (*models.CampaignRecord, error) { return s.backend.UpdateCampaign(ctx, in) },
		setCurrent,
	)
}

// ListCampaignsByOwner replaces the user-campaigns collection.
func (s *Store) ListCampaignsByOwner(ctx context.Context, ownerID string) *Operation[[]models.CampaignRecord] {
	return dispatch(ctx, s, "list_campaigns_by_owner", slotUserCampaigns,
		func() error { return nonEmpty("owner_id", ownerID) },
		func(ctx context.Context) ([]models.CampaignRecord, error) { return s.backend.ListCampaignsByOwner(ctx, ownerID) },
		func(snap *Snapshot, out []models.CampaignRecord) { snap.UserCampaigns = records(out) },
	)
}

// ListDonationsByDonor replaces the user-donations collection.
func (s *Store) ListDonationsByDonor(ctx context.Context, donorID string) *Operation[[]models.CampaignRecord] {
	return dispatch(ctx, s, "list_donations_by_donor", slotUserDonations,
		func() error { return nonEmpty("donor_id", donorID) },
		func(ctx context.Context) ([]models.CampaignRecord, error) { return s.backend.ListDonationsByDonor(ctx, donorID) },
		func(snap *Snapshot, out []models.CampaignRecord) { snap.UserDonations = records(out) },
	)
}

func nonEmpty(field, value string) error {
	if err := validation.ValidateNonEmpty(value, field); err != nil {
		return apperrors.NewValidationError(field, err.Error())
	}
	return nil
}
