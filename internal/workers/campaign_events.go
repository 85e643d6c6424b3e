package workers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"crowdfund-backend/internal/common/cache"
	"crowdfund-backend/internal/common/logger"
	"crowdfund-backend/internal/features/campaign/events"
	"crowdfund-backend/internal/features/campaign/leaderboard"
	"crowdfund-backend/internal/features/campaign/models"
)

const (
	DefaultConsumerGroup = "crowdfund_backend_consumers"
	DefaultConsumerName  = "crowdfund_worker_1"
)

// Notifier delivers donation notices to campaign owners.
type Notifier interface {
	NotifyDonation(ctx context.Context, ownerID, projectName string, amount, raised, goal int64) error
	NotifyGoalReached(ctx context.Context, ownerID, projectName string, raised, goal int64) error
}

// CampaignLookup loads a campaign for notification text.
type CampaignLookup interface {
	GetByID(ctx context.Context, id string) (*models.CampaignRecord, error)
}

type CampaignEventsConfig struct {
	Stream   string
	Group    string
	Consumer string
	// Block is how long a read waits for new entries.
	Block time.Duration
}

// CampaignEventsWorker consumes the campaign event stream. It keeps the
// leaderboard current, drops cached lists and optionally messages owners
// about donations.
type CampaignEventsWorker struct {
	rdb       redis.UniversalClient
	cfg       CampaignEventsConfig
	board     *leaderboard.Leaderboard
	cache     *cache.CacheService
	campaigns CampaignLookup
	notifier  Notifier
	log       zerolog.Logger
}

func NewCampaignEventsWorker(rdb redis.UniversalClient, cfg CampaignEventsConfig, board *leaderboard.Leaderboard, cacheService *cache.CacheService) *CampaignEventsWorker {
	if cfg.Stream == "" {
		cfg.Stream = events.DefaultStream
	}
	if cfg.Group == "" {
		cfg.Group = DefaultConsumerGroup
	}
	if cfg.Consumer == "" {
		cfg.Consumer = DefaultConsumerName
	}
	if cfg.Block == 0 {
		cfg.Block = 5 * time.Second
	}
	return &CampaignEventsWorker{
		rdb:   rdb,
		cfg:   cfg,
		board: board,
		cache: cacheService,
		log:   logger.Component("campaign_events_worker"),
	}
}

// WithNotifier enables owner notifications on donations.
func (w *CampaignEventsWorker) WithNotifier(n Notifier, campaigns CampaignLookup) *CampaignEventsWorker {
	w.notifier = n
	w.campaigns = campaigns
	return w
}

// EnsureGroup creates the consumer group, reading from the start of the stream.
func (w *CampaignEventsWorker) EnsureGroup(ctx context.Context) error {
	err := w.rdb.XGroupCreateMkStream(ctx, w.cfg.Stream, w.cfg.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

// Start consumes events until ctx is canceled.
func (w *CampaignEventsWorker) Start(ctx context.Context) {
	if err := w.EnsureGroup(ctx); err != nil {
		w.log.Error().Err(err).Str("stream", w.cfg.Stream).Msg("failed to create consumer group")
	}

	w.log.Info().Str("stream", w.cfg.Stream).Str("group", w.cfg.Group).Msg("campaign events worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("campaign events worker stopped")
			return
		default:
		}

		if _, err := w.ProcessOnce(ctx, 10); err != nil {
			if ctx.Err() != nil {
				continue
			}
			w.log.Error().Err(err).Msg("failed to read from stream")
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
}

// ProcessOnce reads up to count new entries, handles and acknowledges them.
// It returns the number of entries handled.
func (w *CampaignEventsWorker) ProcessOnce(ctx context.Context, count int64) (int, error) {
	streams, err := w.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    w.cfg.Group,
		Consumer: w.cfg.Consumer,
		Streams:  []string{w.cfg.Stream, ">"},
		Count:    count,
		Block:    w.cfg.Block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	handled := 0
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			w.handle(ctx, msg)
			if err := w.rdb.XAck(ctx, w.cfg.Stream, w.cfg.Group, msg.ID).Err(); err != nil {
				w.log.Warn().Err(err).Str("message_id", msg.ID).Msg("failed to ack event")
			}
			handled++
		}
	}
	return handled, nil
}

func (w *CampaignEventsWorker) handle(ctx context.Context, msg redis.XMessage) {
	event, err := events.Decode(msg.Values)
	if err != nil {
		w.log.Warn().Err(err).Str("message_id", msg.ID).Msg("dropping malformed event")
		return
	}

	log := w.log.With().Str("event", string(event.Type)).Str("campaign_id", event.CampaignID).Logger()

	if w.board != nil {
		if err := w.board.Record(ctx, event.CampaignID, event.Raised); err != nil {
			log.Error().Err(err).Msg("failed to update leaderboard")
		}
	}
	if w.cache != nil {
		if err := w.cache.InvalidateCampaignLists(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to invalidate campaign lists")
		}
	}

	if event.Type == models.EventDonationReceived {
		w.notifyOwner(ctx, event, log)
	}
	log.Debug().Int64("raised", event.Raised).Msg("event processed")
}

func (w *CampaignEventsWorker) notifyOwner(ctx context.Context, event models.Event, log zerolog.Logger) {
	if w.notifier == nil || w.campaigns == nil {
		return
	}
	record, err := w.campaigns.GetByID(ctx, event.CampaignID)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load campaign for notification")
		return
	}
	owner, goal := record.Data.OwnerID, record.Data.Goal
	if err := w.notifier.NotifyDonation(ctx, owner, record.Data.ProjectName, event.Amount, event.Raised, goal); err != nil {
		log.Warn().Err(err).Str("owner_id", owner).Msg("failed to notify owner")
	}

	// only the donation that crosses the goal triggers the notice
	if event.Raised >= goal && event.Raised-event.Amount < goal {
		if err := w.notifier.NotifyGoalReached(ctx, owner, record.Data.ProjectName, event.Raised, goal); err != nil {
			log.Warn().Err(err).Str("owner_id", owner).Msg("failed to send goal notice")
		}
	}
}
