// Package leaderboard ranks campaigns by amount raised in a Redis sorted set.
package leaderboard

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const KeyTopCampaigns = "campaigns:top"

type Leaderboard struct {
	client redis.UniversalClient
	key    string
}

func New(client redis.UniversalClient) *Leaderboard {
	return &Leaderboard{client: client, key: KeyTopCampaigns}
}

// Record raises the score of campaignID to raised. A lower value than the
// stored one is ignored, so events applied out of order never demote a
// campaign.
func (l *Leaderboard) Record(ctx context.Context, campaignID string, raised int64) error {
	return l.client.ZAddArgs(ctx, l.key, redis.ZAddArgs{
		GT:      true,
		Members: []redis.Z{{Score: float64(raised), Member: campaignID}},
	}).Err()
}

// Top returns up to limit campaign ids, highest raised first.
func (l *Leaderboard) Top(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return []string{}, nil
	}
	return l.client.ZRevRange(ctx, l.key, 0, int64(limit-1)).Result()
}

// Size returns the number of ranked campaigns.
func (l *Leaderboard) Size(ctx context.Context) (int64, error) {
	return l.client.ZCard(ctx, l.key).Result()
}
