package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"quizhub-service/internal/domain"
)

// LeaderboardCache stores computed leaderboard snapshots per quiz with a
// short TTL; the service invalidates on every new attempt. The empty quiz
// ID keys the global (all-quizzes) board. Failures are treated as misses:
// the board is always recomputable from the attempt history.
type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLeaderboardCache(client *redis.Client, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{client: client, ttl: ttl}
}

func (c *LeaderboardCache) Get(ctx context.Context, quizID string) ([]domain.LeaderboardEntry, bool) {
	raw, err := c.client.Get(ctx, c.key(quizID)).Bytes()
	if err != nil {
		return nil, false
	}
	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (c *LeaderboardCache) Set(ctx context.Context, quizID string, entries []domain.LeaderboardEntry) {
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, c.key(quizID), raw, c.ttl).Err()
}

// Invalidate drops the quiz board and the global board, both of which a
// new attempt can reorder.
func (c *LeaderboardCache) Invalidate(ctx context.Context, quizID string) {
	_ = c.client.Del(ctx, c.key(quizID), c.key("")).Err()
}

func (c *LeaderboardCache) key(quizID string) string {
	if quizID == "" {
		return "leaderboard:all"
	}
	return "leaderboard:" + quizID
}
