package redisrepo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/ramG-reddy/sms-pipeline/internal/sender_service/domain"
)

// RedisBlockListGate checks recipients against a Redis set. The set is seeded and
// mutated externally; the gate only reads it (SISMEMBER, O(1)).
type RedisBlockListGate struct {
	client *redis.Client
	key    string
	logger *slog.Logger
}

func NewBlockListGate(client *redis.Client, key string, logger *slog.Logger) *RedisBlockListGate {
	return &RedisBlockListGate{
		client: client,
		key:    key,
		logger: logger.With("component", "blocklist_gate_redis"),
	}
}

var _ domain.BlockListGate = (*RedisBlockListGate)(nil)

// IsBlocked reports membership of recipient in the block set. Any Redis error is
// returned as ErrBlockListUnavailable; the gate never fails open.
func (g *RedisBlockListGate) IsBlocked(ctx context.Context, recipient string) (bool, error) {
	blocked, err := g.client.SIsMember(ctx, g.key, recipient).Result()
	if err != nil {
		g.logger.ErrorContext(ctx, "Block list membership check failed", "error", err, "key", g.key)
		return false, fmt.Errorf("%w: %v", domain.ErrBlockListUnavailable, err)
	}
	if blocked {
		g.logger.InfoContext(ctx, "Recipient found in block list", "recipient", recipient)
	}
	return blocked, nil
}
