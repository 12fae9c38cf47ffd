package notify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ternarybob/arbor"

	"github.com/thebeat-kr/thebeat/internal/common"
	"github.com/thebeat-kr/thebeat/internal/models"
)

const (
	// newsListKey is the list the trading bot consumes.
	newsListKey = "thebeat:news"

	// sentHashKey is the dedup set of already-pushed title hashes.
	sentHashKey = "thebeat:sent_news_hashes"

	// defaultDedupTTL keeps sent hashes for a week.
	defaultDedupTTL = 7 * 24 * time.Hour
)

// QueueStats summarizes a batch push.
type QueueStats struct {
	Sent       int
	Filtered   int
	Duplicated int
}

// QueueSender pushes actionable briefing entries to the Redis queue the
// trading bot reads, with hash-based resend protection.
type QueueSender struct {
	client   *redis.Client
	dedupTTL time.Duration
	logger   arbor.ILogger
	now      func() time.Time
}

// NewQueueSender connects to Redis and verifies the connection with a
// ping before returning.
func NewQueueSender(ctx context.Context, cfg *common.RedisConfig, logger arbor.ILogger) (*QueueSender, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed (%s): %w", cfg.Addr, err)
	}

	dedupTTL := defaultDedupTTL
	if cfg.DedupTTL != "" {
		ttl, err := time.ParseDuration(cfg.DedupTTL)
		if err != nil {
			return nil, fmt.Errorf("invalid dedup_ttl %q: %w", cfg.DedupTTL, err)
		}
		dedupTTL = ttl
	}

	logger.Info().
		Str("addr", cfg.Addr).
		Msg("Redis queue sender connected")

	return &QueueSender{
		client:   client,
		dedupTTL: dedupTTL,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Close releases the underlying connection.
func (s *QueueSender) Close() error {
	return s.client.Close()
}

// Blast pushes one entry to the queue. Only S/A grades go out; a title
// already pushed within the dedup TTL is silently dropped. Returns whether
// the entry was actually sent.
func (s *QueueSender) Blast(ctx context.Context, a models.StockAnalysis) (bool, error) {
	if !a.Grade.Actionable() {
		s.logger.Debug().
			Str("grade", string(a.Grade)).
			Str("stock", a.Stock).
			Msg("Grade below queue threshold, not sending")
		return false, nil
	}
	if a.Point == "" {
		return false, nil
	}

	hash := titleHash(a.Point)
	duplicate, err := s.client.SIsMember(ctx, sentHashKey, hash).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check failed: %w", err)
	}
	if duplicate {
		s.logger.Info().
			Str("stock", a.Stock).
			Msg("Duplicate catalyst, not resending")
		return false, nil
	}

	msg := models.NewQueueMessage(a, s.now())
	payload, err := json.Marshal(msg)
	if err != nil {
		return false, fmt.Errorf("failed to encode queue message: %w", err)
	}

	if err := s.client.LPush(ctx, newsListKey, payload).Err(); err != nil {
		return false, fmt.Errorf("queue push failed: %w", err)
	}

	// Mark after the push so a failed push stays eligible for retry.
	if err := s.client.SAdd(ctx, sentHashKey, hash).Err(); err != nil {
		return true, fmt.Errorf("failed to record sent hash: %w", err)
	}
	if err := s.client.Expire(ctx, sentHashKey, s.dedupTTL).Err(); err != nil {
		return true, fmt.Errorf("failed to refresh dedup TTL: %w", err)
	}

	s.logger.Info().
		Str("grade", string(a.Grade)).
		Str("stock", a.Stock).
		Msg("Catalyst pushed to queue")
	return true, nil
}

// BlastBatch pushes a whole briefing and returns per-disposition counts.
// Individual failures are logged and counted as filtered; the batch keeps
// going.
func (s *QueueSender) BlastBatch(ctx context.Context, results []models.StockAnalysis) QueueStats {
	var stats QueueStats
	for _, a := range results {
		if !a.Grade.Actionable() || a.Point == "" {
			stats.Filtered++
			continue
		}

		sent, err := s.Blast(ctx, a)
		switch {
		case err != nil:
			s.logger.Warn().
				Str("stock", a.Stock).
				Err(err).
				Msg("Queue push failed for entry")
			stats.Filtered++
		case sent:
			stats.Sent++
		default:
			stats.Duplicated++
		}
	}

	s.logger.Info().
		Int("sent", stats.Sent).
		Int("filtered", stats.Filtered).
		Int("duplicated", stats.Duplicated).
		Msg("Queue batch complete")
	return stats
}

func titleHash(title string) string {
	sum := sha256.Sum256([]byte(title))
	return hex.EncodeToString(sum[:])
}
