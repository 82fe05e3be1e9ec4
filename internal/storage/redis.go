package storage

import (
	"context"
	"fmt"
	"time"

	"tomoru/internal/logger"
	"tomoru/internal/stats"
	"tomoru/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// redisClient is the subset of *redis.Client the publisher needs
type redisClient interface {
	Ping(ctx context.Context) *redis.StatusCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Close() error
}

type Options struct {
	Addr     string
	Password string
	DB       int
	Channel  string
	TTL      time.Duration
	// Prefix namespaces the snapshot keys, defaults to "tomoru"
	Prefix string
}

// ReportPublisher mirrors every report to Redis: the snapshot is stored in
// hourly and three-hourly hashes with a TTL, and the formatted text is
// published on a channel for live subscribers.
type ReportPublisher struct {
	rdb  redisClient
	opts Options
	now  func() time.Time
}

func NewReportPublisher(opts Options) *ReportPublisher {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return newReportPublisher(rdb, opts)
}

func newReportPublisher(rdb redisClient, opts Options) *ReportPublisher {
	if opts.Prefix == "" {
		opts.Prefix = "tomoru"
	}
	return &ReportPublisher{rdb: rdb, opts: opts, now: time.Now}
}

// CheckConnection pings Redis
func (p *ReportPublisher) CheckConnection(ctx context.Context) error {
	pong, err := p.rdb.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", p.opts.Addr, err)
	}
	logger.L().Info("connected to Redis", zap.String("addr", p.opts.Addr), zap.String("reply", pong))
	return nil
}

// Emit stores the snapshot and publishes the report text
func (p *ReportPublisher) Emit(ctx context.Context, entries []stats.IPCount, report string) error {
	now := p.now()
	keys := []string{
		utils.GenerateReportKey(p.opts.Prefix, now),
		utils.GenerateWindowKey(p.opts.Prefix, now),
	}

	if len(entries) > 0 {
		values := make([]interface{}, 0, len(entries)*2)
		for _, e := range entries {
			values = append(values, e.IP, e.Count)
		}

		for _, key := range keys {
			if err := p.rdb.HSet(ctx, key, values...).Err(); err != nil {
				return fmt.Errorf("failed to store snapshot in %s: %w", key, err)
			}
			if p.opts.TTL > 0 {
				if err := p.rdb.Expire(ctx, key, p.opts.TTL).Err(); err != nil {
					return fmt.Errorf("failed to set expiry on %s: %w", key, err)
				}
			}
		}
	}

	if err := p.rdb.Publish(ctx, p.opts.Channel, report).Err(); err != nil {
		return fmt.Errorf("failed to publish report on %s: %w", p.opts.Channel, err)
	}

	logger.L().Debug("report published to Redis",
		zap.String("channel", p.opts.Channel),
		zap.Int("addresses", len(entries)))
	return nil
}

func (p *ReportPublisher) Close() error {
	return p.rdb.Close()
}
