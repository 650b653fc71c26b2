package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"github.com/teslashibe/go-gaze/internal/log"
)

// RedisClient is the subset of *redis.Client the publisher uses.
type RedisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Close() error
}

// RedisOptions configures NewRedisPublisher.
type RedisOptions struct {
	Address     string
	Password    string
	DB          int
	Channel     string
	BaselineKey string
}

// RedisPublisher publishes events on a pub/sub channel and keeps the latest
// baseline under a key so late subscribers can read it.
type RedisPublisher struct {
	client      RedisClient
	channel     string
	baselineKey string
	logger      *slog.Logger
}

// NewRedisPublisher connects to redis. An unreachable server is logged and
// not fatal; publishing retries on every event.
func NewRedisPublisher(ctx context.Context, opts RedisOptions) *RedisPublisher {
	logger := log.With("component", "telemetry", "addr", opts.Address)
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Error("failed to connect to redis", "error", err)
	} else {
		logger.Info("connected to redis", "channel", opts.Channel)
	}

	return NewRedisPublisherWithClient(client, opts.Channel, opts.BaselineKey)
}

// NewRedisPublisherWithClient wraps an existing client.
func NewRedisPublisherWithClient(client RedisClient, channel, baselineKey string) *RedisPublisher {
	return &RedisPublisher{
		client:      client,
		channel:     channel,
		baselineKey: baselineKey,
		logger:      log.With("component", "telemetry"),
	}
}

// Publish sends ev on the channel. Calibration events also overwrite the
// baseline key.
func (p *RedisPublisher) Publish(ctx context.Context, ev Event) error {
	data, err := jsoniter.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	p.logger.Debug("event published", "type", ev.Type, "id", ev.ID)

	if ev.Type == EventCalibrated && p.baselineKey != "" {
		if err := p.client.Set(ctx, p.baselineKey, data, 0).Err(); err != nil {
			return fmt.Errorf("store baseline: %w", err)
		}
	}
	return nil
}

// Close closes the redis client.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

var (
	_ Publisher = (*RedisPublisher)(nil)
	_ Publisher = NopPublisher{}
)
