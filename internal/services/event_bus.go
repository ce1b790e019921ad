package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yungbote/checkia-backend/internal/platform/logger"
)

const (
	EventJobCreated  = "job_created"
	EventJobProgress = "job_progress"
	EventJobFailed   = "job_failed"
	EventJobDone     = "job_done"
)

// JobEvent is what the notifier publishes for every job transition.
type JobEvent struct {
	Event     string         `json:"event"`
	UserID    string         `json:"user_id"`
	JobID     string         `json:"job_id"`
	JobType   string         `json:"job_type"`
	EntityID  string         `json:"entity_id,omitempty"`
	Stage     string         `json:"stage,omitempty"`
	Progress  int            `json:"progress,omitempty"`
	Message   string         `json:"message,omitempty"`
	Error     string         `json:"error,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"ts"`
}

type EventBus interface {
	Publish(ctx context.Context, ev JobEvent) error
	Subscribe(ctx context.Context, onEvent func(ev JobEvent)) error
	Close() error
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

type redisEventBus struct {
	log     *logger.Logger
	rdb     *redis.Client
	channel string
}

func NewRedisEventBus(log *logger.Logger, cfg RedisConfig) (EventBus, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(cfg.Channel)
	if ch == "" {
		ch = "checkia.jobs"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisEventBus{
		log:     log.With("service", "RedisEventBus"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func (b *redisEventBus) Publish(ctx context.Context, ev JobEvent) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *redisEventBus) Subscribe(ctx context.Context, onEvent func(ev JobEvent)) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var ev JobEvent
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					b.log.Warn("bad job event payload", "error", err)
					continue
				}
				onEvent(ev)
			}
		}
	}()
	return nil
}

// Redis exposes the underlying client for health collectors.
func (b *redisEventBus) Redis() *redis.Client { return b.rdb }

func (b *redisEventBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
