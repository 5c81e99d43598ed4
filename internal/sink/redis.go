package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/actionsum/worktrack/internal/config"
	"github.com/actionsum/worktrack/internal/tracker"
)

// usageEvent is the queue entry consumed by the backend workers.
type usageEvent struct {
	Event        string    `json:"event"`
	App          string    `json:"app"`
	Duration     uint64    `json:"duration"`
	IdleDuration uint64    `json:"idle_duration"`
	Timestamp    time.Time `json:"timestamp"`
}

// RedisSink appends records to the per-user list <queue>_<user>.
type RedisSink struct {
	client *redis.Client
	key    string
}

// OpenRedisSink connects and verifies the server with a PING.
func OpenRedisSink(cfg config.RedisSinkConfig, userID string) (*RedisSink, error) {
	addr := cfg.Host
	if cfg.Port > 0 {
		addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisSink(client, QueueKey(cfg.Queue, userID)), nil
}

func NewRedisSink(client *redis.Client, key string) *RedisSink {
	return &RedisSink{client: client, key: key}
}

// QueueKey names the list for userID; an empty userID uses the bare queue.
func QueueKey(queue, userID string) string {
	if userID == "" {
		return queue
	}
	return queue + "_" + userID
}

func (s *RedisSink) Forward(ctx context.Context, rec tracker.UsageRecord) error {
	payload, err := json.Marshal(usageEvent{
		Event:        "usage",
		App:          rec.App,
		Duration:     rec.Duration,
		IdleDuration: rec.IdleDuration,
		Timestamp:    rec.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal usage event: %w", err)
	}

	if err := s.client.RPush(ctx, s.key, payload).Err(); err != nil {
		return fmt.Errorf("failed to push usage event: %w", err)
	}
	return nil
}

func (s *RedisSink) Name() string { return config.SinkRedis }

func (s *RedisSink) Close() error {
	return s.client.Close()
}
