package worker

import (
	"context"
	"encoding/json"
	"errors"
	"flowdata/internal/models"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ErrStatusNotFound is returned for unknown or expired run codes.
var ErrStatusNotFound = errors.New("import status not found")

// StatusStore keeps the latest ImportStatus of each queued run.
type StatusStore interface {
	Save(ctx context.Context, status *models.ImportStatus) error
	Get(ctx context.Context, runCode string) (*models.ImportStatus, error)
}

func StatusKey(runCode string) string {
	return fmt.Sprintf("import:status:%s", runCode)
}

// RedisStatusStore stores statuses as JSON strings with a TTL.
type RedisStatusStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStatusStore(client *redis.Client, ttl time.Duration) *RedisStatusStore {
	return &RedisStatusStore{client: client, ttl: ttl}
}

func (s *RedisStatusStore) Save(ctx context.Context, status *models.ImportStatus) error {
	status.UpdatedAt = time.Now()
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}
	if err := s.client.Set(ctx, StatusKey(status.RunCode), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save status %s: %w", status.RunCode, err)
	}
	return nil
}

func (s *RedisStatusStore) Get(ctx context.Context, runCode string) (*models.ImportStatus, error) {
	data, err := s.client.Get(ctx, StatusKey(runCode)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrStatusNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get status %s: %w", runCode, err)
	}

	var status models.ImportStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("decode status %s: %w", runCode, err)
	}
	return &status, nil
}
