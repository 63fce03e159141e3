// Package jobs tracks render jobs so long-running renders are observable.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"clipstudio/types"
)

// ErrNotFound is returned for unknown job ids.
var ErrNotFound = errors.New("render job not found")

// Store persists render job state across the API surface and the worker.
type Store interface {
	Put(ctx context.Context, job types.RenderJob) error
	Get(ctx context.Context, id string) (*types.RenderJob, error)
	SetStatus(ctx context.Context, id string, status types.JobStatus, message, outputURL string) error
}

// RedisConfig configures the Redis-backed store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisStore keeps jobs as JSON values under a keyed namespace with a TTL,
// so finished jobs age out on their own.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func jobKey(id string) string { return "render:job:" + id }

// applyStatus mutates the lifecycle fields of a job record. An empty
// outputURL keeps the existing one so a late status write cannot blank it.
func applyStatus(job *types.RenderJob, status types.JobStatus, message, outputURL string) {
	job.Status = status
	job.Message = message
	if outputURL != "" {
		job.OutputURL = outputURL
	}
}

// Put stores the full job record.
func (s *RedisStore) Put(ctx context.Context, job types.RenderJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, jobKey(job.ID), data, s.ttl).Err()
}

// Get fetches a job by id.
func (s *RedisStore) Get(ctx context.Context, id string) (*types.RenderJob, error) {
	data, err := s.client.Get(ctx, jobKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var job types.RenderJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// SetStatus updates the lifecycle fields of an existing job. The API process
// and the worker both write job records, so the read-modify-write runs under
// WATCH and retries when the key changes mid-update.
func (s *RedisStore) SetStatus(ctx context.Context, id string, status types.JobStatus, message, outputURL string) error {
	key := jobKey(id)

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var job types.RenderJob
		if err := json.Unmarshal(data, &job); err != nil {
			return err
		}
		applyStatus(&job, status, message, outputURL)

		updated, err := json.Marshal(job)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, s.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < 3; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == redis.TxFailedErr {
			continue
		}
		return err
	}
	return fmt.Errorf("job %s: status update kept colliding", id)
}

// Close releases the underlying connection.
func (s *RedisStore) Close() error { return s.client.Close() }

// MemoryStore is the in-process Store used by tests and single-node runs
// without Redis.
type MemoryStore struct {
	mu   sync.Mutex
	jobs map[string]types.RenderJob
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]types.RenderJob)}
}

func (s *MemoryStore) Put(_ context.Context, job types.RenderJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*types.RenderJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &job, nil
}

func (s *MemoryStore) SetStatus(_ context.Context, id string, status types.JobStatus, message, outputURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	applyStatus(&job, status, message, outputURL)
	s.jobs[id] = job
	return nil
}
