package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/prepdeck/prepdeck/internal/corpus"
)

const defaultCacheTTL = 10 * time.Minute

// CachedStore memoizes GetByTopic and GetByID in Redis. Cache failures
// fall through to the underlying store; a lookup never fails because
// the cache did. Sample is never cached.
type CachedStore struct {
	next   ContentStore
	client *redis.Client
	ttl    time.Duration
}

// NewCachedStore wraps a store with a Redis cache.
func NewCachedStore(next ContentStore, client *redis.Client, ttl time.Duration) *CachedStore {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedStore{next: next, client: client, ttl: ttl}
}

func (s *CachedStore) GetByTopic(ctx context.Context, topic string) ([]corpus.QARecord, error) {
	key := "prepdeck:topic:" + topic

	var cached []corpus.QARecord
	if s.getCached(ctx, key, &cached) {
		return cached, nil
	}

	recs, err := s.next.GetByTopic(ctx, topic)
	if err != nil {
		return nil, err
	}
	s.setCached(ctx, key, recs)
	return recs, nil
}

func (s *CachedStore) GetByID(ctx context.Context, id string) (corpus.QARecord, error) {
	key := "prepdeck:record:" + id

	var cached corpus.QARecord
	if s.getCached(ctx, key, &cached) {
		return cached, nil
	}

	rec, err := s.next.GetByID(ctx, id)
	if err != nil {
		return corpus.QARecord{}, err
	}
	s.setCached(ctx, key, rec)
	return rec, nil
}

func (s *CachedStore) ListTopics(ctx context.Context) ([]corpus.Topic, error) {
	return s.next.ListTopics(ctx)
}

func (s *CachedStore) Sample(ctx context.Context, topic string, n int) ([]corpus.QARecord, error) {
	return s.next.Sample(ctx, topic, n)
}

// Invalidate drops all cached lookups. Called after a corpus reload.
func (s *CachedStore) Invalidate(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, "prepdeck:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (s *CachedStore) getCached(ctx context.Context, key string, v any) bool {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		slog.Warn("cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (s *CachedStore) setCached(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		slog.Warn("cache write failed", "key", key, "error", err)
	}
}
