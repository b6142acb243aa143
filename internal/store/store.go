// Package store exposes read-only access to the question corpus through
// the ContentStore interface, with in-memory, PostgreSQL, and cached
// implementations.
package store

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/prepdeck/prepdeck/internal/corpus"
)

// ErrNotFound is reported when a topic or record id is absent from the
// corpus. Use errors.Is to test for it.
var ErrNotFound = errors.New("not found")

// NotFoundError carries what kind of key was missing.
type NotFoundError struct {
	Kind string // "topic" or "record"
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ContentStore is the read-only query surface over the corpus.
type ContentStore interface {
	// GetByTopic returns all records with the given topic. A topic
	// outside the fixed set is ErrNotFound; a valid topic with no
	// records returns an empty slice.
	GetByTopic(ctx context.Context, topic string) ([]corpus.QARecord, error)
	// GetByID returns the record with the given id, or ErrNotFound.
	GetByID(ctx context.Context, id string) (corpus.QARecord, error)
	// ListTopics returns the fixed topic set.
	ListTopics(ctx context.Context) ([]corpus.Topic, error)
	// Sample returns up to n randomly chosen records. An empty topic
	// samples the whole corpus.
	Sample(ctx context.Context, topic string, n int) ([]corpus.QARecord, error)
}

// MemoryStore serves lookups from a loaded corpus. The corpus itself is
// immutable; the pointer is swapped atomically on reload so concurrent
// readers never observe a partial corpus.
type MemoryStore struct {
	mu     sync.RWMutex
	corpus *corpus.Corpus
}

// NewMemoryStore creates a store over the given corpus.
func NewMemoryStore(c *corpus.Corpus) *MemoryStore {
	return &MemoryStore{corpus: c}
}

// SetCorpus swaps in a freshly loaded corpus.
func (s *MemoryStore) SetCorpus(c *corpus.Corpus) {
	s.mu.Lock()
	s.corpus = c
	s.mu.Unlock()
}

// Corpus returns the currently served corpus.
func (s *MemoryStore) Corpus() *corpus.Corpus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.corpus
}

func (s *MemoryStore) GetByTopic(_ context.Context, topic string) ([]corpus.QARecord, error) {
	t, ok := corpus.ParseTopic(topic)
	if !ok {
		return nil, &NotFoundError{Kind: "topic", Key: topic}
	}
	return s.Corpus().ByTopic(t), nil
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (corpus.QARecord, error) {
	rec, ok := s.Corpus().Record(id)
	if !ok {
		return corpus.QARecord{}, &NotFoundError{Kind: "record", Key: id}
	}
	return rec, nil
}

func (s *MemoryStore) ListTopics(_ context.Context) ([]corpus.Topic, error) {
	return corpus.Topics(), nil
}

func (s *MemoryStore) Sample(_ context.Context, topic string, n int) ([]corpus.QARecord, error) {
	c := s.Corpus()

	var pool []corpus.QARecord
	if topic == "" {
		pool = c.Records()
	} else {
		t, ok := corpus.ParseTopic(topic)
		if !ok {
			return nil, &NotFoundError{Kind: "topic", Key: topic}
		}
		pool = c.ByTopic(t)
	}

	return samplePool(pool, n), nil
}

// samplePool returns up to n records drawn without replacement.
func samplePool(pool []corpus.QARecord, n int) []corpus.QARecord {
	if n < 1 {
		n = 1
	}
	if n >= len(pool) {
		out := make([]corpus.QARecord, len(pool))
		copy(out, pool)
		rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out
	}

	idx := rand.Perm(len(pool))[:n]
	out := make([]corpus.QARecord, 0, n)
	for _, i := range idx {
		out = append(out, pool[i])
	}
	return out
}
