package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LookupEvent records one lookup against the store.
type LookupEvent struct {
	Op        string // "get_by_topic", "get_by_id", "sample"
	Key       string
	Found     bool
	CreatedAt time.Time
}

// EventLogger records lookup analytics. Logging is fire-and-forget:
// lookups never fail because analytics failed.
type EventLogger interface {
	LogLookup(event LookupEvent) error
}

// NopEventLogger ignores all events.
type NopEventLogger struct{}

func (NopEventLogger) LogLookup(LookupEvent) error {
	return nil
}

// MemoryEventLogger stores events in memory for tests.
type MemoryEventLogger struct {
	mu     sync.Mutex
	events []LookupEvent
}

func NewMemoryEventLogger() *MemoryEventLogger {
	return &MemoryEventLogger{
		events: []LookupEvent{},
	}
}

func (l *MemoryEventLogger) LogLookup(event LookupEvent) error {
	if event.Op == "" {
		return fmt.Errorf("op is required")
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()

	return nil
}

func (l *MemoryEventLogger) Events() []LookupEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LookupEvent{}, l.events...)
}

// PostgresEventLogger inserts events into the lookup_events table.
type PostgresEventLogger struct {
	pool *pgxpool.Pool
}

// NewPostgresEventLogger creates the logger and ensures the
// lookup_events table exists.
func NewPostgresEventLogger(ctx context.Context, pool *pgxpool.Pool) (*PostgresEventLogger, error) {
	if pool == nil {
		return nil, fmt.Errorf("event logger pool is nil")
	}

	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS lookup_events (
			id         BIGSERIAL PRIMARY KEY,
			op         TEXT NOT NULL,
			key        TEXT NOT NULL,
			found      BOOLEAN NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return nil, fmt.Errorf("ensure lookup_events table: %w", err)
	}

	return &PostgresEventLogger{pool: pool}, nil
}

func (l *PostgresEventLogger) LogLookup(event LookupEvent) error {
	if l == nil || l.pool == nil {
		return fmt.Errorf("event logger pool is nil")
	}
	if event.Op == "" {
		return fmt.Errorf("op is required")
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	_, err := l.pool.Exec(ctx,
		`INSERT INTO lookup_events (op, key, found, created_at)
		 VALUES ($1, $2, $3, $4)`,
		event.Op,
		event.Key,
		event.Found,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert lookup event: %w", err)
	}

	slog.Debug("lookup logged", "op", event.Op, "key", event.Key, "found", event.Found)
	return nil
}
