package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prepdeck/prepdeck/internal/corpus"
)

const dbTimeout = 5 * time.Second

// PostgresStore is a PostgreSQL-backed ContentStore implementation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed store and ensures the
// qa_records table exists.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS qa_records (
			id          TEXT PRIMARY KEY,
			topic       TEXT NOT NULL,
			difficulty  TEXT,
			question    TEXT NOT NULL,
			answer      TEXT NOT NULL,
			follow_ups  JSONB NOT NULL DEFAULT '[]',
			code_sample TEXT,
			position    INT NOT NULL
		)`)
	if err != nil {
		return nil, fmt.Errorf("ensure qa_records table: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Sync replaces the table contents with the given corpus. This is the
// corpus-authoring path; serving reads stay consistent because the swap
// happens in one transaction.
func (s *PostgresStore) Sync(ctx context.Context, c *corpus.Corpus) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin sync: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM qa_records`); err != nil {
		return fmt.Errorf("clear qa_records: %w", err)
	}

	for pos, rec := range c.Records() {
		followUps, err := json.Marshal(rec.FollowUps)
		if err != nil {
			return fmt.Errorf("marshal follow-ups for %q: %w", rec.ID, err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO qa_records (id, topic, difficulty, question, answer, follow_ups, code_sample, position)
			 VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8)`,
			rec.ID,
			string(rec.Topic),
			nullIfEmpty(rec.Difficulty),
			rec.Question,
			rec.Answer,
			string(followUps),
			nullIfEmpty(rec.CodeSample),
			pos,
		)
		if err != nil {
			return fmt.Errorf("insert record %q: %w", rec.ID, err)
		}
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) GetByTopic(ctx context.Context, topic string) ([]corpus.QARecord, error) {
	if _, ok := corpus.ParseTopic(topic); !ok {
		return nil, &NotFoundError{Kind: "topic", Key: topic}
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id, topic, difficulty, question, answer, follow_ups, code_sample
		 FROM qa_records
		 WHERE topic = $1
		 ORDER BY position ASC`,
		topic,
	)
	if err != nil {
		return nil, fmt.Errorf("query records by topic: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (corpus.QARecord, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	row := s.pool.QueryRow(ctx,
		`SELECT id, topic, difficulty, question, answer, follow_ups, code_sample
		 FROM qa_records
		 WHERE id = $1
		 LIMIT 1`,
		id,
	)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return corpus.QARecord{}, &NotFoundError{Kind: "record", Key: id}
		}
		return corpus.QARecord{}, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) ListTopics(_ context.Context) ([]corpus.Topic, error) {
	// The topic set is fixed, not derived from stored rows.
	return corpus.Topics(), nil
}

func (s *PostgresStore) Sample(ctx context.Context, topic string, n int) ([]corpus.QARecord, error) {
	if topic != "" {
		if _, ok := corpus.ParseTopic(topic); !ok {
			return nil, &NotFoundError{Kind: "topic", Key: topic}
		}
	}
	if n < 1 {
		n = 1
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id, topic, difficulty, question, answer, follow_ups, code_sample
		 FROM qa_records
		 WHERE $1 = '' OR topic = $1
		 ORDER BY random()
		 LIMIT $2`,
		topic,
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("sample records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows pgx.Rows) ([]corpus.QARecord, error) {
	out := []corpus.QARecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

func scanRecord(row pgx.Row) (corpus.QARecord, error) {
	var rec corpus.QARecord
	var topic string
	var difficulty *string
	var followUps []byte
	var codeSample *string

	if err := row.Scan(&rec.ID, &topic, &difficulty, &rec.Question, &rec.Answer, &followUps, &codeSample); err != nil {
		return corpus.QARecord{}, err
	}

	rec.Topic = corpus.Topic(topic)
	if difficulty != nil {
		rec.Difficulty = *difficulty
	}
	if codeSample != nil {
		rec.CodeSample = *codeSample
	}
	if len(followUps) > 0 {
		if err := json.Unmarshal(followUps, &rec.FollowUps); err != nil {
			return corpus.QARecord{}, fmt.Errorf("parse follow-ups for %q: %w", rec.ID, err)
		}
	}
	return rec, nil
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}
