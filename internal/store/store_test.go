package store_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/prepdeck/prepdeck/internal/corpus"
	"github.com/prepdeck/prepdeck/internal/store"
)

func TestGetByTopic_OnlyMatchingRecords(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	hooks, err := s.GetByTopic(ctx, "hooks")
	if err != nil {
		t.Fatalf("GetByTopic(hooks) error = %v", err)
	}
	if len(hooks) != 3 {
		t.Fatalf("GetByTopic(hooks) = %d records, want 3", len(hooks))
	}
	for _, rec := range hooks {
		if rec.Topic != corpus.TopicHooks {
			t.Errorf("record %q has topic %q, want hooks", rec.ID, rec.Topic)
		}
	}

	recon, err := s.GetByTopic(ctx, "reconciliation")
	if err != nil {
		t.Fatalf("GetByTopic(reconciliation) error = %v", err)
	}
	if len(recon) != 5 {
		t.Errorf("GetByTopic(reconciliation) = %d records, want 5", len(recon))
	}
}

func TestGetByTopic_ValidTopicNoRecords(t *testing.T) {
	s := newTestStore(t)

	recs, err := s.GetByTopic(t.Context(), "portals")
	if err != nil {
		t.Fatalf("GetByTopic(portals) error = %v; a valid empty topic is not an error", err)
	}
	if len(recs) != 0 {
		t.Errorf("GetByTopic(portals) = %d records, want 0", len(recs))
	}
}

func TestGetByTopic_UnknownTopic(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetByTopic(t.Context(), "jquery")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("GetByTopic(jquery) error = %v, want ErrNotFound", err)
	}

	var nfe *store.NotFoundError
	if !errors.As(err, &nfe) {
		t.Fatalf("error should be a *NotFoundError, got %T", err)
	}
	if nfe.Kind != "topic" || nfe.Key != "jquery" {
		t.Errorf("NotFoundError = %+v, want topic/jquery", nfe)
	}
}

func TestGetByID_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	topics, err := s.ListTopics(ctx)
	if err != nil {
		t.Fatalf("ListTopics() error = %v", err)
	}
	if len(topics) != 11 {
		t.Fatalf("ListTopics() = %d topics, want the fixed set of 11", len(topics))
	}

	for _, topic := range topics {
		recs, err := s.GetByTopic(ctx, string(topic))
		if err != nil {
			t.Fatalf("GetByTopic(%s) error = %v", topic, err)
		}
		for _, rec := range recs {
			got, err := s.GetByID(ctx, rec.ID)
			if err != nil {
				t.Fatalf("GetByID(%s) error = %v", rec.ID, err)
			}
			if got.ID != rec.ID {
				t.Errorf("GetByID(%s).ID = %s", rec.ID, got.ID)
			}
			if !reflect.DeepEqual(got, rec) {
				t.Errorf("GetByID(%s) differs from the topic listing", rec.ID)
			}
		}
	}
}

func TestGetByID_NotFound(t *testing.T) {
	s := newTestStore(t)

	rec, err := s.GetByID(t.Context(), "q99")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("GetByID(q99) error = %v, want ErrNotFound", err)
	}
	if rec.ID != "" || rec.Question != "" {
		t.Errorf("GetByID(q99) = %+v, want zero record on error", rec)
	}
}

func TestLookups_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	first, err := s.GetByTopic(ctx, "hooks")
	if err != nil {
		t.Fatalf("GetByTopic() error = %v", err)
	}
	for range 3 {
		again, err := s.GetByTopic(ctx, "hooks")
		if err != nil {
			t.Fatalf("GetByTopic() error = %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatal("repeated GetByTopic calls returned different results")
		}
	}
}

func TestSample(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	recs, err := s.Sample(ctx, "reconciliation", 2)
	if err != nil {
		t.Fatalf("Sample() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("Sample(n=2) = %d records, want 2", len(recs))
	}
	seen := map[string]bool{}
	for _, rec := range recs {
		if rec.Topic != corpus.TopicReconciliation {
			t.Errorf("sampled record %q has topic %q", rec.ID, rec.Topic)
		}
		if seen[rec.ID] {
			t.Errorf("record %q sampled twice", rec.ID)
		}
		seen[rec.ID] = true
	}
}

func TestSample_MoreThanAvailable(t *testing.T) {
	s := newTestStore(t)

	recs, err := s.Sample(t.Context(), "hooks", 100)
	if err != nil {
		t.Fatalf("Sample() error = %v", err)
	}
	if len(recs) != 3 {
		t.Errorf("Sample(n=100) = %d records, want all 3", len(recs))
	}
}

func TestSample_WholeCorpus(t *testing.T) {
	s := newTestStore(t)

	recs, err := s.Sample(t.Context(), "", 4)
	if err != nil {
		t.Fatalf("Sample() error = %v", err)
	}
	if len(recs) != 4 {
		t.Errorf("Sample(all, n=4) = %d records, want 4", len(recs))
	}
}

func TestSample_UnknownTopic(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Sample(t.Context(), "jquery", 1)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Sample(jquery) error = %v, want ErrNotFound", err)
	}
}

func TestSetCorpus_Swap(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	dir := t.TempDir()
	writeRecord(t, dir, "solo.yaml", "q-solo", "forms", "How do controlled inputs work?")
	c, err := corpus.Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	s.SetCorpus(c)

	if _, err := s.GetByID(ctx, "q-hooks-1"); !errors.Is(err, store.ErrNotFound) {
		t.Error("old corpus should be gone after swap")
	}
	if _, err := s.GetByID(ctx, "q-solo"); err != nil {
		t.Errorf("GetByID(q-solo) error = %v after swap", err)
	}
}

// newTestStore builds a memory store over a corpus with 3 hooks and 5
// reconciliation records.
func newTestStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	dir := t.TempDir()

	writeRecord(t, dir, "h1.yaml", "q-hooks-1", "hooks", "What does useState return?")
	writeRecord(t, dir, "h2.yaml", "q-hooks-2", "hooks", "When does useEffect run?")
	writeRecord(t, dir, "h3.yaml", "q-hooks-3", "hooks", "What is a custom hook?")
	for i := 1; i <= 5; i++ {
		name := fmt.Sprintf("recon/r%d.yaml", i)
		writeRecord(t, dir, name, fmt.Sprintf("q-recon-%d", i), "reconciliation", "How does keyed diffing work?")
	}

	c, err := corpus.Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return store.NewMemoryStore(c)
}

func writeRecord(t *testing.T, dir, name, id, topic, question string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	content := "id: " + id + "\ntopic: " + topic + "\nquestion: \"" + question + "\"\nanswer: \"See the docs.\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
