package indexer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/kensaku/internal/embedding"
	"github.com/hyperjump/kensaku/internal/vector"
)

type memorySource struct {
	backend vector.Backend
}

func (m memorySource) Backend() (vector.Backend, error) {
	if m.backend == nil {
		return nil, vector.ErrNotInitialized
	}
	return m.backend, nil
}

func newTestSeeder(t *testing.T, opts ...SeederOption) (*Seeder, *vector.MemoryBackend) {
	t.Helper()
	mem, err := vector.NewMemoryBackend(16)
	if err != nil {
		t.Fatal(err)
	}
	s := NewSeeder(memorySource{backend: mem}, embedding.NewHashEmbedder(16), opts...)
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s, mem
}

func count(t *testing.T, b vector.Backend) int {
	t.Helper()
	stats, err := b.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return stats.Count
}

func TestSeeder_SeedEntries(t *testing.T) {
	s, mem := newTestSeeder(t)
	ctx := context.Background()
	entries := []Entry{
		{ID: "retry", Title: "Retries", Content: "Use  exponential\nbackoff", Type: "practice", Category: "resilience", Difficulty: "beginner", Tags: []string{"net"}, Metadata: map[string]any{"author": "kim", "title": "ignored"}},
		{Title: "Chi", Content: "Lightweight router", Type: "framework"},
	}

	var last [2]int
	n, err := s.SeedEntries(ctx, entries, func(p, total int) { last = [2]int{p, total} })
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 || last != [2]int{2, 2} {
		t.Errorf("n=%d last progress=%v", n, last)
	}
	if count(t, mem) != 2 {
		t.Errorf("count = %d", count(t, mem))
	}

	recs, _ := mem.Fetch(ctx, []string{"retry"})
	if len(recs) != 1 {
		t.Fatal("entry with explicit ID not stored under that ID")
	}
	md := recs[0].Metadata
	if md[MetaTitle] != "Retries" || md[MetaContent] != "Use exponential backoff" {
		t.Errorf("title/content metadata: %v", md)
	}
	if md[MetaType] != "practice" || md[MetaCategory] != "resilience" || md[MetaDifficulty] != "beginner" {
		t.Errorf("classification metadata: %v", md)
	}
	if md[MetaIndexedAt] != "2026-03-01T12:00:00Z" {
		t.Errorf("indexed_at = %v", md[MetaIndexedAt])
	}
	if md["author"] != "kim" {
		t.Errorf("extra metadata lost: %v", md)
	}

	want, _ := embedding.NewHashEmbedder(16).Embed(ctx, "Retries\nUse  exponential\nbackoff")
	for i := range want {
		if recs[0].Values[i] != want[i] {
			t.Fatal("record vector should embed title + newline + raw content")
		}
	}

	results, _ := mem.Query(ctx, want, 5, vector.Filter{"type": "framework"})
	if len(results) != 1 || results[0].Metadata[MetaTitle] != "Chi" {
		t.Errorf("framework filter: %v", results)
	}
	if results[0].ID == "" {
		t.Error("generated ID should not be empty")
	}
}

func TestSeeder_SeedEntries_BackendUnavailable(t *testing.T) {
	s := NewSeeder(memorySource{}, embedding.NewHashEmbedder(4))
	_, err := s.SeedEntries(context.Background(), []Entry{{Title: "x", Content: "y"}}, nil)
	if !errors.Is(err, vector.ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
}

func TestSeeder_SeedFileAndRemove(t *testing.T) {
	s, mem := newTestSeeder(t, WithBatchSize(1))
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "kb.json")
	write := func(content string) {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	write(`[{"title":"A","content":"a"},{"title":"B","content":"b"},{"title":"C","content":"c"}]`)
	n, err := s.SeedFile(ctx, path)
	if err != nil || n != 3 {
		t.Fatalf("n=%d err=%v", n, err)
	}
	if count(t, mem) != 3 {
		t.Errorf("count = %d", count(t, mem))
	}

	// Re-seeding the same content replaces in place.
	if _, err := s.SeedFile(ctx, path); err != nil {
		t.Fatal(err)
	}
	if count(t, mem) != 3 {
		t.Errorf("re-seed should not duplicate: count = %d", count(t, mem))
	}

	// Shrinking the file removes the dropped entry.
	write(`[{"title":"A","content":"a"}]`)
	if _, err := s.SeedFile(ctx, path); err != nil {
		t.Fatal(err)
	}
	if count(t, mem) != 1 {
		t.Errorf("stale records should be removed: count = %d", count(t, mem))
	}

	if err := s.RemoveFile(ctx, path); err != nil {
		t.Fatal(err)
	}
	if count(t, mem) != 0 || s.Files() != 0 {
		t.Errorf("after RemoveFile: count=%d files=%d", count(t, mem), s.Files())
	}
	if err := s.RemoveFile(ctx, filepath.Join(dir, "unknown.json")); err != nil {
		t.Errorf("removing an unknown file: %v", err)
	}
}

func TestSeeder_SeedFileRecordsSource(t *testing.T) {
	s, mem := newTestSeeder(t)
	path := writeSeed(t, "kb.jsonl", `{"id":"x","title":"X","content":"x"}`)
	if _, err := s.SeedFile(context.Background(), path); err != nil {
		t.Fatal(err)
	}
	recs, _ := mem.Fetch(context.Background(), []string{"x"})
	if len(recs) != 1 || recs[0].Metadata[MetaSource] != path {
		t.Errorf("source metadata: %+v", recs)
	}
}

func TestSeeder_SeedDirectory(t *testing.T) {
	s, mem := newTestSeeder(t)
	dir := t.TempDir()
	nested := filepath.Join(dir, "nested")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		filepath.Join(dir, "a.json"):     `[{"title":"A","content":"a"}]`,
		filepath.Join(dir, "notes.txt"):  "ignored",
		filepath.Join(nested, "b.yaml"):  "- title: B\n  content: b\n",
		filepath.Join(nested, "c.jsonl"): `{"title":"C","content":"c"}`,
	}
	for p, c := range files {
		if err := os.WriteFile(p, []byte(c), 0644); err != nil {
			t.Fatal(err)
		}
	}

	n, err := s.SeedDirectory(context.Background(), dir, false)
	if err != nil || n != 1 {
		t.Fatalf("non-recursive: n=%d err=%v", n, err)
	}
	n, err = s.SeedDirectory(context.Background(), dir, true)
	if err != nil || n != 3 {
		t.Fatalf("recursive: n=%d err=%v", n, err)
	}
	if count(t, mem) != 3 {
		t.Errorf("count = %d", count(t, mem))
	}

	if _, err := s.SeedDirectory(context.Background(), filepath.Join(dir, "a.json"), true); err == nil {
		t.Error("expected error for non-directory")
	}
}

func TestSeeder_Accepts(t *testing.T) {
	s := NewSeeder(memorySource{}, embedding.NewHashEmbedder(4), WithExtensions([]string{".yaml"}))
	if !s.Accepts("/x/kb.YAML") || s.Accepts("/x/kb.json") {
		t.Error("Accepts should honor configured extensions")
	}
}
