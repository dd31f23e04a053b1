package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/kensaku/internal/embedding"
	"github.com/hyperjump/kensaku/internal/fileid"
	"github.com/hyperjump/kensaku/internal/vector"
)

// Metadata keys written for every seeded record.
const (
	MetaTitle      = "title"
	MetaContent    = "content"
	MetaType       = "type"
	MetaCategory   = "category"
	MetaDifficulty = "difficulty"
	MetaTags       = "tags"
	MetaIndexedAt  = "indexed_at"
	MetaSource     = "source"
)

// BackendSource resolves the active backend. *vector.Selector implements it.
type BackendSource interface {
	Backend() (vector.Backend, error)
}

// Seeder embeds knowledge-base entries and upserts them into the selected backend.
// It remembers which ids came from which file so a removed file can be unindexed.
type Seeder struct {
	backends   BackendSource
	embedder   embedding.Embedder
	batchSize  int
	extensions []string
	logger     *zap.Logger
	now        func() time.Time

	mu    sync.Mutex
	files map[string][]string // absolute path -> record ids
}

// SeederOption configures a Seeder.
type SeederOption func(*Seeder)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) SeederOption {
	return func(s *Seeder) { s.logger = l }
}

// WithBatchSize sets the number of records per upsert call.
func WithBatchSize(n int) SeederOption {
	return func(s *Seeder) { s.batchSize = n }
}

// WithExtensions restricts SeedDirectory to files with these extensions.
func WithExtensions(exts []string) SeederOption {
	return func(s *Seeder) { s.extensions = exts }
}

// NewSeeder creates a seeder with the given dependencies.
func NewSeeder(backends BackendSource, embedder embedding.Embedder, opts ...SeederOption) *Seeder {
	s := &Seeder{
		backends:   backends,
		embedder:   embedder,
		batchSize:  DefaultBatchSize,
		extensions: []string{".json", ".jsonl", ".yaml", ".yml"},
		logger:     zap.NewNop(),
		now:        time.Now,
		files:      make(map[string][]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SeedEntries embeds every entry in one batch call and upserts the resulting records.
// Entries without an ID get a random UUID.
func (s *Seeder) SeedEntries(ctx context.Context, entries []Entry, onProgress ProgressFunc) (int, error) {
	records, err := s.buildRecords(ctx, entries, func(int) string { return uuid.NewString() }, "")
	if err != nil {
		return 0, err
	}
	return s.upsert(ctx, records, onProgress)
}

// SeedFile loads path and seeds its entries. Entries without an ID get an ID derived from the
// path and position, so seeding the same file again replaces rather than duplicates. Records
// seeded from an earlier version of the file that are no longer present are deleted.
func (s *Seeder) SeedFile(ctx context.Context, path string) (int, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	entries, err := LoadEntries(absPath)
	if err != nil {
		return 0, err
	}
	records, err := s.buildRecords(ctx, entries, func(i int) string { return fileid.EntryID(absPath, i) }, absPath)
	if err != nil {
		return 0, err
	}
	n, err := s.upsert(ctx, records, nil)
	if err != nil {
		return n, err
	}

	ids := make([]string, len(records))
	current := make(map[string]bool, len(records))
	for i, r := range records {
		ids[i] = r.ID
		current[r.ID] = true
	}
	s.mu.Lock()
	previous := s.files[absPath]
	s.files[absPath] = ids
	s.mu.Unlock()

	var stale []string
	for _, id := range previous {
		if !current[id] {
			stale = append(stale, id)
		}
	}
	if len(stale) > 0 {
		if err := s.deleteIDs(ctx, stale); err != nil {
			return n, err
		}
	}
	s.logger.Debug("seed file indexed",
		zap.String("path", absPath),
		zap.Int("records", n),
		zap.Int("stale_removed", len(stale)))
	return n, nil
}

// RemoveFile deletes every record previously seeded from path. Unknown paths are ignored.
func (s *Seeder) RemoveFile(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	s.mu.Lock()
	ids := s.files[absPath]
	delete(s.files, absPath)
	s.mu.Unlock()
	if len(ids) == 0 {
		return nil
	}
	if err := s.deleteIDs(ctx, ids); err != nil {
		return err
	}
	s.logger.Debug("seed file removed", zap.String("path", absPath), zap.Int("records", len(ids)))
	return nil
}

// SeedDirectory seeds every matching file under dir. Subdirectories are walked when recursive
// is true. It returns the number of files seeded and stops at the first error.
func (s *Seeder) SeedDirectory(ctx context.Context, dir string, recursive bool) (int, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return 0, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("not a directory: %s", absDir)
	}
	files := 0
	err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != absDir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !s.Accepts(path) {
			return nil
		}
		if _, err := s.SeedFile(ctx, path); err != nil {
			return err
		}
		files++
		return nil
	})
	return files, err
}

// Accepts reports whether path has one of the configured seed extensions.
func (s *Seeder) Accepts(path string) bool {
	return extensionAllowed(strings.ToLower(filepath.Ext(path)), s.extensions)
}

// Files returns the number of files currently tracked.
func (s *Seeder) Files() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

func (s *Seeder) buildRecords(ctx context.Context, entries []Entry, newID func(int) string, source string) ([]vector.Record, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.EmbeddingText()
	}
	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	indexedAt := s.now().UTC().Format(time.RFC3339)
	records := make([]vector.Record, len(entries))
	for i, e := range entries {
		id := e.ID
		if id == "" {
			id = newID(i)
		}
		md := vector.Metadata{}
		for k, v := range e.Metadata {
			md[k] = v
		}
		md[MetaTitle] = e.Title
		md[MetaContent] = Preprocess(e.Content)
		md[MetaType] = e.Type
		md[MetaCategory] = e.Category
		md[MetaDifficulty] = e.Difficulty
		md[MetaTags] = append([]string{}, e.Tags...)
		md[MetaIndexedAt] = indexedAt
		if source != "" {
			md[MetaSource] = source
		}
		records[i] = vector.Record{ID: id, Values: embeddings[i], Metadata: md}
	}
	return records, nil
}

func (s *Seeder) upsert(ctx context.Context, records []vector.Record, onProgress ProgressFunc) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	backend, err := s.backends.Backend()
	if err != nil {
		return 0, err
	}
	return BatchUpsert(ctx, backend, records, s.batchSize, onProgress)
}

func (s *Seeder) deleteIDs(ctx context.Context, ids []string) error {
	backend, err := s.backends.Backend()
	if err != nil {
		return err
	}
	if err := backend.Delete(ctx, ids); err != nil {
		return fmt.Errorf("delete seeded records: %w", err)
	}
	return nil
}
