// Package main is the kensaku CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/hyperjump/kensaku/internal/cli"
	"github.com/hyperjump/kensaku/internal/config"
	"github.com/hyperjump/kensaku/internal/embedding"
	"github.com/hyperjump/kensaku/internal/indexer"
	"github.com/hyperjump/kensaku/internal/metrics"
	"github.com/hyperjump/kensaku/internal/search"
	"github.com/hyperjump/kensaku/internal/server"
	"github.com/hyperjump/kensaku/internal/storage"
	"github.com/hyperjump/kensaku/internal/vector"
	"github.com/hyperjump/kensaku/internal/watcher"
	"github.com/hyperjump/kensaku/pkg/utils"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/kensaku/config.yaml"
	defaultServerURL  = "http://localhost:8080"
)

// loadConfig loads config from path. When path is the default, ./config.yaml is preferred if
// present, and a missing default file yields the built-in defaults. Returns the config and the
// path actually loaded ("" for built-in defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "seed":
		runSeed()
	case "fetch":
		runFetch()
	case "delete":
		runDelete()
	case "stats":
		runStats()
	case "version", "--version", "-v":
		fmt.Printf("kensaku version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid config", zap.Error(err))
	}
	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics()
	if err := m.Register(registry); err != nil {
		logger.Fatal("Failed to register metrics", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	components, err := initializeComponents(ctx, cfg, logger, m)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	sessions, err := storage.NewSQLiteSessionStore(cfg.Storage.SessionDBPath)
	if err != nil {
		logger.Fatal("Failed to open session store", zap.Error(err))
	}
	defer sessions.Close()

	var watchSvc *watcher.Watcher
	if len(cfg.Seed.Directories) > 0 {
		watchSvc = newSeedWatcher(cfg, components.Seeder, logger)
		if err := watchSvc.Start(ctx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		watchSvc.SyncExistingFiles(ctx)
	}

	srv := server.NewServer(
		components.Selector,
		components.Search,
		cfg.Server,
		logger,
		server.WithSessions(sessions),
		server.WithGatherer(registry),
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if watchSvc != nil {
		watchSvc.Stop()
	}
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}

// newSeedWatcher keeps the index in step with the configured seed directories.
func newSeedWatcher(cfg *config.Config, seeder *indexer.Seeder, logger *zap.Logger) *watcher.Watcher {
	return watcher.New(
		watcher.Config{
			Roots:      cfg.Seed.Directories,
			Extensions: cfg.Seed.Extensions,
			Recursive:  cfg.Seed.RecursiveOrDefault(),
		},
		func(ctx context.Context, path string) {
			if _, err := seeder.SeedFile(ctx, path); err != nil {
				logger.Warn("seed file failed", zap.String("path", path), zap.Error(err))
			}
		},
		func(ctx context.Context, path string) {
			if err := seeder.RemoveFile(ctx, path); err != nil {
				logger.Warn("remove seed file failed", zap.String("path", path), zap.Error(err))
			}
		},
		watcher.WithLogger(logger),
	)
}

func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: kensaku search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  kensaku search dynamic programming
  kensaku search --type practice --difficulty easy two pointers
  kensaku search --top-k 10 --min-similarity 0.3 --output json graph traversal
  kensaku search --server "" binary search   # query the configured backend directly
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// reorderArgs moves flags that appear after positional arguments to the front so that
// flag.Parse sees them; the flag package stops at the first non-flag argument.
func reorderArgs(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// optionalString returns nil for an empty flag value so the filter is omitted.
func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return search.String(s)
}

// searchRequest mirrors the body accepted by POST /api/v1/search.
type searchRequest struct {
	Query         string  `json:"query"`
	TopK          int     `json:"top_k,omitempty"`
	Type          *string `json:"type,omitempty"`
	Category      *string `json:"category,omitempty"`
	Difficulty    *string `json:"difficulty,omitempty"`
	MinSimilarity float64 `json:"min_similarity,omitempty"`
}

type searchResponse struct {
	Results []vector.Match `json:"results"`
	Count   int            `json:"count"`
	Backend string         `json:"backend"`
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = query the configured backend directly)")
	topK := fs.Int("top-k", 0, "number of results (0 = config default)")
	entryType := fs.String("type", "", "only return entries of this type")
	category := fs.String("category", "", "only return entries in this category")
	difficulty := fs.String("difficulty", "", "only return entries of this difficulty")
	minSimilarity := fs.Float64("min-similarity", 0, "drop results scoring below this (0 = config default)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(reorderArgs(os.Args[2:]))

	query := buildSearchQuery(fs.Args())
	if query == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	opts := search.Options{
		TopK:          *topK,
		Type:          optionalString(*entryType),
		Category:      optionalString(*category),
		Difficulty:    optionalString(*difficulty),
		MinSimilarity: *minSimilarity,
	}

	if *serverURL != "" {
		response, err := searchViaHTTP(*serverURL, query, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteMatches(os.Stdout, response.Results, response.Backend, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ctx := context.Background()
	components, logger := mustInitialize(ctx, *configPath)
	defer logger.Sync()
	defer components.Close()

	matches, err := components.Search.SearchText(ctx, query, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteMatches(os.Stdout, matches, components.backendType(), format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL, query string, opts search.Options) (*searchResponse, error) {
	body, err := json.Marshal(searchRequest{
		Query:         query,
		TopK:          opts.TopK,
		Type:          opts.Type,
		Category:      opts.Category,
		Difficulty:    opts.Difficulty,
		MinSimilarity: opts.MinSimilarity,
	})
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(strings.TrimRight(serverURL, "/")+"/api/v1/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var response searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runSeed() {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	recursive := fs.Bool("recursive", true, "descend into subdirectories")
	quiet := fs.Bool("quiet", false, "do not render a progress bar")
	_ = fs.Parse(reorderArgs(os.Args[2:]))

	if fs.NArg() < 1 {
		fmt.Println("Usage: kensaku seed [flags] <file-or-directory>...")
		os.Exit(1)
	}

	ctx := context.Background()
	components, logger := mustInitialize(ctx, *configPath)
	defer logger.Sync()
	defer components.Close()

	files, err := collectSeedFiles(fs.Args(), components.Seeder, *recursive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Seed failed: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Println("No seed files found")
		return
	}
	if components.backendType() == vector.TypeMemory {
		fmt.Fprintln(os.Stderr, "No remote vector service available; records are held in memory and discarded on exit")
	}

	var progress indexer.ProgressFunc
	if !*quiet {
		progress = cli.NewProgress(os.Stderr, "Seeding")
	}
	total := 0
	for i, path := range files {
		n, err := components.Seeder.SeedFile(ctx, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "\nSeeding %s failed: %v\n", path, err)
			os.Exit(1)
		}
		total += n
		if progress != nil {
			progress(i+1, len(files))
		}
	}
	fmt.Printf("Seeded %d record(s) from %d file(s) into %s backend\n", total, len(files), components.backendType())
}

// collectSeedFiles expands paths into the seed files they name. Files given explicitly are
// always included; directories contribute the files the seeder accepts.
func collectSeedFiles(paths []string, seeder *indexer.Seeder, recursive bool) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d os.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				if path != p && !recursive {
					return filepath.SkipDir
				}
				return nil
			}
			if seeder.Accepts(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func runFetch() {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(reorderArgs(os.Args[2:]))

	if fs.NArg() < 1 {
		fmt.Println("Usage: kensaku fetch [flags] <id>...")
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx := context.Background()
	components, logger := mustInitialize(ctx, *configPath)
	defer logger.Sync()
	defer components.Close()

	backend, err := components.Selector.Backend()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fetch failed: %v\n", err)
		os.Exit(1)
	}
	records, err := backend.Fetch(ctx, fs.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fetch failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteRecords(os.Stdout, records, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(reorderArgs(os.Args[2:]))

	if fs.NArg() < 1 {
		fmt.Println("Usage: kensaku delete [flags] <id>...")
		os.Exit(1)
	}

	ctx := context.Background()
	components, logger := mustInitialize(ctx, *configPath)
	defer logger.Sync()
	defer components.Close()

	backend, err := components.Selector.Backend()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Deletion failed: %v\n", err)
		os.Exit(1)
	}
	if err := backend.Delete(ctx, fs.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Deletion failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Deleted %d id(s) from %s backend\n", fs.NArg(), backend.Type())
}

// statusResponse is the subset of GET /api/v1/status the CLI prints.
type statusResponse struct {
	State   string       `json:"state"`
	Reason  string       `json:"reason,omitempty"`
	Backend string       `json:"backend"`
	Vectors vector.Stats `json:"vectors"`
}

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = query the configured backend directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Stats failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		ctx := context.Background()
		components, logger := mustInitialize(ctx, *configPath)
		defer logger.Sync()
		defer components.Close()

		backend, err := components.Selector.Backend()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Stats failed: %v\n", err)
			os.Exit(1)
		}
		stats, err := backend.Stats(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Stats failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{
			State:   components.Selector.State().String(),
			Backend: backend.Type(),
			Vectors: stats,
		}
	}

	if err := cli.WriteStats(os.Stdout, status.Backend, status.State, status.Vectors, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
	if status.Reason != "" && format == cli.OutputText {
		fmt.Printf("Fallback:      %s\n", status.Reason)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(strings.TrimRight(serverURL, "/") + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// Components holds initialized services.
type Components struct {
	Embedder embedding.Embedder
	Selector *vector.Selector
	Search   *search.Service
	Seeder   *indexer.Seeder
}

func (c *Components) Close() {
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

func (c *Components) backendType() string {
	backend, err := c.Selector.Backend()
	if err != nil {
		return ""
	}
	return backend.Type()
}

// mustInitialize loads config and builds components for a one-shot command, exiting on failure.
func mustInitialize(ctx context.Context, configPath string) (*Components, *zap.Logger) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewCLILogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(ctx, cfg, logger, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	return components, logger
}

// initializeComponents builds the embedder, selects the vector backend, and wires the search
// and seed services on top. m may be nil.
func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) (*Components, error) {
	logger = utils.OrNop(logger)
	embedder := newEmbedder(cfg.Embedding, logger)
	if embedder.Dimensions() != cfg.Embedding.Dimensions {
		_ = embedder.Close()
		return nil, fmt.Errorf("%w: embedder produces %d, index expects %d",
			embedding.ErrDimensionMismatch, embedder.Dimensions(), cfg.Embedding.Dimensions)
	}

	selector := vector.NewSelector(
		vector.SelectorConfig{
			URL:          cfg.Remote.URL,
			Token:        cfg.Remote.Token,
			Timeout:      cfg.Remote.Timeout,
			ProbeTimeout: cfg.Remote.ProbeTimeout,
			Dimensions:   cfg.Embedding.Dimensions,
		},
		vector.WithLogger(logger),
		vector.WithBackendWrapper(func(b vector.Backend) vector.Backend {
			return metrics.InstrumentBackend(b, m)
		}),
	)
	backend := selector.Init(ctx)
	m.SetSelected(backend.Type())

	svc := search.NewService(selector, embedder, cfg.Search,
		search.WithLogger(logger),
		search.WithMetrics(m),
	)
	seeder := indexer.NewSeeder(selector, embedder,
		indexer.WithLogger(logger),
		indexer.WithBatchSize(cfg.Batch.Size),
		indexer.WithExtensions(cfg.Seed.Extensions),
	)
	return &Components{
		Embedder: embedder,
		Selector: selector,
		Search:   svc,
		Seeder:   seeder,
	}, nil
}

// newEmbedder returns the configured embedder behind an LRU cache. An ONNX model that cannot
// be loaded falls back to the hash embedder.
func newEmbedder(cfg config.EmbeddingConfig, logger *zap.Logger) embedding.Embedder {
	var inner embedding.Embedder
	if cfg.Provider == config.ProviderONNX {
		onnx, err := embedding.NewONNXEmbedder(embedding.ONNXConfig{
			ModelPath:  cfg.ModelPath,
			Dimensions: cfg.Dimensions,
			MaxTokens:  cfg.MaxTokens,
		})
		if err != nil {
			logger.Warn("onnx embedder unavailable, using hash embedder",
				zap.String("model_path", cfg.ModelPath),
				zap.Error(err))
		} else {
			inner = onnx
		}
	}
	if inner == nil {
		inner = embedding.NewHashEmbedder(cfg.Dimensions)
	}
	return embedding.NewCachedEmbedder(inner, cfg.CacheSize, cfg.Workers)
}

func printUsage() {
	fmt.Println(`kensaku - semantic retrieval over a local or remote vector index

Usage:
  kensaku server [flags]             Start the HTTP server
  kensaku search [flags] <query>     Search the knowledge base
  kensaku seed [flags] <path>...     Seed entries from JSON, JSONL or YAML files
  kensaku fetch [flags] <id>...      Print stored records
  kensaku delete [flags] <id>...     Delete records
  kensaku stats [flags]              Show backend and index size
  kensaku version                    Show version
  kensaku help                       Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/kensaku/config.yaml)
  --debug            Enable debug logging

Search Flags:
  --config string          Config file path (direct mode)
  --server string          Server URL (default: http://localhost:8080). Use --server "" to query the backend directly.
  --top-k int              Number of results (default from config)
  --type string            Filter by entry type
  --category string        Filter by category
  --difficulty string      Filter by difficulty
  --min-similarity float   Minimum similarity score (default from config)
  --output string          Output format: text or json (default: text)

Seed Flags:
  --config string    Config file path
  --recursive        Descend into subdirectories (default: true)
  --quiet            Do not render a progress bar

Fetch/Delete Flags:
  --config string    Config file path
  --output string    Output format for fetch: text or json (default: text)

Stats Flags:
  --config string    Config file path (direct mode)
  --server string    Server URL (default: http://localhost:8080). Use --server "" for direct mode.
  --output string    Output format: text or json (default: text)

Environment:
  KENSAKU_VECTOR_URL     Remote vector service URL (overrides remote.url)
  KENSAKU_VECTOR_TOKEN   Remote vector service token (overrides remote.token)

Examples:
  kensaku server
  kensaku search "sliding window"
  kensaku search --type practice --output json "two pointers"
  kensaku seed ./knowledge
  kensaku fetch 3f2b6c1e-...
  kensaku stats --output json`)
}
