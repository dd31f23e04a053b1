package main

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hyperjump/kensaku/internal/config"
	"github.com/hyperjump/kensaku/internal/search"
	"github.com/hyperjump/kensaku/internal/server"
	"github.com/hyperjump/kensaku/internal/vector"
)

const seedJSON = `[
  {"title": "Two Pointers", "content": "Walk two indices toward each other.", "type": "practice", "difficulty": "easy"},
  {"title": "Dependency Injection", "content": "Pass collaborators in.", "type": "framework"}
]`

// twoPointersText is the embedding text of the first entry in seedJSON.
const twoPointersText = "Two Pointers\nWalk two indices toward each other."

func TestReorderArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after query are moved first",
			args:     []string{"sliding window", "-top-k", "3"},
			expected: []string{"-top-k", "3", "sliding window"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-top-k", "3", "sliding window"},
			expected: []string{"-top-k", "3", "sliding window"},
		},
		{
			name:     "query only returns unchanged",
			args:     []string{"sliding window"},
			expected: []string{"sliding window"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "multiple positionals then flags",
			args:     []string{"one", "two", "-type", "practice"},
			expected: []string{"-type", "practice", "one", "two"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reorderArgs(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("reorderArgs() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"graphs"}, "graphs"},
		{"multiple words", []string{"binary", "search"}, "binary search"},
		{"single quoted phrase", []string{"binary search"}, "binary search"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildSearchQuery(tt.args)
			if got != tt.expected {
				t.Errorf("buildSearchQuery(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func TestOptionalString(t *testing.T) {
	if optionalString("") != nil {
		t.Error("empty value should be nil")
	}
	if got := optionalString("practice"); got == nil || *got != "practice" {
		t.Errorf("optionalString(practice) = %v", got)
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// t.TempDir may sit behind a symlink (macOS /var -> /private/var).
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if !cfg.Debug {
		t.Error("debug should be true from cwd config.yaml")
	}
}

func TestLoadConfig_defaultsWhenNoFile(t *testing.T) {
	if _, err := os.Stat(defaultConfigPath); err == nil {
		t.Skip("a config is installed at the default path")
	}
	chdir(t, t.TempDir())

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != "" {
		t.Errorf("resolved = %q, want empty for built-in defaults", resolved)
	}
	if cfg.Embedding.Dimensions != config.DefaultDimensions || cfg.Server.Port != config.DefaultPort {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
}

func TestLoadConfig_explicitMissingPathFails(t *testing.T) {
	if _, _, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestInitializeComponents_localFallback(t *testing.T) {
	components := newTestComponents(t)

	if components.Selector.State() != vector.StateLocal {
		t.Errorf("state = %v, want local", components.Selector.State())
	}
	if components.backendType() != vector.TypeMemory {
		t.Errorf("backend = %q, want memory", components.backendType())
	}
	if components.Embedder.Dimensions() != 16 {
		t.Errorf("dimensions = %d, want 16", components.Embedder.Dimensions())
	}
}

func TestInitializeComponents_onnxFallsBackToHash(t *testing.T) {
	cfg := testConfig()
	cfg.Embedding.Provider = config.ProviderONNX
	cfg.Embedding.ModelPath = filepath.Join(t.TempDir(), "missing.onnx")

	components, err := initializeComponents(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer components.Close()
	vec, err := components.Embedder.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if len(vec) != 16 {
		t.Errorf("len = %d, want 16", len(vec))
	}
}

func TestSeedAndSearch(t *testing.T) {
	ctx := context.Background()
	components := newTestComponents(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "entries.json")
	if err := os.WriteFile(path, []byte(seedJSON), 0600); err != nil {
		t.Fatal(err)
	}
	n, err := components.Seeder.SeedFile(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("seeded %d, want 2", n)
	}

	matches, err := components.Search.SearchText(ctx, twoPointersText, search.Options{TopK: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].Metadata["title"] != "Two Pointers" {
		t.Fatalf("matches = %+v", matches)
	}

	matches, err = components.Search.SearchText(ctx, twoPointersText, search.Options{Type: search.String("framework")})
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].Metadata["type"] != "framework" {
		t.Errorf("filtered matches = %+v", matches)
	}
}

func TestCollectSeedFiles(t *testing.T) {
	components := newTestComponents(t)
	dir := t.TempDir()
	nested := filepath.Join(dir, "nested")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{
		filepath.Join(dir, "a.json"),
		filepath.Join(dir, "notes.txt"),
		filepath.Join(nested, "b.yaml"),
	} {
		if err := os.WriteFile(p, []byte("[]"), 0600); err != nil {
			t.Fatal(err)
		}
	}
	explicit := filepath.Join(t.TempDir(), "explicit.txt")
	if err := os.WriteFile(explicit, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	files, err := collectSeedFiles([]string{dir, explicit}, components.Seeder, true)
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(files)
	want := []string{filepath.Join(dir, "a.json"), filepath.Join(nested, "b.yaml"), explicit}
	sort.Strings(want)
	if !reflect.DeepEqual(files, want) {
		t.Errorf("files = %v, want %v", files, want)
	}

	files, err = collectSeedFiles([]string{dir}, components.Seeder, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0] != filepath.Join(dir, "a.json") {
		t.Errorf("non-recursive files = %v", files)
	}

	if _, err := collectSeedFiles([]string{filepath.Join(dir, "missing")}, components.Seeder, true); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestSearchAndStatusViaHTTP(t *testing.T) {
	ctx := context.Background()
	components := newTestComponents(t)
	path := filepath.Join(t.TempDir(), "entries.json")
	if err := os.WriteFile(path, []byte(seedJSON), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := components.Seeder.SeedFile(ctx, path); err != nil {
		t.Fatal(err)
	}

	srv := server.NewServer(components.Selector, components.Search, config.ServerConfig{}, nil,
		server.WithGatherer(prometheus.NewRegistry()))
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := searchViaHTTP(ts.URL, twoPointersText, search.Options{TopK: 5, Difficulty: search.String("easy")})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Backend != vector.TypeMemory || resp.Count != 1 || resp.Results[0].Metadata["title"] != "Two Pointers" {
		t.Errorf("search response = %+v", resp)
	}

	status, err := statusViaHTTP(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	if status.State != "local" || status.Backend != vector.TypeMemory || status.Vectors.Count != 2 {
		t.Errorf("status = %+v", status)
	}
	if status.Reason == "" {
		t.Error("local fallback should report a reason")
	}

	if _, err := searchViaHTTP(ts.URL, "", search.Options{}); err == nil {
		t.Error("expected error for empty query")
	}
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Remote = config.RemoteConfig{}
	cfg.Embedding.Provider = config.ProviderHash
	cfg.Embedding.Dimensions = 16
	return cfg
}

func newTestComponents(t *testing.T) *Components {
	t.Helper()
	components, err := initializeComponents(context.Background(), testConfig(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(components.Close)
	return components
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
}
