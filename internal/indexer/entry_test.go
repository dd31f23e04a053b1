package indexer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeSeed(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadEntries_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"json array", "kb.json", `[{"title":"Retries","content":"Use backoff","type":"practice","tags":["net"]},{"title":"Chi","content":"Router","type":"framework"}]`},
		{"json wrapped", "kb.json", `{"entries":[{"title":"Retries","content":"Use backoff","type":"practice","tags":["net"]},{"title":"Chi","content":"Router","type":"framework"}]}`},
		{"jsonl", "kb.jsonl", "{\"title\":\"Retries\",\"content\":\"Use backoff\",\"type\":\"practice\",\"tags\":[\"net\"]}\n\n{\"title\":\"Chi\",\"content\":\"Router\",\"type\":\"framework\"}\n"},
		{"yaml list", "kb.yaml", `
- title: Retries
  content: Use backoff
  type: practice
  tags: [net]
- title: Chi
  content: Router
  type: framework
`},
		{"yml wrapped", "kb.yml", `
entries:
  - title: Retries
    content: Use backoff
    type: practice
    tags: [net]
  - title: Chi
    content: Router
    type: framework
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := LoadEntries(writeSeed(t, tt.file, tt.content))
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 2 {
				t.Fatalf("got %d entries", len(entries))
			}
			if entries[0].Title != "Retries" || entries[0].Type != "practice" || len(entries[0].Tags) != 1 {
				t.Errorf("first entry: %+v", entries[0])
			}
			if entries[1].Type != "framework" {
				t.Errorf("second entry: %+v", entries[1])
			}
		})
	}
}

func TestLoadEntries_Metadata(t *testing.T) {
	path := writeSeed(t, "kb.yaml", `
- id: fixed-1
  title: T
  content: C
  difficulty: beginner
  metadata:
    author: kim
    version: 2
`)
	entries, err := LoadEntries(path)
	if err != nil {
		t.Fatal(err)
	}
	e := entries[0]
	if e.ID != "fixed-1" || e.Difficulty != "beginner" {
		t.Errorf("entry: %+v", e)
	}
	if e.Metadata["author"] != "kim" || e.Metadata["version"] != 2 {
		t.Errorf("metadata: %v", e.Metadata)
	}
}

func TestLoadEntries_Errors(t *testing.T) {
	if _, err := LoadEntries(writeSeed(t, "kb.txt", "x")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := LoadEntries(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadEntries(writeSeed(t, "bad.jsonl", "{\"title\":\"ok\",\"content\":\"x\"}\n{broken\n")); err == nil {
		t.Error("expected error for malformed jsonl line")
	}
	if _, err := LoadEntries(writeSeed(t, "empty.json", `[{"title":" ","content":""}]`)); err == nil {
		t.Error("expected error for empty entry")
	}
}

func TestLoadEntries_EmptyFile(t *testing.T) {
	for _, name := range []string{"e.json", "e.jsonl", "e.yaml"} {
		entries, err := LoadEntries(writeSeed(t, name, ""))
		if err != nil || len(entries) != 0 {
			t.Errorf("%s: entries=%v err=%v", name, entries, err)
		}
	}
}

func TestEntry_EmbeddingText(t *testing.T) {
	if got := (Entry{Title: "T", Content: "body"}).EmbeddingText(); got != "T\nbody" {
		t.Errorf("EmbeddingText() = %q", got)
	}
}

func TestExtensionAllowed(t *testing.T) {
	tests := []struct {
		ext     string
		allowed []string
		want    bool
	}{
		{".json", []string{".json", ".yaml"}, true},
		{".JSON", []string{".json"}, true},
		{"yml", []string{".yml"}, true},
		{".txt", []string{".json"}, false},
		{"", []string{".json"}, false},
	}
	for _, tt := range tests {
		if got := extensionAllowed(tt.ext, tt.allowed); got != tt.want {
			t.Errorf("extensionAllowed(%q, %v) = %v, want %v", tt.ext, tt.allowed, got, tt.want)
		}
	}
}

func TestPreprocess(t *testing.T) {
	if got := Preprocess("  a\n\tb   c  "); got != "a b c" {
		t.Errorf("Preprocess() = %q", got)
	}
}
