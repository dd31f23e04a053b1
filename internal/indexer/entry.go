package indexer

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned by LoadEntries for extensions it cannot parse.
var ErrUnsupportedFormat = errors.New("unsupported seed file format")

// Entry is one knowledge-base item as written in a seed file.
type Entry struct {
	ID         string         `json:"id,omitempty" yaml:"id,omitempty"`
	Title      string         `json:"title" yaml:"title"`
	Content    string         `json:"content" yaml:"content"`
	Type       string         `json:"type,omitempty" yaml:"type,omitempty"`
	Category   string         `json:"category,omitempty" yaml:"category,omitempty"`
	Difficulty string         `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
	Tags       []string       `json:"tags,omitempty" yaml:"tags,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// EmbeddingText is the text embedded for the entry: title, newline, content.
func (e Entry) EmbeddingText() string {
	return e.Title + "\n" + e.Content
}

func (e Entry) validate() error {
	if strings.TrimSpace(e.Title) == "" && strings.TrimSpace(e.Content) == "" {
		return errors.New("title and content are both empty")
	}
	return nil
}

// entryFile is the wrapped form: {"entries": [...]}.
type entryFile struct {
	Entries []Entry `json:"entries" yaml:"entries"`
}

// LoadEntries parses a .json, .jsonl, .yaml or .yml seed file. JSON and YAML files may hold
// a list of entries or an object with an "entries" list; JSONL holds one entry per line.
func LoadEntries(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var entries []Entry
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		entries, err = parseJSON(data)
	case ".jsonl":
		entries, err = parseJSONL(data)
	case ".yaml", ".yml":
		entries, err = parseYAML(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	for i, e := range entries {
		if err := e.validate(); err != nil {
			return nil, fmt.Errorf("%s entry %d: %w", filepath.Base(path), i, err)
		}
	}
	return entries, nil
}

func parseJSON(data []byte) ([]Entry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var entries []Entry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, err
		}
		return entries, nil
	}
	var f entryFile
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return nil, err
	}
	return f.Entries, nil
}

func parseJSONL(data []byte) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(text, &e); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
	return entries, scanner.Err()
}

func parseYAML(data []byte) ([]Entry, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	if node.Content[0].Kind == yaml.SequenceNode {
		var entries []Entry
		if err := node.Decode(&entries); err != nil {
			return nil, err
		}
		return entries, nil
	}
	var f entryFile
	if err := node.Decode(&f); err != nil {
		return nil, err
	}
	return f.Entries, nil
}

func extensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}
