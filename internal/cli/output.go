// Package cli provides output formatting and progress reporting for the kensaku CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hyperjump/kensaku/internal/vector"
	"github.com/hyperjump/kensaku/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat accepts "text" or "json".
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text or json)", s)
}

const previewLen = 200

// WriteMatches writes search results to w.
func WriteMatches(w io.Writer, matches []vector.Match, backend string, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, map[string]any{"results": matches, "count": len(matches), "backend": backend})
	}
	fmt.Fprintf(w, "\nFound %d results (%s backend)\n\n", len(matches), backend)
	for i, m := range matches {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "Rank: %d | Score: %.4f\n", i+1, m.Score)
		fmt.Fprintf(w, "ID: %s\n", m.ID)
		writeMetadata(w, m.Metadata)
		fmt.Fprintln(w)
	}
	return nil
}

// WriteRecords writes fetched records to w. Vectors are summarised in text mode.
func WriteRecords(w io.Writer, records []vector.Record, format OutputFormat) error {
	if format == OutputJSON {
		wire := make([]vector.WireVector, len(records))
		for i, r := range records {
			wire[i] = vector.ToWire(r)
		}
		return writeJSON(w, map[string]any{"vectors": wire})
	}
	if len(records) == 0 {
		fmt.Fprintln(w, "No records found")
		return nil
	}
	for _, r := range records {
		fmt.Fprintf(w, "ID: %s (%d dimensions)\n", r.ID, len(r.Values))
		writeMetadata(w, r.Metadata)
		fmt.Fprintln(w)
	}
	return nil
}

// WriteStats writes backend statistics to w.
func WriteStats(w io.Writer, backend, state string, stats vector.Stats, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, map[string]any{"backend": backend, "state": state, "vectors": stats})
	}
	fmt.Fprintf(w, "Backend:       %s (%s)\n", backend, state)
	fmt.Fprintf(w, "Vectors:       %d\n", stats.Count)
	fmt.Fprintf(w, "Total vectors: %d\n", stats.TotalCount)
	return nil
}

func writeMetadata(w io.Writer, md vector.Metadata) {
	if title, ok := md["title"].(string); ok && title != "" {
		fmt.Fprintf(w, "Title: %s\n", title)
	}
	keys := make([]string, 0, len(md))
	for k := range md {
		if k == "title" || k == "content" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s: %v\n", k, md[k])
	}
	if content, ok := md["content"].(string); ok && content != "" {
		fmt.Fprintf(w, "\n%s\n", utils.Truncate(content, previewLen))
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
