// Package indexer loads knowledge-base entries, embeds them and writes them to the vector
// backend in fixed-size batches.
package indexer

import (
	"context"
	"fmt"

	"github.com/hyperjump/kensaku/internal/vector"
)

// DefaultBatchSize is the number of records per backend call when none is configured.
const DefaultBatchSize = 100

// ProgressFunc receives the number of records written so far and the total.
type ProgressFunc func(processed, total int)

// Batches calls fn with consecutive half-open ranges [start, end) covering 0..n, each at most
// size long, in order. It stops at the first error. A non-positive size means DefaultBatchSize.
func Batches(n, size int, fn func(start, end int) error) error {
	if size <= 0 {
		size = DefaultBatchSize
	}
	for start := 0; start < n; start += size {
		end := min(start+size, n)
		if err := fn(start, end); err != nil {
			return err
		}
	}
	return nil
}

// BatchUpsert writes records to backend one batch at a time and returns the number written.
// onProgress, when non-nil, is called after every batch. On error the count of records
// written by earlier batches is returned along with the error. Batches run sequentially.
func BatchUpsert(ctx context.Context, backend vector.Backend, records []vector.Record, batchSize int, onProgress ProgressFunc) (int, error) {
	total := len(records)
	written := 0
	err := Batches(total, batchSize, func(start, end int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := backend.Upsert(ctx, records[start:end])
		if err != nil {
			return fmt.Errorf("upsert batch [%d:%d]: %w", start, end, err)
		}
		written += n
		if onProgress != nil {
			onProgress(end, total)
		}
		return nil
	})
	return written, err
}
