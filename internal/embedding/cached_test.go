package embedding

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

type countingEmbedder struct {
	*HashEmbedder
	calls atomic.Int64
	fail  string
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls.Add(1)
	if text == c.fail {
		return nil, errors.New("upstream unavailable")
	}
	return c.HashEmbedder.Embed(ctx, text)
}

func TestCachedEmbedder_Embed(t *testing.T) {
	inner := &countingEmbedder{HashEmbedder: NewHashEmbedder(8)}
	e := NewCachedEmbedder(inner, 10, 2)
	ctx := context.Background()
	first, err := e.Embed(ctx, "hello")
	if err != nil {
		t.Fatal(err)
	}
	second, _ := e.Embed(ctx, "hello")
	if inner.calls.Load() != 1 {
		t.Errorf("inner calls=%d, want 1", inner.calls.Load())
	}
	if first[0] != second[0] {
		t.Error("cached embedding differs")
	}
	if e.Dimensions() != 8 {
		t.Errorf("Dimensions=%d", e.Dimensions())
	}
}

func TestCachedEmbedder_EmbedBatchOrder(t *testing.T) {
	inner := &countingEmbedder{HashEmbedder: NewHashEmbedder(8)}
	e := NewCachedEmbedder(inner, 100, 3)
	ctx := context.Background()
	texts := []string{"one", "two", "three", "four", "five", "two"}
	_, _ = e.Embed(ctx, "three")

	batch, err := e.EmbedBatch(ctx, texts)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch) != len(texts) {
		t.Fatalf("len=%d", len(batch))
	}
	ref := NewHashEmbedder(8)
	for i, text := range texts {
		want, _ := ref.Embed(ctx, text)
		if batch[i][0] != want[0] || batch[i][7] != want[7] {
			t.Errorf("batch[%d] does not belong to %q", i, text)
		}
	}
}

func TestCachedEmbedder_EmbedBatchError(t *testing.T) {
	inner := &countingEmbedder{HashEmbedder: NewHashEmbedder(8), fail: "bad"}
	e := NewCachedEmbedder(inner, 100, 2)
	_, err := e.EmbedBatch(context.Background(), []string{"ok", "bad", "fine"})
	if err == nil {
		t.Fatal("expected error from failing text")
	}
}
