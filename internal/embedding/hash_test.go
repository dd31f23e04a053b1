package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/hyperjump/kensaku/pkg/utils"
)

func TestHashEmbedder_Deterministic(t *testing.T) {
	e := NewHashEmbedder(1024)
	ctx := context.Background()
	a, err := e.Embed(ctx, "retrieval augmented generation")
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.Embed(ctx, "retrieval augmented generation")
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if math.Float32bits(a[i]) != math.Float32bits(b[i]) {
			t.Fatalf("component %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestHashEmbedder_Dimensions(t *testing.T) {
	e := NewHashEmbedder(1024)
	for _, text := range []string{"", "a", "a much longer piece of text with many words"} {
		emb, err := e.Embed(context.Background(), text)
		if err != nil {
			t.Fatalf("Embed(%q): %v", text, err)
		}
		if len(emb) != 1024 {
			t.Errorf("Embed(%q) len=%d, want 1024", text, len(emb))
		}
	}
	if NewHashEmbedder(0).Dimensions() != DefaultDimensions {
		t.Error("zero dimensions should fall back to default")
	}
}

func TestHashEmbedder_UnitLength(t *testing.T) {
	emb, _ := NewHashEmbedder(64).Embed(context.Background(), "unit")
	if norm := utils.L2Norm(emb); math.Abs(norm-1) > 1e-5 {
		t.Errorf("norm=%f, want 1", norm)
	}
}

func TestHashEmbedder_ReferenceValues(t *testing.T) {
	// "ab": h = 97*31 + 98 = 3105
	if got := StringHash("ab"); got != 3105 {
		t.Fatalf("StringHash(ab)=%d, want 3105", got)
	}
	emb, _ := NewHashEmbedder(3).Embed(context.Background(), "ab")
	raw := make([]float64, 3)
	var sum float64
	for i := range raw {
		raw[i] = math.Sin(3105+float64(i))*0.5 + 0.5
		sum += raw[i] * raw[i]
	}
	norm := math.Sqrt(sum)
	for i := range raw {
		if want := raw[i] / norm; math.Abs(float64(emb[i])-want) > 1e-6 {
			t.Errorf("component %d = %f, want %f", i, emb[i], want)
		}
	}
}

func TestStringHash_Wraps(t *testing.T) {
	if StringHash("") != 0 {
		t.Error("empty string should hash to 0")
	}
	long := "the quick brown fox jumps over the lazy dog"
	if h := StringHash(long); h < 0 || h > 1<<31 {
		t.Errorf("hash out of 32-bit range: %d", h)
	}
	if StringHash(long) != StringHash(long) {
		t.Error("hash should be deterministic")
	}
}

func TestHashEmbedder_EmbedBatchPreservesOrder(t *testing.T) {
	e := NewHashEmbedder(16)
	ctx := context.Background()
	texts := []string{"alpha", "beta", "gamma"}
	batch, err := e.EmbedBatch(ctx, texts)
	if err != nil {
		t.Fatal(err)
	}
	for i, text := range texts {
		single, _ := e.Embed(ctx, text)
		if single[0] != batch[i][0] {
			t.Errorf("batch[%d] does not match Embed(%q)", i, text)
		}
	}
}

func TestHashEmbedder_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewHashEmbedder(8).Embed(ctx, "x"); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func BenchmarkHashEmbedder_Embed(b *testing.B) {
	e := NewHashEmbedder(DefaultDimensions)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Embed(ctx, "benchmark query text for embedding")
	}
}

func BenchmarkCachedEmbedder_EmbedHit(b *testing.B) {
	e := NewCachedEmbedder(NewHashEmbedder(DefaultDimensions), 100, 4)
	ctx := context.Background()
	_, _ = e.Embed(ctx, "benchmark query text for embedding")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Embed(ctx, "benchmark query text for embedding")
	}
}
