package utils

import (
	"math"
	"testing"
)

func TestL2Norm(t *testing.T) {
	if got := L2Norm([]float32{3, 4}); got != 5 {
		t.Errorf("L2Norm = %f, want 5", got)
	}
	if got := L2Norm(nil); got != 0 {
		t.Errorf("L2Norm(nil) = %f, want 0", got)
	}
}

func TestNormalizeL2(t *testing.T) {
	x := []float32{3, 4}
	if !NormalizeL2(x) {
		t.Fatal("expected normalization")
	}
	if math.Abs(L2Norm(x)-1) > 1e-6 {
		t.Errorf("norm after normalize = %f", L2Norm(x))
	}

	zero := []float32{0, 0, 0}
	if NormalizeL2(zero) {
		t.Error("zero vector should not be normalized")
	}
	for _, v := range zero {
		if v != 0 {
			t.Errorf("zero vector modified: %v", zero)
		}
	}
}
