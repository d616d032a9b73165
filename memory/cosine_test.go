package memory_test

import (
	"math"
	"testing"

	"github.com/bigsk1/ollama-tools/memory"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"zero vector", []float32{0, 0, 0}, []float32{1, 2, 3}, 0},
		{"both zero", []float32{0, 0}, []float32{0, 0}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := memory.Cosine(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cosine(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCosine_MismatchedLengthsUseCommonPrefix(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{1, 0}

	got := memory.Cosine(a, b)
	if math.Abs(got-1) > 1e-9 {
		t.Errorf("Cosine over common prefix = %v, want 1", got)
	}
}

func TestCosine_ScaleInvariant(t *testing.T) {
	a := []float32{0.3, -0.2, 0.9}
	b := []float32{0.6, -0.4, 1.8}

	got := memory.Cosine(a, b)
	if math.Abs(got-1) > 1e-6 {
		t.Errorf("Cosine of scaled vector = %v, want 1", got)
	}
}
