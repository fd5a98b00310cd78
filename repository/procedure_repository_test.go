package repository

import (
	"strings"
	"testing"
)

func TestFormatVector(t *testing.T) {
	tests := []struct {
		name      string
		embedding []float64
		want      string
	}{
		{"empty", nil, "[]"},
		{"single", []float64{0.5}, "[0.500000]"},
		{"multiple", []float64{0.1, -0.2, 1}, "[0.100000,-0.200000,1.000000]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatVector(tt.embedding); got != tt.want {
				t.Errorf("formatVector(%v) = %q, want %q", tt.embedding, got, tt.want)
			}
		})
	}
}

func TestFormatVectorDimension(t *testing.T) {
	embedding := make([]float64, EmbeddingDimension)
	got := formatVector(embedding)

	if !strings.HasPrefix(got, "[") || !strings.HasSuffix(got, "]") {
		t.Fatalf("not a vector literal: %q", got[:20])
	}
	if n := strings.Count(got, ","); n != EmbeddingDimension-1 {
		t.Errorf("expected %d separators, got %d", EmbeddingDimension-1, n)
	}
}
