package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// ErrEmbeddingFailed is returned by providers for transport, status and
// decoding failures.
var ErrEmbeddingFailed = errors.New("embedding failed")

// Provider turns texts into fixed-dimension, unit-length vectors. The result
// has one vector per input, in input order.
type Provider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	Model() string
}

func failed(backend string, cause error) error {
	return fmt.Errorf("%s: %w: %v", backend, ErrEmbeddingFailed, cause)
}

// Normalize scales vec to unit length. A zero vector is returned unchanged.
func Normalize(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)
	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}

// IsZero reports whether every component of vec is zero.
func IsZero(vec []float32) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}

func checkShape(backend string, got [][]float32, want, dim int) error {
	if len(got) != want {
		return failed(backend, fmt.Errorf("got %d vectors for %d inputs", len(got), want))
	}
	for i, v := range got {
		if dim > 0 && len(v) != dim {
			return failed(backend, fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), dim))
		}
	}
	return nil
}
