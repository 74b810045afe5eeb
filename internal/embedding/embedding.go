// Package embedding produces fixed-length identity vectors for faces and
// compares them by cosine similarity.
package embedding

import (
	"context"
	"math"
)

// Vector is a fixed-length identity embedding. It is opaque beyond its role
// in cosine similarity and is owned exclusively by the call that produced
// it; vectors are never cached across verifications.
type Vector []float32

// Provider is the external face-detection + embedding capability. A nil
// vector with a nil error means no face was detected or the image failed to
// decode; errors are reserved for unexpected backend failures and must be
// routed through the retry policy by the caller.
//
// A Provider holds a loaded model and is reusable across many sequential
// Embed calls without re-initialization. Implementations are not required
// to support unsynchronized concurrent calls.
type Provider interface {
	Embed(ctx context.Context, path string) (Vector, error)
	Close() error
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// It returns exactly 0.0 when either vector is nil or has zero norm rather
// than failing on a division by zero.
func CosineSimilarity(a, b Vector) float64 {
	if a == nil || b == nil || len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		av := float64(a[i])
		bv := float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
