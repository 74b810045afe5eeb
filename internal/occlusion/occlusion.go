// Package occlusion compares the upper face region of two images as a
// secondary forensic signal. The upper region survives masks, beards, and
// lower-face disguises, so its similarity can support or refute the core
// verdict without replacing it.
package occlusion

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/embedding"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/logger"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/retry"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/pkg/models"
)

// Label is the combined forensic conclusion over the core verdict and the
// upper-face similarity.
type Label string

const (
	// LabelStrongSupportSame means the core verdict says same person and
	// the upper face agrees.
	LabelStrongSupportSame Label = "STRONG_SUPPORT_SAME"
	// LabelLikelySameNeedsReview means the core verdict is uncertain but
	// the upper face points toward the same person.
	LabelLikelySameNeedsReview Label = "LIKELY_SAME_NEEDS_REVIEW"
	// LabelStrongSupportDifferent means both signals point toward
	// different people.
	LabelStrongSupportDifferent Label = "STRONG_SUPPORT_DIFFERENT"
	// LabelInconclusive means the signals disagree or the core comparison
	// failed.
	LabelInconclusive Label = "INCONCLUSIVE_FORENSIC"
)

const (
	// SupportThreshold is the upper-face similarity above which the
	// secondary signal supports a same-person reading.
	SupportThreshold = 0.55
	// RefuteThreshold is the upper-face similarity below which the
	// secondary signal supports a different-person reading.
	RefuteThreshold = 0.40
)

// UpperFaceEmbedder is the external capability producing identity vectors
// from the upper face region only. The nil-vector convention matches
// embedding.Provider: nil with no error means nothing usable was found.
type UpperFaceEmbedder interface {
	EmbedUpperFace(ctx context.Context, path string) (embedding.Vector, error)
}

// Engine computes the upper-face similarity between two images.
type Engine struct {
	embedder   UpperFaceEmbedder
	embedRetry retry.Policy
}

// NewEngine builds an occlusion engine over the given embedder.
func NewEngine(embedder UpperFaceEmbedder) *Engine {
	return &Engine{
		embedder:   embedder,
		embedRetry: retry.EmbedPolicy(),
	}
}

// NewEngineWithPolicy builds an engine with an injected retry policy,
// used by tests.
func NewEngineWithPolicy(embedder UpperFaceEmbedder, embedRetry retry.Policy) *Engine {
	return &Engine{embedder: embedder, embedRetry: embedRetry}
}

// Similarity returns the cosine similarity of the two upper-face
// embeddings. A missing embedding on either side yields exactly 0.0;
// backend failures are returned as errors.
func (e *Engine) Similarity(ctx context.Context, path1, path2 string) (float64, error) {
	v1, err := retry.Do(ctx, e.embedRetry, "occlusion.embed", func() (embedding.Vector, error) {
		return e.embedder.EmbedUpperFace(ctx, path1)
	})
	if err != nil {
		return 0, fmt.Errorf("upper-face embedding failed for image1: %w", err)
	}
	v2, err := retry.Do(ctx, e.embedRetry, "occlusion.embed", func() (embedding.Vector, error) {
		return e.embedder.EmbedUpperFace(ctx, path2)
	})
	if err != nil {
		return 0, fmt.Errorf("upper-face embedding failed for image2: %w", err)
	}

	sim := embedding.CosineSimilarity(v1, v2)
	logger.WithFields(logrus.Fields{
		"upper_similarity": sim,
		"image1_embedded":  v1 != nil,
		"image2_embedded":  v2 != nil,
	}).Info("Upper-face comparison completed")
	return sim, nil
}

// Combine folds the core verdict and the upper-face similarity into one
// forensic label.
func Combine(verdict models.Verdict, upperSimilarity float64) Label {
	switch {
	case verdict.IsSame() && upperSimilarity >= SupportThreshold:
		return LabelStrongSupportSame
	case verdict == models.VerdictUncertain && upperSimilarity >= SupportThreshold:
		return LabelLikelySameNeedsReview
	case verdict == models.VerdictDifferent && upperSimilarity < RefuteThreshold:
		return LabelStrongSupportDifferent
	default:
		return LabelInconclusive
	}
}

// ForensicResult pairs the core verification result with the upper-face
// signal and the combined label.
type ForensicResult struct {
	Core            models.VerificationResult `json:"core"`
	UpperSimilarity float64                   `json:"upper_similarity"`
	UpperTime       float64                   `json:"upper_time"`
	Label           Label                     `json:"label"`
}

// Analyze runs the upper-face comparison against an already-computed core
// result and combines the two.
func (e *Engine) Analyze(ctx context.Context, core models.VerificationResult, path1, path2 string) (ForensicResult, error) {
	start := time.Now()
	sim, err := e.Similarity(ctx, path1, path2)
	if err != nil {
		return ForensicResult{}, err
	}
	return ForensicResult{
		Core:            core,
		UpperSimilarity: sim,
		UpperTime:       time.Since(start).Seconds(),
		Label:           Combine(core.Verdict, sim),
	}, nil
}

// Export flattens the result for structured consumers, using the same
// rounding conventions as the core result.
func (r *ForensicResult) Export() map[string]interface{} {
	return map[string]interface{}{
		"core":             r.Core.Export(),
		"upper_similarity": models.Round(r.UpperSimilarity, 3),
		"upper_time":       models.Round(r.UpperTime, 2),
		"label":            string(r.Label),
	}
}
