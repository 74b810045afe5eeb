// Package verifier orchestrates 1:1 face verification: validation, quality
// analysis, embedding and geometry extraction, and adaptive thresholding
// into a single bounded-confidence verdict.
package verifier

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/embedding"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/geometry"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/logger"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/quality"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/retry"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/pkg/models"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/pkg/validation"
)

// Engine sequences one verification call. Stages run strictly sequentially
// because each stage's output gates the next. An Engine reuses its model
// handles across calls but does not support unsynchronized concurrent
// Verify calls; use Pool for concurrent deployments.
type Engine struct {
	cfg        Config
	validator  *validation.FileValidator
	quality    *quality.Analyzer
	embedder   embedding.Provider
	geometry   *geometry.Extractor
	embedRetry retry.Policy
}

// NewEngine builds an engine over the given external capabilities.
func NewEngine(cfg Config, embedder embedding.Provider, landmarks geometry.LandmarkSource) *Engine {
	return &Engine{
		cfg:        cfg,
		validator:  validation.NewFileValidator(),
		quality:    quality.NewAnalyzer(),
		embedder:   embedder,
		geometry:   geometry.NewExtractor(landmarks),
		embedRetry: retry.EmbedPolicy(),
	}
}

// NewEngineWithOptions builds an engine with injected components, used by
// tests and by deployments tuning the retry policies.
func NewEngineWithOptions(cfg Config, validator *validation.FileValidator, analyzer *quality.Analyzer,
	embedder embedding.Provider, extractor *geometry.Extractor, embedRetry retry.Policy) *Engine {
	return &Engine{
		cfg:        cfg,
		validator:  validator,
		quality:    analyzer,
		embedder:   embedder,
		geometry:   extractor,
		embedRetry: embedRetry,
	}
}

// Close releases the engine's model handles.
func (e *Engine) Close() error {
	return e.embedder.Close()
}

// Verify compares the faces in the two images and returns an immutable
// result record. It never returns an error: every internal failure is
// converted into a terminal ERROR verdict carrying a human-readable reason
// and whatever quality data was computable.
func (e *Engine) Verify(ctx context.Context, path1, path2 string) models.VerificationResult {
	start := time.Now()

	ok1, reason1 := e.validator.Validate(path1)
	ok2, reason2 := e.validator.Validate(path2)
	if !ok1 || !ok2 {
		// Quality is still analyzed for diagnostic reporting.
		q1 := e.quality.Analyze(path1)
		q2 := e.quality.Analyze(path2)
		msg := fmt.Sprintf("Image invalid: image1=%s, image2=%s", reason1, reason2)
		return e.errorResult(msg, start, q1, q2)
	}

	q1 := e.quality.Analyze(path1)
	q2 := e.quality.Analyze(path2)
	if !q1.Valid || !q2.Valid {
		return e.errorResult("Quality failure", start, q1, q2)
	}

	e1, err := retry.Do(ctx, e.embedRetry, "embedding.extract", func() (embedding.Vector, error) {
		return e.embedder.Embed(ctx, path1)
	})
	if err != nil {
		return e.errorResult(fmt.Sprintf("Embedding backend failure: %v", err), start, q1, q2)
	}
	e2, err := retry.Do(ctx, e.embedRetry, "embedding.extract", func() (embedding.Vector, error) {
		return e.embedder.Embed(ctx, path2)
	})
	if err != nil {
		return e.errorResult(fmt.Sprintf("Embedding backend failure: %v", err), start, q1, q2)
	}
	if e1 == nil || e2 == nil {
		return e.errorResult("Face not detected", start, q1, q2)
	}

	// Geometry is best-effort: nil is tolerated, never escalated.
	g1 := e.geometry.Extract(ctx, path1)
	g2 := e.geometry.Extract(ctx, path2)

	similarity := embedding.CosineSimilarity(e1, e2)
	geometrySim := geometry.Similarity(g1, g2)
	qualityAvg := (q1.CompositeScore + q2.CompositeScore) / 2

	threshold := e.adaptiveThreshold(qualityAvg, geometrySim)
	verdict, confidence := e.classify(similarity, threshold)

	logger.WithFields(logrus.Fields{
		"verdict":             string(verdict),
		"similarity":          similarity,
		"geometry_similarity": geometrySim,
		"quality_average":     qualityAvg,
		"threshold":           threshold,
	}).Info("Verification completed")

	return models.VerificationResult{
		Verdict:            verdict,
		Confidence:         models.Round(confidence, 1),
		Similarity:         similarity,
		GeometrySimilarity: geometrySim,
		QualityAverage:     qualityAvg,
		ExecutionTime:      time.Since(start).Seconds(),
		Image1Quality:      q1,
		Image2Quality:      q2,
	}
}

// adaptiveThreshold adjusts the base similarity cutoff from the observed
// quality and geometry signals.
func (e *Engine) adaptiveThreshold(qualityAvg, geometrySim float64) float64 {
	threshold := e.cfg.BaseThreshold
	if qualityAvg < e.cfg.LowQualityCutoff {
		threshold -= e.cfg.QualityAdjustment
	}
	if geometrySim > e.cfg.HighGeometryCutoff {
		threshold += e.cfg.GeometryAdjustment
	}
	return threshold
}

// classify maps the similarity onto the verdict bands around the threshold.
func (e *Engine) classify(similarity, threshold float64) (models.Verdict, float64) {
	switch {
	case similarity > threshold+e.cfg.HighConfidenceDelta:
		return models.VerdictSameHigh, math.Min(95, 70+similarity*30)
	case similarity > threshold:
		return models.VerdictSameMedium, math.Min(85, 60+similarity*25)
	case similarity > threshold-e.cfg.UncertainDelta:
		return models.VerdictUncertain, UncertainConfidence
	default:
		return models.VerdictDifferent, math.Min(90, 70-similarity*40)
	}
}

func (e *Engine) errorResult(msg string, start time.Time, q1, q2 models.ImageQuality) models.VerificationResult {
	logger.WithField("reason", msg).Warn("Verification failed")
	return models.VerificationResult{
		Verdict:       models.VerdictError,
		Image1Quality: q1,
		Image2Quality: q2,
		ExecutionTime: time.Since(start).Seconds(),
		Error:         msg,
	}
}
