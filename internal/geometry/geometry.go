// Package geometry derives shape features from facial landmarks and
// compares them. Geometry is an optional signal: when no landmarks are
// found the extractor returns nil and comparison falls back to a neutral
// midpoint.
package geometry

import (
	"context"
	"image"
	"math"

	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/logger"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/retry"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/pkg/models"
)

const epsilon = 1e-6

// NeutralSimilarity is returned when either geometry is absent: it neither
// supports nor refutes a match. Kept as its own constant, independent from
// the uncertain-verdict confidence.
const NeutralSimilarity = 50.0

// LandmarkSet is one set of facial landmark points in pixel coordinates,
// together with the dimensions of the image they were detected on.
type LandmarkSet struct {
	Points []image.Point
	Width  int
	Height int
}

// LandmarkSource is the external landmark-estimation capability. A nil set
// with a nil error means no face/landmarks were found; errors are reserved
// for backend failures and are routed through the retry policy.
type LandmarkSource interface {
	Landmarks(ctx context.Context, path string) (*LandmarkSet, error)
}

// Topology names the canonical landmark indices the features are computed
// from. The default matches the dlib five-point shape predictor.
type Topology struct {
	LeftEye  int
	RightEye int
	Nose     int
}

// DefaultTopology returns indices for the dlib five-point predictor:
// outer eye corners and the nose point.
func DefaultTopology() Topology {
	return Topology{LeftEye: 2, RightEye: 0, Nose: 4}
}

// Extractor computes GeometryFeatures from a landmark source.
type Extractor struct {
	source   LandmarkSource
	topology Topology
	policy   retry.Policy
}

// NewExtractor creates an extractor over the given landmark source.
func NewExtractor(source LandmarkSource) *Extractor {
	return &Extractor{
		source:   source,
		topology: DefaultTopology(),
		policy:   retry.LandmarkPolicy(),
	}
}

// NewExtractorWithOptions creates an extractor with a custom topology and
// retry policy.
func NewExtractorWithOptions(source LandmarkSource, topology Topology, policy retry.Policy) *Extractor {
	return &Extractor{source: source, topology: topology, policy: policy}
}

// Extract returns the shape features for the face in the image at path, or
// nil when no landmarks are detected. Backend failures degrade to nil after
// the retry policy is exhausted; extraction is never fatal.
func (e *Extractor) Extract(ctx context.Context, path string) *models.GeometryFeatures {
	set, err := retry.Do(ctx, e.policy, "landmarks.estimate", func() (*LandmarkSet, error) {
		return e.source.Landmarks(ctx, path)
	})
	if err != nil {
		logger.WithError(err).WithField("path", path).Error("Geometry extraction failed")
		return nil
	}
	if set == nil || len(set.Points) == 0 {
		return nil
	}
	return e.features(set)
}

func (e *Extractor) features(set *LandmarkSet) *models.GeometryFeatures {
	maxIdx := e.topology.LeftEye
	if e.topology.RightEye > maxIdx {
		maxIdx = e.topology.RightEye
	}
	if e.topology.Nose > maxIdx {
		maxIdx = e.topology.Nose
	}
	if len(set.Points) <= maxIdx || set.Width <= 0 {
		return nil
	}

	left := set.Points[e.topology.LeftEye]
	right := set.Points[e.topology.RightEye]
	nose := set.Points[e.topology.Nose]

	eyeDist := distance(left, right)
	eyeCenter := midpoint(left, right)
	eyeNose := math.Hypot(eyeCenter[0]-float64(nose.X), eyeCenter[1]-float64(nose.Y))

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	var sumX float64
	for _, p := range set.Points {
		x, y := float64(p.X), float64(p.Y)
		minX = math.Min(minX, x)
		minY = math.Min(minY, y)
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
		sumX += x
	}

	center := float64(set.Width) / 2
	meanX := sumX / float64(len(set.Points))

	return &models.GeometryFeatures{
		InterEyeDistance: eyeDist,
		EyeNoseRatio:     eyeDist / (eyeNose + epsilon),
		AspectRatio:      (maxX - minX) / (maxY - minY + epsilon),
		Symmetry:         1 - math.Abs(meanX-center)/center,
	}
}

// Similarity compares two feature vectors on a 0-100 scale. A nil input
// yields the neutral midpoint. Identical geometry scores 100.
func Similarity(g1, g2 *models.GeometryFeatures) float64 {
	if g1 == nil || g2 == nil {
		return NeutralSimilarity
	}

	c1 := g1.Components()
	c2 := g2.Components()

	var meanDiff float64
	for i := range c1 {
		meanDiff += math.Abs(c1[i]-c2[i]) / (math.Abs(c1[i]) + epsilon)
	}
	meanDiff /= float64(len(c1))

	sim := 100 * (1 - meanDiff)
	return math.Max(0, math.Min(100, sim))
}

func distance(a, b image.Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

func midpoint(a, b image.Point) [2]float64 {
	return [2]float64{(float64(a.X) + float64(b.X)) / 2, (float64(a.Y) + float64(b.Y)) / 2}
}
