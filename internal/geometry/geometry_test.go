package geometry

import (
	"context"
	"errors"
	"image"
	"math"
	"testing"
	"time"

	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/retry"
	"github.com/arthurrgg8-lgtm/lazzybiointel-go/pkg/models"
)

type fakeSource struct {
	set   *LandmarkSet
	err   error
	calls int
}

func (f *fakeSource) Landmarks(ctx context.Context, path string) (*LandmarkSet, error) {
	f.calls++
	return f.set, f.err
}

func quietPolicy(attempts int) retry.Policy {
	return retry.Policy{
		MaxAttempts: attempts,
		BaseDelay:   time.Millisecond,
		Jitter:      func() time.Duration { return 0 },
		Sleep:       func(time.Duration) {},
	}
}

// fiveLandmarks lays out a symmetric face: outer eye corners at (30,40) and
// (70,40), nose at (50,70), inner corners between.
func fiveLandmarks(width, height int) *LandmarkSet {
	return &LandmarkSet{
		Points: []image.Point{
			{70, 40}, // right eye outer
			{60, 40}, // right eye inner
			{30, 40}, // left eye outer
			{40, 40}, // left eye inner
			{50, 70}, // nose
		},
		Width:  width,
		Height: height,
	}
}

func TestExtract_ComputesFeatures(t *testing.T) {
	src := &fakeSource{set: fiveLandmarks(100, 100)}
	ext := NewExtractorWithOptions(src, DefaultTopology(), quietPolicy(2))

	g := ext.Extract(context.Background(), "face.png")
	if g == nil {
		t.Fatal("Expected features, got nil")
	}

	if math.Abs(g.InterEyeDistance-40) > 1e-9 {
		t.Errorf("Expected inter-eye distance 40, got %f", g.InterEyeDistance)
	}

	// Eye center (50,40), nose (50,70): distance 30 -> ratio 40/30.
	if math.Abs(g.EyeNoseRatio-40.0/30.0) > 1e-3 {
		t.Errorf("Expected eye-nose ratio ~1.333, got %f", g.EyeNoseRatio)
	}

	// Bounding box 40x30.
	if math.Abs(g.AspectRatio-40.0/30.0) > 1e-3 {
		t.Errorf("Expected aspect ratio ~1.333, got %f", g.AspectRatio)
	}

	// Mean x = 50 = image center: perfect symmetry.
	if math.Abs(g.Symmetry-1.0) > 1e-9 {
		t.Errorf("Expected symmetry 1.0, got %f", g.Symmetry)
	}
}

func TestExtract_NoLandmarksReturnsNil(t *testing.T) {
	src := &fakeSource{set: nil}
	ext := NewExtractorWithOptions(src, DefaultTopology(), quietPolicy(2))

	if g := ext.Extract(context.Background(), "face.png"); g != nil {
		t.Errorf("Expected nil features when no landmarks detected, got %+v", g)
	}
	if src.calls != 1 {
		t.Errorf("Expected no retries for a no-detection result, got %d calls", src.calls)
	}
}

func TestExtract_BackendFailureDegradesToNil(t *testing.T) {
	src := &fakeSource{err: errors.New("backend exhausted")}
	ext := NewExtractorWithOptions(src, DefaultTopology(), quietPolicy(2))

	if g := ext.Extract(context.Background(), "face.png"); g != nil {
		t.Errorf("Expected nil features on backend failure, got %+v", g)
	}
	if src.calls != 2 {
		t.Errorf("Expected retry before degrading, got %d calls", src.calls)
	}
}

func TestExtract_TooFewPointsReturnsNil(t *testing.T) {
	src := &fakeSource{set: &LandmarkSet{Points: []image.Point{{10, 10}}, Width: 100, Height: 100}}
	ext := NewExtractorWithOptions(src, DefaultTopology(), quietPolicy(1))

	if g := ext.Extract(context.Background(), "face.png"); g != nil {
		t.Errorf("Expected nil features for incomplete landmark set, got %+v", g)
	}
}

func TestSimilarity_IdenticalGeometry(t *testing.T) {
	g := &models.GeometryFeatures{InterEyeDistance: 40, EyeNoseRatio: 1.3, AspectRatio: 1.2, Symmetry: 0.95}
	if sim := Similarity(g, g); sim != 100.0 {
		t.Errorf("Expected 100 for identical geometry, got %f", sim)
	}
}

func TestSimilarity_NilInputsNeutral(t *testing.T) {
	g := &models.GeometryFeatures{InterEyeDistance: 40, EyeNoseRatio: 1.3, AspectRatio: 1.2, Symmetry: 0.95}

	if sim := Similarity(nil, g); sim != NeutralSimilarity {
		t.Errorf("Expected neutral 50 for nil first input, got %f", sim)
	}
	if sim := Similarity(g, nil); sim != NeutralSimilarity {
		t.Errorf("Expected neutral 50 for nil second input, got %f", sim)
	}
	if sim := Similarity(nil, nil); sim != NeutralSimilarity {
		t.Errorf("Expected neutral 50 for both nil, got %f", sim)
	}
}

func TestSimilarity_ClampedToRange(t *testing.T) {
	g1 := &models.GeometryFeatures{InterEyeDistance: 1, EyeNoseRatio: 1, AspectRatio: 1, Symmetry: 1}
	g2 := &models.GeometryFeatures{InterEyeDistance: 100, EyeNoseRatio: 100, AspectRatio: 100, Symmetry: 100}

	sim := Similarity(g1, g2)
	if sim < 0 || sim > 100 {
		t.Errorf("Expected similarity clamped to [0,100], got %f", sim)
	}
}

func TestSimilarity_CloseGeometryScoresHigh(t *testing.T) {
	g1 := &models.GeometryFeatures{InterEyeDistance: 40, EyeNoseRatio: 1.3, AspectRatio: 1.2, Symmetry: 0.95}
	g2 := &models.GeometryFeatures{InterEyeDistance: 41, EyeNoseRatio: 1.31, AspectRatio: 1.19, Symmetry: 0.94}

	sim := Similarity(g1, g2)
	if sim < 95 {
		t.Errorf("Expected near-identical geometry to score high, got %f", sim)
	}
}
