package models

import (
	"testing"
)

func TestVerdictIsSame(t *testing.T) {
	tests := []struct {
		verdict  Verdict
		expected bool
	}{
		{VerdictSameHigh, true},
		{VerdictSameMedium, true},
		{VerdictUncertain, false},
		{VerdictDifferent, false},
		{VerdictError, false},
	}

	for _, tc := range tests {
		if got := tc.verdict.IsSame(); got != tc.expected {
			t.Errorf("%s.IsSame() = %v, expected %v", tc.verdict, got, tc.expected)
		}
	}
}

func TestVerdictClassification(t *testing.T) {
	tests := []struct {
		verdict  Verdict
		expected string
	}{
		{VerdictSameHigh, "same person"},
		{VerdictSameMedium, "same person"},
		{VerdictUncertain, "inconclusive, re-capture"},
		{VerdictDifferent, "different person"},
		{VerdictError, "error"},
	}

	for _, tc := range tests {
		if got := tc.verdict.Classification(); got != tc.expected {
			t.Errorf("%s.Classification() = %q, expected %q", tc.verdict, got, tc.expected)
		}
	}
}

func TestExportRounding(t *testing.T) {
	result := VerificationResult{
		Verdict:            VerdictSameMedium,
		Confidence:         70.8,
		Similarity:         0.4321567,
		GeometrySimilarity: 83.456,
		QualityAverage:     61.23,
		ExecutionTime:      1.23456,
		Image1Quality:      ImageQuality{CompositeScore: 70.1, Valid: true},
		Image2Quality:      ImageQuality{CompositeScore: 52.4, Valid: true},
	}

	out := result.Export()

	if out["similarity"] != 0.432 {
		t.Errorf("Expected similarity rounded to 0.432, got %v", out["similarity"])
	}
	if out["geometry_similarity"] != 83.5 {
		t.Errorf("Expected geometry rounded to 83.5, got %v", out["geometry_similarity"])
	}
	if out["quality_average"] != 61.2 {
		t.Errorf("Expected quality rounded to 61.2, got %v", out["quality_average"])
	}
	if out["execution_time"] != 1.23 {
		t.Errorf("Expected time rounded to 1.23, got %v", out["execution_time"])
	}
	if out["image1_quality"] != 70.1 || out["image2_quality"] != 52.4 {
		t.Errorf("Expected per-image composites passed through, got %v and %v",
			out["image1_quality"], out["image2_quality"])
	}
	if out["error"] != nil {
		t.Errorf("Expected nil error for a completed comparison, got %v", out["error"])
	}
}

func TestExportErrorField(t *testing.T) {
	result := VerificationResult{
		Verdict: VerdictError,
		Error:   "Face not detected",
	}

	out := result.Export()
	if out["error"] != "Face not detected" {
		t.Errorf("Expected error string preserved, got %v", out["error"])
	}
	if out["verdict"] != "ERROR" {
		t.Errorf("Expected verdict ERROR, got %v", out["verdict"])
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		value    float64
		places   int
		expected float64
	}{
		{0.4321567, 3, 0.432},
		{0.4996, 3, 0.5},
		{-1.25, 1, -1.3},
		{100, 0, 100},
	}

	for _, tc := range tests {
		if got := Round(tc.value, tc.places); got != tc.expected {
			t.Errorf("Round(%v, %d) = %v, expected %v", tc.value, tc.places, got, tc.expected)
		}
	}
}

func TestGeometryFeaturesComponents(t *testing.T) {
	g := GeometryFeatures{
		InterEyeDistance: 40,
		EyeNoseRatio:     1.33,
		AspectRatio:      1.5,
		Symmetry:         0.98,
	}

	components := g.Components()
	expected := [4]float64{40, 1.33, 1.5, 0.98}
	if components != expected {
		t.Errorf("Components() = %v, expected %v", components, expected)
	}
}
