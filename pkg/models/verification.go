package models

import "math"

// Verdict is the terminal classification of a pairwise face comparison.
type Verdict string

const (
	// VerdictSameHigh means same person with high confidence.
	VerdictSameHigh Verdict = "SAME_HIGH"
	// VerdictSameMedium means same person with medium confidence.
	VerdictSameMedium Verdict = "SAME_MEDIUM"
	// VerdictUncertain means the comparison is inconclusive.
	VerdictUncertain Verdict = "UNCERTAIN"
	// VerdictDifferent means the images depict different people.
	VerdictDifferent Verdict = "DIFFERENT"
	// VerdictError means the comparison could not be completed.
	VerdictError Verdict = "ERROR"
)

// IsSame reports whether the verdict classifies the pair as the same person.
func (v Verdict) IsSame() bool {
	return v == VerdictSameHigh || v == VerdictSameMedium
}

// Classification renders the verdict for result-consuming callers.
func (v Verdict) Classification() string {
	switch v {
	case VerdictSameHigh, VerdictSameMedium:
		return "same person"
	case VerdictUncertain:
		return "inconclusive, re-capture"
	case VerdictDifferent:
		return "different person"
	default:
		return "error"
	}
}

// ImageQuality is the per-image usability assessment. All scores are
// normalized to [0,100]. Invalid assessments carry zero scores and a reason.
type ImageQuality struct {
	BlurScore       float64 `json:"blur_score"`
	BrightnessScore float64 `json:"brightness_score"`
	ContrastScore   float64 `json:"contrast_score"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	CompositeScore  float64 `json:"composite_score"`
	Valid           bool    `json:"valid"`
	Error           string  `json:"error,omitempty"`
}

// InvalidQuality builds a failed assessment with zero scores.
func InvalidQuality(width, height int, reason string) ImageQuality {
	return ImageQuality{Width: width, Height: height, Valid: false, Error: reason}
}

// GeometryFeatures is the shape-feature vector derived from facial
// landmarks. It is either fully populated or absent (nil pointer).
type GeometryFeatures struct {
	InterEyeDistance float64 `json:"inter_eye_distance"`
	EyeNoseRatio     float64 `json:"eye_nose_ratio"`
	AspectRatio      float64 `json:"aspect_ratio"`
	Symmetry         float64 `json:"symmetry"`
}

// Components returns the feature values in canonical order.
func (g *GeometryFeatures) Components() [4]float64 {
	return [4]float64{g.InterEyeDistance, g.EyeNoseRatio, g.AspectRatio, g.Symmetry}
}

// VerificationResult is the single immutable output record of one
// verification call. Error is non-empty if and only if Verdict is ERROR.
type VerificationResult struct {
	Verdict            Verdict      `json:"verdict"`
	Confidence         float64      `json:"confidence"`
	Similarity         float64      `json:"similarity"`
	GeometrySimilarity float64      `json:"geometry_similarity"`
	QualityAverage     float64      `json:"quality_average"`
	ExecutionTime      float64      `json:"execution_time"`
	Image1Quality      ImageQuality `json:"image1_quality"`
	Image2Quality      ImageQuality `json:"image2_quality"`
	Error              string       `json:"error,omitempty"`
}

// Export flattens the result to a key/value structure with the rounding
// conventions expected by downstream consumers.
func (r *VerificationResult) Export() map[string]interface{} {
	out := map[string]interface{}{
		"verdict":             string(r.Verdict),
		"confidence":          r.Confidence,
		"similarity":          Round(r.Similarity, 3),
		"geometry_similarity": Round(r.GeometrySimilarity, 1),
		"quality_average":     Round(r.QualityAverage, 1),
		"execution_time":      Round(r.ExecutionTime, 2),
		"image1_quality":      r.Image1Quality.CompositeScore,
		"image2_quality":      r.Image2Quality.CompositeScore,
	}
	if r.Error != "" {
		out["error"] = r.Error
	} else {
		out["error"] = nil
	}
	return out
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
