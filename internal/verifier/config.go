package verifier

// Config holds the decision constants of the verification policy. The
// defaults are the calibrated production values; tests may tighten or
// loosen them, but a deployment normally runs the defaults unchanged.
type Config struct {
	// BaseThreshold is the starting similarity cutoff for "same person".
	BaseThreshold float64

	// HighConfidenceDelta widens the SAME_HIGH band above the threshold.
	HighConfidenceDelta float64

	// UncertainDelta widens the UNCERTAIN band below the threshold.
	UncertainDelta float64

	// LowQualityCutoff is the quality average below which the threshold is
	// relaxed: quality itself already discounts reliability elsewhere.
	LowQualityCutoff float64

	// HighGeometryCutoff is the geometry similarity above which the
	// threshold is raised, preventing geometry from being gamed as the
	// sole deciding signal.
	HighGeometryCutoff float64

	// QualityAdjustment is subtracted from the threshold for low quality.
	QualityAdjustment float64

	// GeometryAdjustment is added to the threshold for strong geometry.
	GeometryAdjustment float64
}

// DefaultConfig returns the calibrated verification policy.
func DefaultConfig() Config {
	return Config{
		BaseThreshold:       0.45,
		HighConfidenceDelta: 0.08,
		UncertainDelta:      0.05,
		LowQualityCutoff:    50,
		HighGeometryCutoff:  70,
		QualityAdjustment:   0.03,
		GeometryAdjustment:  0.03,
	}
}

// UncertainConfidence is the fixed confidence reported for the UNCERTAIN
// verdict. It happens to equal the neutral geometry similarity but is an
// independent constant.
const UncertainConfidence = 50.0
