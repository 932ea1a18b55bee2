// Package calculator holds the pure numeric derivations over a trust report:
// score-ring and spending-pie geometry, loan amortization and limit clamping.
package calculator

// Score ring geometry
const (
	MaxScore          = 900.0
	RingCircumference = 339.0
)

// RingStrokeOffset returns the stroke-dashoffset for a score ring using the
// default scale and circumference.
func RingStrokeOffset(score float64) float64 {
	return RingStrokeOffsetWith(score, MaxScore, RingCircumference)
}

// RingStrokeOffsetWith computes circumference - circumference*score/maxScore.
// The score is not clamped.
func RingStrokeOffsetWith(score, maxScore, circumference float64) float64 {
	if maxScore == 0 {
		return circumference
	}
	return circumference - (circumference*score)/maxScore
}
