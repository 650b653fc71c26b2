package gaze

import "math"

// Relative tolerances used by the classifier.
const (
	DefaultTolerance           = 0.06
	DefaultHorizontalTolerance = 0.10
)

// Compare returns 0 when a and b are within tol of each other relative to
// the larger magnitude, and a-b otherwise. Callers branch on the sign.
func Compare(a, b, tol float64) float64 {
	if a == b {
		return 0
	}
	diff := a - b
	if math.Abs(diff) <= tol*math.Max(math.Abs(a), math.Abs(b)) {
		return 0
	}
	return diff
}
