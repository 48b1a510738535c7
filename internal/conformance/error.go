// Package conformance implements the numerical regression harness: it
// runs candidate kernels against the trusted dense reference over grids
// of shapes, element formats, and truncation depths, and judges the
// relative Frobenius error against the configured tolerance table.
package conformance

import "math"

// RelFrobeniusError returns ||got - ref||_F / ||ref||_F, accumulated in
// float64. A zero-norm reference yields 0 when the candidate matches
// exactly and +Inf otherwise.
func RelFrobeniusError(ref, got []float32) float64 {
	if len(ref) != len(got) {
		return math.Inf(1)
	}
	var diffSq, refSq float64
	for i := range ref {
		d := float64(got[i]) - float64(ref[i])
		diffSq += d * d
		refSq += float64(ref[i]) * float64(ref[i])
	}
	if refSq == 0 {
		if diffSq == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return math.Sqrt(diffSq) / math.Sqrt(refSq)
}
