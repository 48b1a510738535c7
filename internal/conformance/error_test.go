package conformance

import (
	"math"
	"testing"
)

func TestRelFrobeniusErrorIdentical(t *testing.T) {
	ref := []float32{1, 2, 3, 4}
	if got := RelFrobeniusError(ref, ref); got != 0 {
		t.Errorf("identical slices should give 0, got %g", got)
	}
}

func TestRelFrobeniusErrorKnownValue(t *testing.T) {
	ref := []float32{3, 4} // norm 5
	got := []float32{3, 4.5}
	// diff norm 0.5, reference norm 5
	want := 0.1
	if err := RelFrobeniusError(ref, got); math.Abs(err-want) > 1e-12 {
		t.Errorf("RelFrobeniusError = %g, want %g", err, want)
	}
}

func TestRelFrobeniusErrorScaleInvariant(t *testing.T) {
	ref := []float32{1, -2, 3, -4, 5}
	got := []float32{1.001, -2.002, 3.003, -4.004, 5.005}
	base := RelFrobeniusError(ref, got)

	// power-of-two scale keeps the float32 inputs exact
	scaledRef := make([]float32, len(ref))
	scaledGot := make([]float32, len(got))
	for i := range ref {
		scaledRef[i] = ref[i] * 1024
		scaledGot[i] = got[i] * 1024
	}
	scaled := RelFrobeniusError(scaledRef, scaledGot)
	if math.Abs(base-scaled) > 1e-12 {
		t.Errorf("error not scale invariant: %g vs %g", base, scaled)
	}
}

func TestRelFrobeniusErrorZeroReference(t *testing.T) {
	zeros := []float32{0, 0, 0}
	if got := RelFrobeniusError(zeros, zeros); got != 0 {
		t.Errorf("matching zeros should give 0, got %g", got)
	}
	if got := RelFrobeniusError(zeros, []float32{0, 1, 0}); !math.IsInf(got, 1) {
		t.Errorf("mismatch against zero reference should give +Inf, got %g", got)
	}
}

func TestRelFrobeniusErrorLengthMismatch(t *testing.T) {
	if got := RelFrobeniusError([]float32{1, 2}, []float32{1}); !math.IsInf(got, 1) {
		t.Errorf("length mismatch should give +Inf, got %g", got)
	}
}
