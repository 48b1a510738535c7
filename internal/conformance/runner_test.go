package conformance

import (
	"fmt"
	"math"
	"testing"

	"github.com/bayo-ibm/fms-model-optimizer/internal/config"
	"github.com/bayo-ibm/fms-model-optimizer/internal/device"
	"github.com/bayo-ibm/fms-model-optimizer/internal/dtype"
)

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	runner, err := NewRunner(config.Default())
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return runner
}

// Parametric conformance of the matmul kernel over tensor sizes and
// floating formats: untruncated output within 1e-5 of the dense
// reference, 8-bit truncated accumulation within 1e-3.
func TestMatmulKernelFloatConformance(t *testing.T) {
	cfg := config.Default()
	runner := newTestRunner(t)

	for _, dim := range cfg.Dims {
		for _, dt := range dtype.FloatTypes {
			t.Run(fmt.Sprintf("%s_dim%d", dt, dim), func(t *testing.T) {
				if testing.Short() && dim > 256 {
					t.Skip("large dimension skipped in short mode")
				}
				for _, res := range runner.MatmulFloatCase(dim, dt) {
					if res.Outcome == OutcomeSkip {
						t.Skipf("device generation %v below float8 requirement",
							runner.Context().Capability())
					}
					if res.Err != nil {
						t.Fatalf("%s: %v", res.Label(), res.Err)
					}
					t.Logf("%s rel_err=%.3g tol=%.3g", res.Label(), res.RelErr, res.Tolerance)
					if res.Outcome != OutcomePass {
						t.Errorf("%s: rel_err %g exceeds tolerance %g",
							res.Label(), res.RelErr, res.Tolerance)
					}
				}
			})
		}
	}
}

// Parametric conformance of the int8 kernel variant: exact int32
// accumulation within 1e-5, 8-bit truncation within 1e-2.
func TestMatmulKernelInt8Conformance(t *testing.T) {
	cfg := config.Default()
	runner := newTestRunner(t)

	for _, dim := range cfg.Dims {
		t.Run(fmt.Sprintf("dim%d", dim), func(t *testing.T) {
			if testing.Short() && dim > 256 {
				t.Skip("large dimension skipped in short mode")
			}
			for _, res := range runner.MatmulInt8Case(dim) {
				if res.Err != nil {
					t.Fatalf("%s: %v", res.Label(), res.Err)
				}
				t.Logf("%s rel_err=%.3g tol=%.3g", res.Label(), res.RelErr, res.Tolerance)
				if res.Outcome != OutcomePass {
					t.Errorf("%s: rel_err %g exceeds tolerance %g",
						res.Label(), res.RelErr, res.Tolerance)
				}
			}
		})
	}
}

// Parametric conformance of the truncated-accumulation linear layer
// against its reference layer: 1e-4 up to 10 truncation bits, 1e-2 past.
func TestLinearTruncAccConformance(t *testing.T) {
	cfg := config.Default()
	runner := newTestRunner(t)

	for _, feats := range cfg.LinearFeatures {
		for _, bits := range cfg.LinearTruncBits {
			t.Run(fmt.Sprintf("%dx%d_trunc%d", feats[0], feats[1], bits), func(t *testing.T) {
				if testing.Short() && feats[0] > 256 {
					t.Skip("large layer skipped in short mode")
				}
				res := runner.LinearCase(feats[0], feats[1], bits)
				if res.Err != nil {
					t.Fatalf("%s: %v", res.Label(), res.Err)
				}
				t.Logf("%s rel_err=%.3g tol=%.3g", res.Label(), res.RelErr, res.Tolerance)
				if res.Outcome != OutcomePass {
					t.Errorf("%s: rel_err %g exceeds tolerance %g",
						res.Label(), res.RelErr, res.Tolerance)
				}
			})
		}
	}
}

type fixedCapability struct {
	cap device.Capability
}

func (f fixedCapability) Capability() device.Capability { return f.cap }

func TestFloat8SkipsBelowRequiredGeneration(t *testing.T) {
	runner := newTestRunner(t)
	runner.SetCapabilityProvider(fixedCapability{device.Capability{Major: 7, Minor: 5}})

	for _, dt := range []dtype.DataType{dtype.FP8E4M3, dtype.FP8E5M2} {
		t.Run(dt.String(), func(t *testing.T) {
			results := runner.MatmulFloatCase(64, dt)
			if len(results) != 1 {
				t.Fatalf("expected a single skip result, got %d results", len(results))
			}
			if results[0].Outcome != OutcomeSkip {
				t.Errorf("expected skip on generation 7.5, got %v", results[0].Outcome)
			}
			if results[0].Err != nil {
				t.Errorf("skip must not carry an error, got %v", results[0].Err)
			}
		})
	}

	// Non-float8 formats are unaffected by the gate
	t.Run("f16_unaffected", func(t *testing.T) {
		results := runner.MatmulFloatCase(64, dtype.F16)
		if len(results) != 2 {
			t.Fatalf("expected both truncation runs, got %d results", len(results))
		}
		for _, res := range results {
			if res.Outcome == OutcomeSkip {
				t.Error("f16 must not be capability gated")
			}
		}
	})
}

func TestFloat8RunsOnGeneration89(t *testing.T) {
	runner := newTestRunner(t)
	runner.SetCapabilityProvider(fixedCapability{device.Capability{Major: 8, Minor: 9}})

	results := runner.MatmulFloatCase(64, dtype.FP8E4M3)
	if len(results) != 2 {
		t.Fatalf("generation 8.9 should run float8, got %d results", len(results))
	}
	for _, res := range results {
		if res.Outcome != OutcomePass {
			t.Errorf("%s: expected pass, got %v (rel_err %g)", res.Label(), res.Outcome, res.RelErr)
		}
	}
}

// Running the same parameter combination twice must reproduce the input
// tensors bit for bit and therefore the same error.
func TestCaseRepeatability(t *testing.T) {
	runner := newTestRunner(t)

	first := runner.MatmulFloatCase(64, dtype.BF16)
	second := runner.MatmulFloatCase(64, dtype.BF16)
	if len(first) != len(second) {
		t.Fatalf("result count differs between runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].RelErr != second[i].RelErr {
			t.Errorf("run %d: rel_err differs: %g vs %g", i, first[i].RelErr, second[i].RelErr)
		}
		if first[i].Outcome != second[i].Outcome {
			t.Errorf("run %d: outcome differs: %v vs %v", i, first[i].Outcome, second[i].Outcome)
		}
	}

	lin1 := runner.LinearCase(64, 128, 8)
	lin2 := runner.LinearCase(64, 128, 8)
	if lin1.RelErr != lin2.RelErr {
		t.Errorf("linear rel_err differs: %g vs %g", lin1.RelErr, lin2.RelErr)
	}
}

// Untruncated float32 at the smallest dimension sits near machine
// precision, far inside the acceptance threshold.
func TestFloat32SmallDimNearMachinePrecision(t *testing.T) {
	runner := newTestRunner(t)
	results := runner.MatmulFloatCase(64, dtype.F32)
	if results[0].TruncBits != 0 {
		t.Fatalf("expected the untruncated run first, got trunc%d", results[0].TruncBits)
	}
	if results[0].RelErr > 1e-6 {
		t.Errorf("f32 dim 64 untruncated rel_err = %g, expected near machine precision", results[0].RelErr)
	}
}

func TestSummarize(t *testing.T) {
	results := []Result{
		{Outcome: OutcomePass},
		{Outcome: OutcomePass},
		{Outcome: OutcomeFail},
		{Outcome: OutcomeSkip},
	}
	s := Summarize(results)
	if s.Passed != 2 || s.Failed != 1 || s.Skipped != 1 {
		t.Errorf("unexpected summary: %+v", s)
	}
	if s.String() != "2 passed, 1 failed, 1 skipped" {
		t.Errorf("unexpected summary string: %q", s.String())
	}
}

func TestResultLabel(t *testing.T) {
	m := Result{Kernel: "matmul", DType: dtype.BF16, Dim: 256, TruncBits: 8}
	if m.Label() != "matmul/bf16/dim256/trunc8" {
		t.Errorf("unexpected matmul label: %q", m.Label())
	}
	l := Result{Kernel: "linear", FeatIn: 64, FeatOut: 128, TruncBits: 12}
	if l.Label() != "linear/64x128/trunc12" {
		t.Errorf("unexpected linear label: %q", l.Label())
	}
}

func TestNewRunnerRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.BatchSize = 0
	if _, err := NewRunner(cfg); err == nil {
		t.Error("expected error for invalid config")
	}
}

func TestUnstableOutputRejectedBeforeJudging(t *testing.T) {
	runner := newTestRunner(t)

	out := runner.Context().NewTensor(2, 2)
	defer out.Free()
	res := Result{Kernel: "matmul", DType: dtype.F16, Dim: 2, TruncBits: 8}

	if err := runner.scanOutput(out, res); err != nil {
		t.Fatalf("clean output should pass the scan: %v", err)
	}
	if out.Name() != res.Label() {
		t.Errorf("scan should name the tensor after the case: %q", out.Name())
	}

	out.Data()[3] = float32(math.NaN())
	if err := runner.scanOutput(out, res); err == nil {
		t.Error("expected error for NaN in candidate output")
	}
	out.Data()[3] = float32(math.Inf(1))
	if err := runner.scanOutput(out, res); err == nil {
		t.Error("expected error for Inf in candidate output")
	}
}
