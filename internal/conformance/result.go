package conformance

import (
	"fmt"

	"github.com/bayo-ibm/fms-model-optimizer/internal/dtype"
)

type Outcome int

const (
	OutcomePass Outcome = iota
	OutcomeFail
	OutcomeSkip
)

func (o Outcome) String() string {
	switch o {
	case OutcomePass:
		return "pass"
	case OutcomeFail:
		return "fail"
	case OutcomeSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// Result records one parameter combination's verdict.
type Result struct {
	Kernel    string
	DType     dtype.DataType
	Dim       int // m=n=k for matmul cases, 0 for linear
	FeatIn    int // linear cases only
	FeatOut   int
	TruncBits int
	RelErr    float64
	Tolerance float64
	Outcome   Outcome
	Err       error
}

// Label identifies the parameter combination in logs and reports.
func (r Result) Label() string {
	if r.Kernel == "linear" {
		return fmt.Sprintf("linear/%dx%d/trunc%d", r.FeatIn, r.FeatOut, r.TruncBits)
	}
	return fmt.Sprintf("%s/%s/dim%d/trunc%d", r.Kernel, r.DType, r.Dim, r.TruncBits)
}

// Summary aggregates outcomes over a run.
type Summary struct {
	Passed  int
	Failed  int
	Skipped int
}

func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Outcome {
		case OutcomePass:
			s.Passed++
		case OutcomeFail:
			s.Failed++
		case OutcomeSkip:
			s.Skipped++
		}
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("%d passed, %d failed, %d skipped", s.Passed, s.Failed, s.Skipped)
}
