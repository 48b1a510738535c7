package device

import (
	"fmt"
	"math"

	"github.com/bayo-ibm/fms-model-optimizer/internal/metrics"
)

func ValidateMatMulDims(a, b, out *Tensor) error {
	if a.cols != b.rows {
		metrics.RecordValidationError("matmul", "dim_mismatch")
		return fmt.Errorf("matrix dimension mismatch: A[%d,%d] * B[%d,%d] invalid",
			a.rows, a.cols, b.rows, b.cols)
	}
	if out.rows != a.rows || out.cols != b.cols {
		metrics.RecordValidationError("matmul", "output_shape")
		return fmt.Errorf("output shape mismatch: got [%d,%d], want [%d,%d]",
			out.rows, out.cols, a.rows, b.cols)
	}
	return nil
}

func ValidateLinearDims(inputCols, inFeatures int) error {
	if inputCols != inFeatures {
		metrics.RecordValidationError("linear", "dim_mismatch")
		return fmt.Errorf("linear dimension mismatch: input cols=%d != in features=%d",
			inputCols, inFeatures)
	}
	return nil
}

// CheckNumericalStability counts NaN and Inf values in data and records
// them against the named tensor.
func CheckNumericalStability(data []float32, name string) (nanCount, infCount int) {
	for _, v := range data {
		if math.IsNaN(float64(v)) {
			nanCount++
		}
		if math.IsInf(float64(v), 0) {
			infCount++
		}
	}
	metrics.RecordNumericalInstability(name, nanCount, infCount)
	return
}

// CheckStability scans the tensor for NaN and Inf values, recording any
// hits under the tensor's name.
func (t *Tensor) CheckStability() (nanCount, infCount int) {
	return CheckNumericalStability(t.data, t.name)
}

func HasAnyNaN(data []float32) bool {
	for _, v := range data {
		if math.IsNaN(float64(v)) {
			return true
		}
	}
	return false
}

func IsValid(data []float32) bool {
	for _, v := range data {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return false
		}
	}
	return true
}
