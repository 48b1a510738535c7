// Package dtype implements the reduced-precision element formats the
// quantization toolkit operates on, with bit-exact float32 conversions.
package dtype

type DataType int

const (
	F32 DataType = iota
	F16
	BF16
	FP8E4M3
	FP8E5M2
	I8
)

func (d DataType) String() string {
	switch d {
	case F32:
		return "f32"
	case F16:
		return "f16"
	case BF16:
		return "bf16"
	case FP8E4M3:
		return "fp8_e4m3"
	case FP8E5M2:
		return "fp8_e5m2"
	case I8:
		return "i8"
	default:
		return "unknown"
	}
}

// Bits returns the storage width of one element.
func (d DataType) Bits() int {
	switch d {
	case F32:
		return 32
	case F16, BF16:
		return 16
	default:
		return 8
	}
}

// IsFloat8 reports whether the format is one of the 8-bit floating formats,
// which require a recent accelerator generation for native support.
func (d DataType) IsFloat8() bool {
	return d == FP8E4M3 || d == FP8E5M2
}

// IsFloat reports whether the format is a floating-point format.
func (d DataType) IsFloat() bool {
	return d != I8
}

// FloatTypes lists the floating formats exercised by the matmul kernels.
var FloatTypes = []DataType{F32, F16, BF16, FP8E4M3, FP8E5M2}
