package dtype

import "math"

// Quantize rounds a float32 value to the nearest value representable in
// the given format and returns it widened back to float32.
func Quantize(f float32, d DataType) float32 {
	switch d {
	case F32:
		return f
	case F16:
		return Float16FromFloat32(f).ToFloat32()
	case BF16:
		return BFloat16FromFloat32(f).ToFloat32()
	case FP8E4M3:
		return Float8E4M3FromFloat32(f).ToFloat32()
	case FP8E5M2:
		return Float8E5M2FromFloat32(f).ToFloat32()
	case I8:
		r := math.RoundToEven(float64(f))
		if r > 127 {
			r = 127
		}
		if r < -128 {
			r = -128
		}
		return float32(r)
	default:
		return f
	}
}

// QuantizeSlice quantizes src into dst element-wise. The slices may alias.
func QuantizeSlice(dst, src []float32, d DataType) {
	if d == F32 {
		copy(dst, src)
		return
	}
	for i, v := range src {
		dst[i] = Quantize(v, d)
	}
}
