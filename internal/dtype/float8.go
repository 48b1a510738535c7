package dtype

import "math"

// Float8E4M3 is the e4m3 8-bit floating format: 1 sign, 4 exponent,
// 3 mantissa bits, bias 7. No infinities; exponent/mantissa all-ones is
// NaN, which leaves 448 as the largest finite value.
type Float8E4M3 uint8

// Float8E5M2 is the e5m2 8-bit floating format: 1 sign, 5 exponent,
// 2 mantissa bits, bias 15. Carries infinities and NaN like a shrunken
// half; largest finite value is 57344.
type Float8E5M2 uint8

const (
	MaxFloat8E4M3 = 448
	MaxFloat8E5M2 = 57344
)

// Float8E4M3FromFloat32 converts with round-to-nearest-even, saturating
// to the largest finite value on overflow.
func Float8E4M3FromFloat32(f float32) Float8E4M3 {
	var sign uint8
	if math.Signbit(float64(f)) {
		sign = 0x80
	}
	if math.IsNaN(float64(f)) {
		return Float8E4M3(sign | 0x7F)
	}
	a := math.Abs(float64(f))
	if a == 0 {
		return Float8E4M3(sign)
	}
	if a >= 464 {
		return Float8E4M3(sign | 0x7E)
	}

	_, exp := math.Frexp(a)
	e := exp - 1
	if e < -6 {
		// subnormal quantum 2^-9
		m := math.RoundToEven(math.Ldexp(a, 9))
		if m >= 8 {
			return Float8E4M3(sign | 0x08)
		}
		return Float8E4M3(sign | uint8(m))
	}

	m := math.RoundToEven(math.Ldexp(a, 3-e))
	if m == 16 {
		m = 8
		e++
	}
	if e > 8 {
		return Float8E4M3(sign | 0x7E)
	}
	bits := sign | uint8(e+7)<<3 | uint8(m-8)
	if bits&0x7F == 0x7F {
		// exponent/mantissa all-ones is NaN; clamp to max finite
		bits--
	}
	return Float8E4M3(bits)
}

func (x Float8E4M3) ToFloat32() float32 {
	sign := float64(1)
	if x&0x80 != 0 {
		sign = -1
	}
	exp := int(x>>3) & 0xF
	mant := int(x) & 0x7
	if exp == 0xF && mant == 0x7 {
		return float32(math.NaN())
	}
	if exp == 0 {
		return float32(sign * math.Ldexp(float64(mant), -9))
	}
	return float32(sign * math.Ldexp(float64(8+mant), exp-7-3))
}

// Float8E5M2FromFloat32 converts with round-to-nearest-even, overflowing
// to infinity.
func Float8E5M2FromFloat32(f float32) Float8E5M2 {
	var sign uint8
	if math.Signbit(float64(f)) {
		sign = 0x80
	}
	if math.IsNaN(float64(f)) {
		return Float8E5M2(sign | 0x7F)
	}
	a := math.Abs(float64(f))
	if a == 0 {
		return Float8E5M2(sign)
	}
	if a >= 61440 {
		return Float8E5M2(sign | 0x7C)
	}

	_, exp := math.Frexp(a)
	e := exp - 1
	if e < -14 {
		// subnormal quantum 2^-16
		m := math.RoundToEven(math.Ldexp(a, 16))
		if m >= 4 {
			return Float8E5M2(sign | 0x04)
		}
		return Float8E5M2(sign | uint8(m))
	}

	m := math.RoundToEven(math.Ldexp(a, 2-e))
	if m == 8 {
		m = 4
		e++
	}
	if e > 15 {
		return Float8E5M2(sign | 0x7C)
	}
	return Float8E5M2(sign | uint8(e+15)<<2 | uint8(m-4))
}

func (x Float8E5M2) ToFloat32() float32 {
	sign := float64(1)
	if x&0x80 != 0 {
		sign = -1
	}
	exp := int(x>>2) & 0x1F
	mant := int(x) & 0x3
	if exp == 0x1F {
		if mant != 0 {
			return float32(math.NaN())
		}
		return float32(math.Inf(int(sign)))
	}
	if exp == 0 {
		return float32(sign * math.Ldexp(float64(mant), -16))
	}
	return float32(sign * math.Ldexp(float64(4+mant), exp-15-2))
}
