package dtype

import "math"

// Float16 is an IEEE 754 half-precision value: 1 sign, 5 exponent, 10
// mantissa bits.
type Float16 uint16

// Float16FromFloat32 converts with round-to-nearest-even.
func Float16FromFloat32(f float32) Float16 {
	bits := math.Float32bits(f)
	sign := uint16(bits>>16) & 0x8000
	exp := int32(bits>>23) & 0xFF
	mant := bits & 0x7FFFFF

	if exp == 0xFF {
		if mant != 0 {
			return Float16(sign | 0x7E00)
		}
		return Float16(sign | 0x7C00)
	}

	newExp := exp - 127 + 15
	if newExp >= 0x1F {
		return Float16(sign | 0x7C00)
	}
	if newExp <= 0 {
		if newExp < -10 {
			return Float16(sign)
		}
		// Subnormal half: shift the full 24-bit significand down to the
		// 2^-24 quantum and round
		m := mant | 0x800000
		shift := uint32(14 - newExp)
		m += (1 << (shift - 1)) - 1 + ((m >> shift) & 1)
		return Float16(sign | uint16(m>>shift))
	}

	m := mant
	m += 0xFFF + ((m >> 13) & 1)
	if m&0x800000 != 0 {
		m = 0
		newExp++
		if newExp >= 0x1F {
			return Float16(sign | 0x7C00)
		}
	}
	return Float16(sign | uint16(newExp<<10) | uint16(m>>13))
}

// ToFloat32 converts exactly; every half value is representable in float32.
func (h Float16) ToFloat32() float32 {
	sign := uint32(h>>15) & 0x1
	exp := uint32(h>>10) & 0x1F
	mant := uint32(h) & 0x3FF
	var f32 uint32
	if exp == 0 {
		if mant == 0 {
			f32 = sign << 31
		} else {
			shift := uint32(0)
			m := mant
			for m < 0x400 {
				m <<= 1
				shift++
			}
			m = (m & 0x3FF) << 13
			e := uint32(127 - 14 - shift)
			f32 = (sign << 31) | (e << 23) | m
		}
	} else if exp == 31 {
		if mant == 0 {
			f32 = (sign << 31) | 0x7F800000
		} else {
			f32 = (sign << 31) | 0x7F800000 | (mant << 13)
		}
	} else {
		newExp := exp - 15 + 127
		f32 = (sign << 31) | (newExp << 23) | (mant << 13)
	}
	return math.Float32frombits(f32)
}
