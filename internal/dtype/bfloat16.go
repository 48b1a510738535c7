package dtype

import "math"

// BFloat16 is a 16-bit brain float: 1 sign, 8 exponent, 7 mantissa bits.
// Same exponent range as float32, so conversion is a mantissa round.
type BFloat16 uint16

// BFloat16FromFloat32 converts with round-to-nearest-even.
func BFloat16FromFloat32(f float32) BFloat16 {
	bits := math.Float32bits(f)
	if bits&0x7FFFFFFF > 0x7F800000 {
		// NaN: keep the payload non-zero so it stays NaN after truncation
		return BFloat16((bits >> 16) | 0x40)
	}
	bits += 0x7FFF + ((bits >> 16) & 1)
	return BFloat16(bits >> 16)
}

// ToFloat32 shifts back to float32 position; exact.
func (b BFloat16) ToFloat32() float32 {
	return math.Float32frombits(uint32(b) << 16)
}
