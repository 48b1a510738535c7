package device

import "golang.org/x/sys/cpu"

// Capability identifies the device generation. 8-bit floating formats
// need generation 9.x, with 8.9 as the one earlier part that carries the
// units.
type Capability struct {
	Major int
	Minor int
}

// SupportsFloat8 reports whether fp8 operands are natively supported.
func (c Capability) SupportsFloat8() bool {
	if c.Major >= 9 {
		return true
	}
	return c.Major == 8 && c.Minor == 9
}

// CapabilityProvider abstracts the capability query so harness tests can
// substitute a fixed generation.
type CapabilityProvider interface {
	Capability() Capability
}

// DetectCapability maps the host CPU feature set onto a device
// generation. The software backend emulates every format, so anything
// with wide vector units reports the fp8-capable generation; older
// hardware reports 8.0 and fp8 cases skip.
func DetectCapability() Capability {
	switch {
	case cpu.X86.HasAVX512F || cpu.ARM64.HasSVE:
		return Capability{Major: 9, Minor: 0}
	case cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD:
		return Capability{Major: 8, Minor: 9}
	default:
		return Capability{Major: 8, Minor: 0}
	}
}
