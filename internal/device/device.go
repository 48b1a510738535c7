// Package device provides the software compute device the conformance
// harness runs kernels on: 2-D host tensors, a parallel reference matmul,
// and the capability query that gates 8-bit floating formats.
package device

import (
	"runtime"
	"sync/atomic"

	"github.com/bayo-ibm/fms-model-optimizer/internal/metrics"
)

var allocatedBytes int64

func traceAlloc(delta int64) {
	newVal := atomic.AddInt64(&allocatedBytes, delta)
	metrics.RecordDeviceMemory(newVal)
}

// AllocatedBytes reports the bytes currently held by live tensors.
func AllocatedBytes() int64 {
	return atomic.LoadInt64(&allocatedBytes)
}

type Context struct {
	numThreads int
	capability Capability
}

func NewContext() *Context {
	return &Context{
		numThreads: runtime.NumCPU(),
		capability: DetectCapability(),
	}
}

func (c *Context) Free() {}

func (c *Context) SetNumThreads(n int) {
	if n > 0 {
		c.numThreads = n
	}
}

func (c *Context) NumThreads() int {
	return c.numThreads
}

// Capability returns the device generation used for format gating.
func (c *Context) Capability() Capability {
	return c.capability
}

// SetCapability overrides the detected generation. Used to exercise the
// unsupported-hardware paths.
func (c *Context) SetCapability(cap Capability) {
	c.capability = cap
}
