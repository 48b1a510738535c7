// Package kernels implements the candidate low-precision matmul kernels
// validated by the conformance harness: a chunked-accumulation matmul
// that can discard low-order accumulator bits, over floating or int8
// operands.
package kernels

import (
	"math"
	"sync"
	"time"

	"github.com/bayo-ibm/fms-model-optimizer/internal/device"
	"github.com/bayo-ibm/fms-model-optimizer/internal/metrics"
)

// ChunkK is the width of one accumulation chunk along the inner
// dimension. Partial sums are formed per chunk and folded into the
// running accumulator, mirroring the blocked K loop of the fused kernel.
const ChunkK = 64

// TruncateMantissa rounds x so that its low `bits` mantissa bits are
// zero, rounding to nearest. bits must be in [0,23].
func TruncateMantissa(x float32, bits int) float32 {
	if bits <= 0 {
		return x
	}
	b := math.Float32bits(x)
	if b&0x7F800000 == 0x7F800000 {
		return x
	}
	b += 1 << (bits - 1)
	b &^= 1<<bits - 1
	return math.Float32frombits(b)
}

// MatMulChunkTruncate computes out = a × b with float32 chunked
// accumulation. With truncBits = 0 the chunked sum is exact; otherwise
// each chunk partial is truncated to truncBits fewer mantissa bits before
// it is folded in, trading precision the way the reduced-accumulation
// hardware path does.
func MatMulChunkTruncate(ctx *device.Context, a, b, out *device.Tensor, truncBits int) error {
	if err := device.ValidateMatMulDims(a, b, out); err != nil {
		return err
	}
	start := time.Now()
	defer func() {
		metrics.RecordKernelDuration("matmul_chunk_truncate", time.Since(start))
	}()

	m, n, k := a.Rows(), b.Cols(), a.Cols()
	ad, bd, od := a.Data(), b.Data(), out.Data()

	chunkRows := (m + ctx.NumThreads() - 1) / ctx.NumThreads()
	var wg sync.WaitGroup
	for i := 0; i < m; i += chunkRows {
		end := i + chunkRows
		if end > m {
			end = m
		}
		wg.Add(1)
		go func(rowStart, rowEnd int) {
			defer wg.Done()
			for row := rowStart; row < rowEnd; row++ {
				for col := 0; col < n; col++ {
					var acc float32
					for k0 := 0; k0 < k; k0 += ChunkK {
						k1 := k0 + ChunkK
						if k1 > k {
							k1 = k
						}
						var partial float32
						for l := k0; l < k1; l++ {
							partial += ad[row*k+l] * bd[l*n+col]
						}
						acc += TruncateMantissa(partial, truncBits)
					}
					od[row*n+col] = acc
				}
			}
		}(i, end)
	}
	wg.Wait()
	return nil
}
