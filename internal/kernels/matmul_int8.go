package kernels

import (
	"fmt"
	"sync"
	"time"

	"github.com/bayo-ibm/fms-model-optimizer/internal/device"
	"github.com/bayo-ibm/fms-model-optimizer/internal/metrics"
)

// TruncateInt32 rounds v to a multiple of 2^bits, rounding half up.
func TruncateInt32(v int32, bits int) int32 {
	if bits <= 0 {
		return v
	}
	return ((v + 1<<(bits-1)) >> bits) << bits
}

// MatMulInt8ChunkTruncate is the int8 variant: operands hold integral
// values in [-128,127], accumulation is exact int32 per chunk, and
// truncation discards truncBits low-order accumulator bits with rounding.
// Results are written back as float32 like the float kernel.
func MatMulInt8ChunkTruncate(ctx *device.Context, a, b, out *device.Tensor, truncBits int) error {
	if err := device.ValidateMatMulDims(a, b, out); err != nil {
		return err
	}
	start := time.Now()
	defer func() {
		metrics.RecordKernelDuration("matmul_int8_chunk_truncate", time.Since(start))
	}()

	m, n, k := a.Rows(), b.Cols(), a.Cols()
	ai, err := toInt8(a.Data())
	if err != nil {
		return fmt.Errorf("operand A: %w", err)
	}
	bi, err := toInt8(b.Data())
	if err != nil {
		return fmt.Errorf("operand B: %w", err)
	}
	od := out.Data()

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
					var acc int32
					for k0 := 0; k0 < k; k0 += ChunkK {
						k1 := k0 + ChunkK
						if k1 > k {
							k1 = k
						}
						var partial int32
						for l := k0; l < k1; l++ {
							partial += int32(ai[row*k+l]) * int32(bi[l*n+col])
						}
						acc += TruncateInt32(partial, truncBits)
					}
					od[row*n+col] = float32(acc)
				}
			}
		}(i, end)
	}
	wg.Wait()
	return nil
}

func toInt8(data []float32) ([]int8, error) {
	out := make([]int8, len(data))
	for i, v := range data {
		iv := int32(v)
		if float32(iv) != v || iv < -128 || iv > 127 {
			return nil, fmt.Errorf("element %d is not an int8 value: %g", i, v)
		}
		out[i] = int8(iv)
	}
	return out, nil
}
