package device

import "sync"

// MatMul computes out = a × b with float32 accumulation, chunking rows
// across goroutines. This is the trusted dense reference the candidate
// kernels are compared against.
func (c *Context) MatMul(a, b, out *Tensor) error {
	if err := ValidateMatMulDims(a, b, out); err != nil {
		return err
	}

	m, n, k := a.rows, b.cols, a.cols
	chunkSize := (m + c.numThreads - 1) / c.numThreads
	var wg sync.WaitGroup
	for i := 0; i < m; i += chunkSize {
		end := i + chunkSize
		if end > m {
			end = m
		}
		wg.Add(1)
		go func(rowStart, rowEnd int) {
			defer wg.Done()
			for row := rowStart; row < rowEnd; row++ {
				for col := 0; col < n; col++ {
					var sum float32
					for l := 0; l < k; l++ {
						sum += a.data[row*k+l] * b.data[l*n+col]
					}
					out.data[row*n+col] = sum
				}
			}
		}(i, end)
	}
	wg.Wait()
	return nil
}

// HostMatMul computes out = a × b serially with float64 accumulation.
// The dense reference routine cannot run natively on two fp8 operands, so
// fp8 reference results are produced on this host fallback path and moved
// back for comparison.
func (c *Context) HostMatMul(a, b, out *Tensor) error {
	if err := ValidateMatMulDims(a, b, out); err != nil {
		return err
	}

	m, n, k := a.rows, b.cols, a.cols
	for row := 0; row < m; row++ {
		for col := 0; col < n; col++ {
			var sum float64
			for l := 0; l < k; l++ {
				sum += float64(a.data[row*k+l]) * float64(b.data[l*n+col])
			}
			out.data[row*n+col] = float32(sum)
		}
	}
	return nil
}
