package device

import "fmt"

// Tensor is a dense row-major 2-D array of float32 values. Reduced
// precision formats are represented by quantizing the stored values; the
// storage stays float32 so kernels and references see identical inputs.
type Tensor struct {
	rows, cols int
	data       []float32
	name       string
}

func (c *Context) NewTensor(rows, cols int) *Tensor {
	t := &Tensor{
		rows: rows,
		cols: cols,
		data: make([]float32, rows*cols),
	}
	traceAlloc(int64(rows * cols * 4))
	return t
}

func (t *Tensor) Rows() int { return t.rows }

func (t *Tensor) Cols() int { return t.cols }

func (t *Tensor) Name() string { return t.name }

func (t *Tensor) SetName(name string) { t.name = name }

func (t *Tensor) NumElements() int { return t.rows * t.cols }

// Data exposes the backing slice. Callers must not resize it.
func (t *Tensor) Data() []float32 { return t.data }

func (t *Tensor) LoadFrom(data []float32) error {
	if len(data) != len(t.data) {
		return fmt.Errorf("load size mismatch: tensor holds %d elements, got %d", len(t.data), len(data))
	}
	copy(t.data, data)
	return nil
}

// ToHost returns a copy of the tensor contents.
func (t *Tensor) ToHost() []float32 {
	out := make([]float32, len(t.data))
	copy(out, t.data)
	return out
}

func (t *Tensor) Free() {
	if t.data != nil {
		traceAlloc(-int64(len(t.data) * 4))
		t.data = nil
	}
}
