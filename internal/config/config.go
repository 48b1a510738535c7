package config

import "fmt"

// Config holds the conformance run parameters: the parameter grids, the
// deterministic seed, and the tolerance table.
type Config struct {
	Seed int64

	// Matmul kernel grid
	Dims      []int
	TruncBits int // truncation depth applied on the truncated run

	// Linear layer grid
	LinearFeatures  [][2]int
	LinearTruncBits []int
	BatchSize       int

	Tolerances Tolerances

	LogLevel    string
	LogFormat   string
	MetricsAddr string
	ReportPath  string
}

// Tolerances is the acceptance-threshold lookup table. The values are
// fixed acceptance criteria, not derived from an error model.
type Tolerances struct {
	MatmulExact      float64 // untruncated candidate vs reference
	MatmulTruncFloat float64 // truncated accumulation, floating formats
	MatmulTruncInt   float64 // truncated accumulation, int8
	LinearFine       float64 // linear layer, shallow truncation
	LinearCoarse     float64 // linear layer, deep truncation
	LinearFineBits   int     // deepest truncation still held to LinearFine
}

// Matmul returns the threshold for a matmul case.
func (t Tolerances) Matmul(isFloat bool, truncBits int) float64 {
	if truncBits == 0 {
		return t.MatmulExact
	}
	if isFloat {
		return t.MatmulTruncFloat
	}
	return t.MatmulTruncInt
}

// Linear returns the threshold for a linear-layer case.
func (t Tolerances) Linear(truncBits int) float64 {
	if truncBits <= t.LinearFineBits {
		return t.LinearFine
	}
	return t.LinearCoarse
}

func Default() Config {
	return Config{
		Seed:            23,
		Dims:            []int{64, 256, 1024, 4096},
		TruncBits:       8,
		LinearFeatures:  [][2]int{{64, 128}, {256, 1024}, {1024, 4096}},
		LinearTruncBits: []int{0, 8, 12, 16},
		BatchSize:       512,
		Tolerances: Tolerances{
			MatmulExact:      1e-5,
			MatmulTruncFloat: 1e-3,
			MatmulTruncInt:   1e-2,
			LinearFine:       1e-4,
			LinearCoarse:     1e-2,
			LinearFineBits:   10,
		},
		LogLevel:    "info",
		LogFormat:   "console",
		MetricsAddr: ":9090",
	}
}

func (c *Config) Validate() error {
	if len(c.Dims) == 0 {
		return fmt.Errorf("empty dimension grid")
	}
	for _, d := range c.Dims {
		if d <= 0 {
			return fmt.Errorf("invalid dim: %d (must be positive)", d)
		}
	}
	if c.TruncBits < 0 || c.TruncBits > 23 {
		return fmt.Errorf("invalid trunc_bits: %d (must be in [0,23])", c.TruncBits)
	}
	if len(c.LinearFeatures) == 0 {
		return fmt.Errorf("empty linear feature grid")
	}
	for _, f := range c.LinearFeatures {
		if f[0] <= 0 || f[1] <= 0 {
			return fmt.Errorf("invalid linear features: (%d,%d) (must be positive)", f[0], f[1])
		}
	}
	for _, b := range c.LinearTruncBits {
		if b < 0 || b > 23 {
			return fmt.Errorf("invalid linear trunc_bits: %d (must be in [0,23])", b)
		}
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("invalid batch_size: %d (must be positive)", c.BatchSize)
	}
	if err := c.Tolerances.validate(); err != nil {
		return err
	}
	return nil
}

func (t Tolerances) validate() error {
	checks := []struct {
		name string
		val  float64
	}{
		{"matmul_exact", t.MatmulExact},
		{"matmul_trunc_float", t.MatmulTruncFloat},
		{"matmul_trunc_int", t.MatmulTruncInt},
		{"linear_fine", t.LinearFine},
		{"linear_coarse", t.LinearCoarse},
	}
	for _, c := range checks {
		if c.val <= 0 || c.val >= 1 {
			return fmt.Errorf("invalid tolerance %s: %g (must be in (0,1))", c.name, c.val)
		}
	}
	if t.LinearFineBits < 0 {
		return fmt.Errorf("invalid linear_fine_bits: %d (must be non-negative)", t.LinearFineBits)
	}
	return nil
}
