package conformance

import (
	"fmt"
	"math/rand"

	"github.com/bayo-ibm/fms-model-optimizer/internal/config"
	"github.com/bayo-ibm/fms-model-optimizer/internal/device"
	"github.com/bayo-ibm/fms-model-optimizer/internal/dtype"
	"github.com/bayo-ibm/fms-model-optimizer/internal/kernels"
	"github.com/bayo-ibm/fms-model-optimizer/internal/logger"
	"github.com/bayo-ibm/fms-model-optimizer/internal/metrics"
	"github.com/bayo-ibm/fms-model-optimizer/internal/modules"
)

// Runner executes conformance cases. Each case is independent: inputs
// are regenerated from the configured seed at the start of every case,
// so a given parameter combination always sees bit-identical data.
type Runner struct {
	cfg  config.Config
	ctx  *device.Context
	caps device.CapabilityProvider
	log  *logger.Logger
}

func NewRunner(cfg config.Config) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid conformance config: %w", err)
	}
	ctx := device.NewContext()
	return &Runner{
		cfg:  cfg,
		ctx:  ctx,
		caps: ctx,
		log:  logger.Log.Component("conformance"),
	}, nil
}

// SetCapabilityProvider substitutes the capability query, so the skip
// paths can be exercised regardless of the host.
func (r *Runner) SetCapabilityProvider(p device.CapabilityProvider) {
	r.caps = p
}

func (r *Runner) Context() *device.Context { return r.ctx }

// MatmulFloatCase checks the candidate kernel on square matrices of the
// given dimension and floating format, once untruncated and once with
// the configured truncation depth.
func (r *Runner) MatmulFloatCase(dim int, dt dtype.DataType) []Result {
	if dt.IsFloat8() && !r.caps.Capability().SupportsFloat8() {
		r.log.Info("skipping: device generation below float8 requirement",
			"dtype", dt.String(), "dim", dim)
		res := Result{Kernel: "matmul", DType: dt, Dim: dim, Outcome: OutcomeSkip}
		metrics.RecordCase(res.Kernel, res.Outcome.String())
		return []Result{res}
	}
	metrics.RecordMatrixDimension(dim)

	rng := rand.New(rand.NewSource(r.cfg.Seed))
	a := r.ctx.NewTensor(dim, dim)
	b := r.ctx.NewTensor(dim, dim)
	ref := r.ctx.NewTensor(dim, dim)
	defer a.Free()
	defer b.Free()
	defer ref.Free()

	fillNormal(rng, a.Data())
	fillNormal(rng, b.Data())
	dtype.QuantizeSlice(a.Data(), a.Data(), dt)
	dtype.QuantizeSlice(b.Data(), b.Data(), dt)

	// The reference routine cannot run natively on two float8 operands;
	// those cases take the host fallback path.
	var err error
	if dt.IsFloat8() {
		err = r.ctx.HostMatMul(a, b, ref)
	} else {
		err = r.ctx.MatMul(a, b, ref)
	}
	if err != nil {
		return []Result{r.failed("matmul", dt, dim, 0, err)}
	}

	results := make([]Result, 0, 2)
	for _, bits := range []int{0, r.cfg.TruncBits} {
		out := r.ctx.NewTensor(dim, dim)
		res := Result{Kernel: "matmul", DType: dt, Dim: dim, TruncBits: bits}
		if err := kernels.MatMulChunkTruncate(r.ctx, a, b, out, bits); err != nil {
			out.Free()
			results = append(results, r.failed("matmul", dt, dim, bits, err))
			continue
		}
		if err := r.scanOutput(out, res); err != nil {
			out.Free()
			results = append(results, r.failed("matmul", dt, dim, bits, err))
			continue
		}
		res.RelErr = RelFrobeniusError(ref.Data(), out.Data())
		res.Tolerance = r.cfg.Tolerances.Matmul(true, bits)
		results = append(results, r.judge(res))
		out.Free()
	}
	return results
}

// MatmulInt8Case checks the int8 kernel variant on square matrices.
func (r *Runner) MatmulInt8Case(dim int) []Result {
	metrics.RecordMatrixDimension(dim)

	rng := rand.New(rand.NewSource(r.cfg.Seed))
	a := r.ctx.NewTensor(dim, dim)
	b := r.ctx.NewTensor(dim, dim)
	ref := r.ctx.NewTensor(dim, dim)
	defer a.Free()
	defer b.Free()
	defer ref.Free()

	fillInt8(rng, a.Data())
	fillInt8(rng, b.Data())

	if err := r.ctx.MatMul(a, b, ref); err != nil {
		return []Result{r.failed("matmul_int8", dtype.I8, dim, 0, err)}
	}

	results := make([]Result, 0, 2)
	for _, bits := range []int{0, r.cfg.TruncBits} {
		out := r.ctx.NewTensor(dim, dim)
		res := Result{Kernel: "matmul_int8", DType: dtype.I8, Dim: dim, TruncBits: bits}
		if err := kernels.MatMulInt8ChunkTruncate(r.ctx, a, b, out, bits); err != nil {
			out.Free()
			results = append(results, r.failed("matmul_int8", dtype.I8, dim, bits, err))
			continue
		}
		if err := r.scanOutput(out, res); err != nil {
			out.Free()
			results = append(results, r.failed("matmul_int8", dtype.I8, dim, bits, err))
			continue
		}
		res.RelErr = RelFrobeniusError(ref.Data(), out.Data())
		res.Tolerance = r.cfg.Tolerances.Matmul(false, bits)
		results = append(results, r.judge(res))
		out.Free()
	}
	return results
}

// LinearCase checks the truncated-accumulation linear layer against its
// reference layer on a shared random batch.
func (r *Runner) LinearCase(featIn, featOut, truncBits int) Result {
	rng := rand.New(rand.NewSource(r.cfg.Seed))

	lin := modules.NewLinear(r.ctx, featIn, featOut, rng)
	defer lin.Free()
	truncated := modules.FromLinear(lin, truncBits)

	inputs := r.ctx.NewTensor(r.cfg.BatchSize, featIn)
	defer inputs.Free()
	fillNormal(rng, inputs.Data())

	baseline, err := lin.Forward(inputs)
	if err != nil {
		return r.failedLinear(featIn, featOut, truncBits, err)
	}
	defer baseline.Free()

	got, err := truncated.Forward(inputs)
	if err != nil {
		return r.failedLinear(featIn, featOut, truncBits, err)
	}
	defer got.Free()

	res := Result{Kernel: "linear", DType: dtype.F32, FeatIn: featIn, FeatOut: featOut, TruncBits: truncBits}
	if err := r.scanOutput(got, res); err != nil {
		return r.failedLinear(featIn, featOut, truncBits, err)
	}
	res.RelErr = RelFrobeniusError(baseline.Data(), got.Data())
	res.Tolerance = r.cfg.Tolerances.Linear(truncBits)
	return r.judge(res)
}

// RunAll walks every grid in the configuration.
func (r *Runner) RunAll() []Result {
	var results []Result
	for _, dim := range r.cfg.Dims {
		for _, dt := range dtype.FloatTypes {
			results = append(results, r.MatmulFloatCase(dim, dt)...)
		}
		results = append(results, r.MatmulInt8Case(dim)...)
	}
	for _, feats := range r.cfg.LinearFeatures {
		for _, bits := range r.cfg.LinearTruncBits {
			results = append(results, r.LinearCase(feats[0], feats[1], bits))
		}
	}
	return results
}

// scanOutput names the candidate tensor after its case and scans it for
// NaN or Inf values before the result is judged.
func (r *Runner) scanOutput(out *device.Tensor, res Result) error {
	out.SetName(res.Label())
	if nan, inf := out.CheckStability(); nan+inf > 0 {
		return fmt.Errorf("candidate output contains %d NaN and %d Inf values", nan, inf)
	}
	return nil
}

func (r *Runner) judge(res Result) Result {
	if res.RelErr < res.Tolerance {
		res.Outcome = OutcomePass
	} else {
		res.Outcome = OutcomeFail
	}
	metrics.RecordCase(res.Kernel, res.Outcome.String())
	metrics.RecordRelError(res.Kernel, res.DType.String(), res.RelErr)
	log := r.log.Case(res.Label())
	if res.Outcome == OutcomeFail {
		log.Error("numerical regression", "rel_err", res.RelErr, "tolerance", res.Tolerance)
	} else {
		log.Debug("case passed", "rel_err", res.RelErr)
	}
	return res
}

func (r *Runner) failed(kernel string, dt dtype.DataType, dim, bits int, err error) Result {
	res := Result{Kernel: kernel, DType: dt, Dim: dim, TruncBits: bits, Outcome: OutcomeFail, Err: err}
	metrics.RecordCase(kernel, res.Outcome.String())
	r.log.Case(res.Label()).Error("case errored", "error", err)
	return res
}

func (r *Runner) failedLinear(featIn, featOut, bits int, err error) Result {
	res := Result{Kernel: "linear", FeatIn: featIn, FeatOut: featOut, TruncBits: bits, Outcome: OutcomeFail, Err: err}
	metrics.RecordCase(res.Kernel, res.Outcome.String())
	r.log.Case(res.Label()).Error("case errored", "error", err)
	return res
}

func fillNormal(rng *rand.Rand, data []float32) {
	for i := range data {
		data[i] = float32(rng.NormFloat64())
	}
}

func fillInt8(rng *rand.Rand, data []float32) {
	for i := range data {
		data[i] = float32(rng.Intn(256) - 128)
	}
}
