// Package modules holds the neural-network building blocks of the
// toolkit. Only the dense linear layer and its truncated-accumulation
// variant are needed by the conformance harness.
package modules

import (
	"math"
	"math/rand"

	"github.com/bayo-ibm/fms-model-optimizer/internal/device"
	"github.com/bayo-ibm/fms-model-optimizer/internal/kernels"
)

// Linear is a dense affine layer, y = x·W + b, with weights stored
// [inFeatures, outFeatures] so the forward pass is a plain matmul.
type Linear struct {
	InFeatures  int
	OutFeatures int

	ctx    *device.Context
	weight *device.Tensor
	bias   []float32
}

// NewLinear builds a layer with weights and bias drawn uniformly from
// (-1/sqrt(inFeatures), 1/sqrt(inFeatures)).
func NewLinear(ctx *device.Context, inFeatures, outFeatures int, rng *rand.Rand) *Linear {
	l := &Linear{
		InFeatures:  inFeatures,
		OutFeatures: outFeatures,
		ctx:         ctx,
		weight:      ctx.NewTensor(inFeatures, outFeatures),
		bias:        make([]float32, outFeatures),
	}
	bound := 1 / math.Sqrt(float64(inFeatures))
	w := l.weight.Data()
	for i := range w {
		w[i] = float32((rng.Float64()*2 - 1) * bound)
	}
	for i := range l.bias {
		l.bias[i] = float32((rng.Float64()*2 - 1) * bound)
	}
	return l
}

// Weight exposes the weight tensor; the truncated variant shares it.
func (l *Linear) Weight() *device.Tensor { return l.weight }

func (l *Linear) Forward(input *device.Tensor) (*device.Tensor, error) {
	if err := device.ValidateLinearDims(input.Cols(), l.InFeatures); err != nil {
		return nil, err
	}
	out := l.ctx.NewTensor(input.Rows(), l.OutFeatures)
	if err := l.ctx.MatMul(input, l.weight, out); err != nil {
		out.Free()
		return nil, err
	}
	l.addBias(out)
	return out, nil
}

func (l *Linear) addBias(out *device.Tensor) {
	data := out.Data()
	for row := 0; row < out.Rows(); row++ {
		off := row * l.OutFeatures
		for col, b := range l.bias {
			data[off+col] += b
		}
	}
}

func (l *Linear) Free() {
	l.weight.Free()
}

// LinearTruncAcc is the truncated-accumulation variant of Linear. It is
// derived weight-preserving from a reference layer and runs its forward
// pass through the chunk-truncating kernel.
type LinearTruncAcc struct {
	TruncBits int

	ref *Linear
}

// FromLinear derives the truncated variant. The weight tensor and bias
// are shared with the reference layer, not copied.
func FromLinear(l *Linear, truncBits int) *LinearTruncAcc {
	return &LinearTruncAcc{TruncBits: truncBits, ref: l}
}

func (q *LinearTruncAcc) Forward(input *device.Tensor) (*device.Tensor, error) {
	if err := device.ValidateLinearDims(input.Cols(), q.ref.InFeatures); err != nil {
		return nil, err
	}
	out := q.ref.ctx.NewTensor(input.Rows(), q.ref.OutFeatures)
	if err := kernels.MatMulChunkTruncate(q.ref.ctx, input, q.ref.weight, out, q.TruncBits); err != nil {
		out.Free()
		return nil, err
	}
	q.ref.addBias(out)
	return out, nil
}
