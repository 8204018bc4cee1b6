// Package regressor implements the feed-forward emissions regressor:
// three dense layers (input->32->16->1) with ReLU after the first two and
// dropout between the first and second layer while training.
//
// The network holds no randomness of its own. Callers pass the evaluation
// mode and, for training passes, the *rand.Rand that drives dropout.
package regressor

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Mode selects between stochastic training passes and deterministic inference.
type Mode int

const (
	// Inference disables dropout.
	Inference Mode = iota
	// Training enables dropout.
	Training
)

func (m Mode) String() string {
	if m == Training {
		return "training"
	}
	return "inference"
}

const (
	Hidden1 = 32
	Hidden2 = 16
	Output  = 1

	// DefaultDropout is the unit dropout rate applied after the first layer.
	DefaultDropout = 0.2
)

// Dense is one affine layer. W is out x in, B has out entries.
type Dense struct {
	W *mat.Dense
	B *mat.VecDense
}

func (d Dense) in() int  { _, c := d.W.Dims(); return c }
func (d Dense) out() int { r, _ := d.W.Dims(); return r }

// Network is the three layer regressor.
type Network struct {
	layers  [3]Dense
	dropout float64
}

// New returns a network with uniform U(-1/sqrt(fan_in), 1/sqrt(fan_in))
// initialization drawn from rng.
func New(inputDim int, dropout float64, rng *rand.Rand) (*Network, error) {
	if inputDim <= 0 {
		return nil, fmt.Errorf("regressor: input dim must be positive, got %d", inputDim)
	}
	if dropout < 0 || dropout >= 1 {
		return nil, fmt.Errorf("regressor: dropout must lie in [0,1), got %g", dropout)
	}
	widths := []int{inputDim, Hidden1, Hidden2, Output}
	n := &Network{dropout: dropout}
	for i := range n.layers {
		in, out := widths[i], widths[i+1]
		bound := 1 / math.Sqrt(float64(in))
		w := make([]float64, out*in)
		for j := range w {
			w[j] = (rng.Float64()*2 - 1) * bound
		}
		b := make([]float64, out)
		for j := range b {
			b[j] = (rng.Float64()*2 - 1) * bound
		}
		n.layers[i] = Dense{W: mat.NewDense(out, in, w), B: mat.NewVecDense(out, b)}
	}
	return n, nil
}

// InputDim returns the width of accepted feature vectors.
func (n *Network) InputDim() int { return n.layers[0].in() }

// Dropout returns the training dropout rate.
func (n *Network) Dropout() float64 { return n.dropout }

// Batch packs rows into a matrix suitable for Forward.
func Batch(rows [][]float64) *mat.Dense {
	if len(rows) == 0 {
		return nil
	}
	c := len(rows[0])
	data := make([]float64, 0, len(rows)*c)
	for _, r := range rows {
		data = append(data, r...)
	}
	return mat.NewDense(len(rows), c, data)
}

// pass keeps the intermediate activations needed by backward.
type pass struct {
	x    *mat.Dense
	z1   *mat.Dense
	a1   *mat.Dense
	mask *mat.Dense
	z2   *mat.Dense
	a2   *mat.Dense
	out  *mat.Dense
}

func (n *Network) forward(x *mat.Dense, mode Mode, rng *rand.Rand) *pass {
	p := &pass{x: x}
	p.z1 = affine(x, n.layers[0])
	p.a1 = relu(p.z1)
	if mode == Training && n.dropout > 0 {
		r, c := p.a1.Dims()
		p.mask = dropoutMask(r, c, n.dropout, rng)
		p.a1.MulElem(p.a1, p.mask)
	}
	p.z2 = affine(p.a1, n.layers[1])
	p.a2 = relu(p.z2)
	p.out = affine(p.a2, n.layers[2])
	return p
}

// Forward evaluates a batch (rows x InputDim). rng is only read in Training
// mode and may be nil for Inference.
func (n *Network) Forward(x *mat.Dense, mode Mode, rng *rand.Rand) []float64 {
	p := n.forward(x, mode, rng)
	r, _ := p.out.Dims()
	out := make([]float64, r)
	for i := range out {
		out[i] = p.out.At(i, 0)
	}
	return out
}

// Predict scores one standardized feature vector in inference mode.
func (n *Network) Predict(x []float64) float64 {
	return n.Forward(mat.NewDense(1, len(x), append([]float64(nil), x...)), Inference, nil)[0]
}

func affine(x *mat.Dense, l Dense) *mat.Dense {
	r, _ := x.Dims()
	out := mat.NewDense(r, l.out(), nil)
	out.Mul(x, l.W.T())
	b := l.B.RawVector().Data
	for i := 0; i < r; i++ {
		floats.Add(out.RawRowView(i), b)
	}
	return out
}

func relu(z *mat.Dense) *mat.Dense {
	var a mat.Dense
	a.Apply(func(_, _ int, v float64) float64 {
		if v > 0 {
			return v
		}
		return 0
	}, z)
	return &a
}

// dropoutMask zeroes units with probability rate and scales survivors by
// 1/(1-rate) so inference needs no rescaling.
func dropoutMask(r, c int, rate float64, rng *rand.Rand) *mat.Dense {
	keep := 1 / (1 - rate)
	data := make([]float64, r*c)
	for i := range data {
		if rng.Float64() >= rate {
			data[i] = keep
		}
	}
	return mat.NewDense(r, c, data)
}
