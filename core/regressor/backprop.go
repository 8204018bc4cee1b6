package regressor

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Gradients has the same layout as the network parameters.
type Gradients struct {
	layers [3]Dense
}

// Tensors returns the gradient slices in the order of Network.Tensors.
func (g *Gradients) Tensors() [][]float64 {
	return tensors(g.layers)
}

// Tensors exposes the backing slices of every weight and bias, layer by layer
// (W1, B1, W2, B2, W3, B3). Writing to them updates the network in place.
func (n *Network) Tensors() [][]float64 {
	return tensors(n.layers)
}

func tensors(ls [3]Dense) [][]float64 {
	out := make([][]float64, 0, 2*len(ls))
	for _, l := range ls {
		out = append(out, l.W.RawMatrix().Data, l.B.RawVector().Data)
	}
	return out
}

// Gradient runs a training-mode forward pass over the batch and returns the
// mean squared error together with its gradient with respect to every
// parameter.
func (n *Network) Gradient(x *mat.Dense, y []float64, rng *rand.Rand) (float64, *Gradients, error) {
	r, _ := x.Dims()
	if r != len(y) {
		return 0, nil, fmt.Errorf("regressor: %d rows but %d targets", r, len(y))
	}
	p := n.forward(x, Training, rng)
	loss, g := n.backward(p, y)
	return loss, g, nil
}

func (n *Network) backward(p *pass, y []float64) (float64, *Gradients) {
	r, _ := p.out.Dims()
	delta := mat.NewDense(r, Output, nil)
	var loss float64
	for i := 0; i < r; i++ {
		e := p.out.At(i, 0) - y[i]
		loss += e * e
		delta.Set(i, 0, 2*e/float64(r))
	}
	loss /= float64(r)

	g := &Gradients{}
	g.layers[2] = layerGrad(delta, p.a2)

	var da2 mat.Dense
	da2.Mul(delta, n.layers[2].W)
	dz2 := reluGrad(&da2, p.z2)
	g.layers[1] = layerGrad(dz2, p.a1)

	var da1 mat.Dense
	da1.Mul(dz2, n.layers[1].W)
	if p.mask != nil {
		da1.MulElem(&da1, p.mask)
	}
	dz1 := reluGrad(&da1, p.z1)
	g.layers[0] = layerGrad(dz1, p.x)
	return loss, g
}

func layerGrad(delta, input *mat.Dense) Dense {
	var w mat.Dense
	w.Mul(delta.T(), input)
	r, c := delta.Dims()
	b := mat.NewVecDense(c, nil)
	for i := 0; i < r; i++ {
		floats.Add(b.RawVector().Data, delta.RawRowView(i))
	}
	return Dense{W: &w, B: b}
}

func reluGrad(d, z *mat.Dense) *mat.Dense {
	var out mat.Dense
	out.Apply(func(i, j int, v float64) float64 {
		if z.At(i, j) > 0 {
			return v
		}
		return 0
	}, d)
	return &out
}
