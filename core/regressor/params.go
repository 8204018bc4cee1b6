package regressor

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// LayerParams is the serializable form of a dense layer. Weights are stored
// row-major with Out rows of In columns.
type LayerParams struct {
	In      int       `json:"in"`
	Out     int       `json:"out"`
	Weights []float64 `json:"weights"`
	Bias    []float64 `json:"bias"`
}

// Parameters is the serializable form of a trained network.
type Parameters struct {
	InputDim int           `json:"input_dim"`
	Dropout  float64       `json:"dropout"`
	Layers   []LayerParams `json:"layers"`
}

// Parameters returns a deep copy of the network parameters.
func (n *Network) Parameters() Parameters {
	p := Parameters{InputDim: n.InputDim(), Dropout: n.dropout, Layers: make([]LayerParams, len(n.layers))}
	for i, l := range n.layers {
		p.Layers[i] = LayerParams{
			In:      l.in(),
			Out:     l.out(),
			Weights: append([]float64(nil), l.W.RawMatrix().Data...),
			Bias:    append([]float64(nil), l.B.RawVector().Data...),
		}
	}
	return p
}

// Validate checks the layer chain input->32->16->1.
func (p Parameters) Validate() error {
	if p.InputDim <= 0 {
		return errors.New("input_dim must be positive")
	}
	if p.Dropout < 0 || p.Dropout >= 1 {
		return fmt.Errorf("dropout %g out of range", p.Dropout)
	}
	if len(p.Layers) != 3 {
		return fmt.Errorf("expected 3 layers, got %d", len(p.Layers))
	}
	widths := []int{p.InputDim, Hidden1, Hidden2, Output}
	for i, l := range p.Layers {
		if l.In != widths[i] || l.Out != widths[i+1] {
			return fmt.Errorf("layer %d: shape %dx%d, expected %dx%d", i, l.Out, l.In, widths[i+1], widths[i])
		}
		if len(l.Weights) != l.In*l.Out {
			return fmt.Errorf("layer %d: %d weights, expected %d", i, len(l.Weights), l.In*l.Out)
		}
		if len(l.Bias) != l.Out {
			return fmt.Errorf("layer %d: %d biases, expected %d", i, len(l.Bias), l.Out)
		}
	}
	return nil
}

// FromParameters rebuilds a network. The parameters are copied.
func FromParameters(p Parameters) (*Network, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("regressor: %w", err)
	}
	n := &Network{dropout: p.Dropout}
	for i, l := range p.Layers {
		n.layers[i] = Dense{
			W: mat.NewDense(l.Out, l.In, append([]float64(nil), l.Weights...)),
			B: mat.NewVecDense(l.Out, append([]float64(nil), l.Bias...)),
		}
	}
	return n, nil
}
