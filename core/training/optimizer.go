package training

import (
	"fmt"
	"math"
)

// Optimizer updates parameter tensors in place from their gradients.
type Optimizer interface {
	Step(params, grads [][]float64)
}

// NewOptimizer returns the optimizer named in cfg.
func NewOptimizer(cfg Config) (Optimizer, error) {
	switch cfg.Optimizer {
	case "", OptimizerAdam:
		return NewAdam(cfg.LearningRate, cfg.WeightDecay), nil
	case OptimizerSGD:
		return &SGD{LearningRate: cfg.LearningRate, WeightDecay: cfg.WeightDecay}, nil
	default:
		return nil, fmt.Errorf("unknown optimizer %s", cfg.Optimizer)
	}
}

// SGD is plain gradient descent with L2 weight decay.
type SGD struct {
	LearningRate float64
	WeightDecay  float64
}

// Step applies p -= lr * (g + wd*p).
func (s *SGD) Step(params, grads [][]float64) {
	for i, p := range params {
		g := grads[i]
		for j := range p {
			p[j] -= s.LearningRate * (g[j] + s.WeightDecay*p[j])
		}
	}
}

// Adam implements the Adam update with L2 weight decay folded into the
// gradient.
type Adam struct {
	LearningRate float64
	WeightDecay  float64
	Beta1        float64
	Beta2        float64
	Epsilon      float64

	m, v [][]float64
	t    int
}

// NewAdam returns Adam with the usual betas (0.9, 0.999) and epsilon 1e-8.
func NewAdam(lr, weightDecay float64) *Adam {
	return &Adam{LearningRate: lr, WeightDecay: weightDecay, Beta1: 0.9, Beta2: 0.999, Epsilon: 1e-8}
}

// Step performs one bias-corrected Adam update.
func (a *Adam) Step(params, grads [][]float64) {
	if a.m == nil {
		a.m = make([][]float64, len(params))
		a.v = make([][]float64, len(params))
		for i, p := range params {
			a.m[i] = make([]float64, len(p))
			a.v[i] = make([]float64, len(p))
		}
	}
	a.t++
	c1 := 1 - math.Pow(a.Beta1, float64(a.t))
	c2 := 1 - math.Pow(a.Beta2, float64(a.t))
	for i, p := range params {
		g, m, v := grads[i], a.m[i], a.v[i]
		for j := range p {
			gj := g[j] + a.WeightDecay*p[j]
			m[j] = a.Beta1*m[j] + (1-a.Beta1)*gj
			v[j] = a.Beta2*v[j] + (1-a.Beta2)*gj*gj
			p[j] -= a.LearningRate * (m[j] / c1) / (math.Sqrt(v[j]/c2) + a.Epsilon)
		}
	}
}
