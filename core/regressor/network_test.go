package regressor

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func sampleBatch() (*mat.Dense, []float64) {
	rows := [][]float64{
		{-1.2, -0.9, -1.1, -1.0},
		{0.1, 0.2, -0.3, 0.0},
		{1.3, 1.1, 0.9, 1.2},
		{-0.4, 0.5, 0.2, -0.6},
	}
	return Batch(rows), []float64{3.1, 4.1, 4.8, 3.9}
}

func TestNew_Shapes(t *testing.T) {
	n, err := New(4, DefaultDropout, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 4, n.InputDim())
	ts := n.Tensors()
	require.Len(t, ts, 6)
	assert.Len(t, ts[0], 32*4)
	assert.Len(t, ts[1], 32)
	assert.Len(t, ts[2], 16*32)
	assert.Len(t, ts[3], 16)
	assert.Len(t, ts[4], 16)
	assert.Len(t, ts[5], 1)
	bound := 1 / math.Sqrt(4)
	for _, v := range ts[0] {
		assert.LessOrEqual(t, math.Abs(v), bound)
	}

	_, err = New(0, DefaultDropout, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
	_, err = New(4, 1, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}

func TestForward_Modes(t *testing.T) {
	n, err := New(4, 0.5, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	x, _ := sampleBatch()

	a := n.Forward(x, Inference, nil)
	b := n.Forward(x, Inference, rand.New(rand.NewSource(99)))
	assert.Equal(t, a, b, "inference must be deterministic")

	t1 := n.Forward(x, Training, rand.New(rand.NewSource(5)))
	t2 := n.Forward(x, Training, rand.New(rand.NewSource(5)))
	assert.Equal(t, t1, t2, "same seed gives the same dropout mask")
	t3 := n.Forward(x, Training, rand.New(rand.NewSource(6)))
	assert.NotEqual(t, t1, t3)

	assert.Equal(t, a[2], n.Predict([]float64{1.3, 1.1, 0.9, 1.2}))
}

// Gradients must agree with central finite differences of the batch MSE.
func TestGradient_FiniteDifferences(t *testing.T) {
	n, err := New(4, 0, rand.New(rand.NewSource(11)))
	require.NoError(t, err)
	x, y := sampleBatch()

	loss := func() float64 {
		out := n.Forward(x, Inference, nil)
		var s float64
		for i, v := range out {
			s += (v - y[i]) * (v - y[i])
		}
		return s / float64(len(out))
	}

	l0, g, err := n.Gradient(x, y, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.InDelta(t, loss(), l0, 1e-12)

	params := n.Tensors()
	grads := g.Tensors()
	const eps = 1e-6
	for ti := range params {
		for _, j := range []int{0, len(params[ti]) / 2, len(params[ti]) - 1} {
			orig := params[ti][j]
			params[ti][j] = orig + eps
			up := loss()
			params[ti][j] = orig - eps
			down := loss()
			params[ti][j] = orig
			num := (up - down) / (2 * eps)
			assert.InDelta(t, num, grads[ti][j], 1e-5, "tensor %d index %d", ti, j)
		}
	}
}

func TestGradient_Mismatch(t *testing.T) {
	n, err := New(4, 0, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	x, _ := sampleBatch()
	_, _, err = n.Gradient(x, []float64{1}, nil)
	assert.Error(t, err)
}

func TestParameters_RoundTrip(t *testing.T) {
	n, err := New(4, DefaultDropout, rand.New(rand.NewSource(8)))
	require.NoError(t, err)
	p := n.Parameters()
	require.NoError(t, p.Validate())

	back, err := FromParameters(p)
	require.NoError(t, err)
	x, _ := sampleBatch()
	assert.Equal(t, n.Forward(x, Inference, nil), back.Forward(x, Inference, nil))
	assert.Equal(t, DefaultDropout, back.Dropout())

	// Parameters returns a copy.
	p.Layers[0].Weights[0] += 1
	assert.NotEqual(t, p.Layers[0].Weights[0], n.Tensors()[0][0])
}

func TestParameters_Validate(t *testing.T) {
	n, err := New(4, DefaultDropout, rand.New(rand.NewSource(8)))
	require.NoError(t, err)

	p := n.Parameters()
	p.Layers = p.Layers[:2]
	assert.Error(t, p.Validate())

	p = n.Parameters()
	p.Layers[1].Bias = p.Layers[1].Bias[:3]
	assert.Error(t, p.Validate())

	p = n.Parameters()
	p.InputDim = 5
	_, err = FromParameters(p)
	assert.Error(t, err)
}
