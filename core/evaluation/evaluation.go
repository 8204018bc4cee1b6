// Package evaluation scores a fitted regressor on the held-out subset.
package evaluation

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/kilianp07/commutecarbon/core/dataset"
	"github.com/kilianp07/commutecarbon/core/model"
)

// Regressor maps a standardized feature vector to predicted emissions.
type Regressor interface {
	Predict(x []float64) float64
}

// Metrics summarizes prediction quality.
type Metrics struct {
	Samples int `json:"samples"`
	// MSE mean squared error.
	MSE float64 `json:"mse"`
	// RMSE root mean squared error.
	RMSE float64 `json:"rmse"`
	// MAE mean absolute error.
	MAE float64 `json:"mae"`
	// R2 coefficient of determination. NaN when the targets have no variance.
	R2 float64 `json:"r2"`
}

func (m Metrics) String() string {
	return fmt.Sprintf("n=%d mse=%.4f rmse=%.4f mae=%.4f r2=%.4f", m.Samples, m.MSE, m.RMSE, m.MAE, m.R2)
}

type metricsJSON struct {
	Samples int      `json:"samples"`
	MSE     float64  `json:"mse"`
	RMSE    float64  `json:"rmse"`
	MAE     float64  `json:"mae"`
	R2      *float64 `json:"r2"`
}

// MarshalJSON encodes an undefined R2 as null.
func (m Metrics) MarshalJSON() ([]byte, error) {
	out := metricsJSON{Samples: m.Samples, MSE: m.MSE, RMSE: m.RMSE, MAE: m.MAE}
	if !math.IsNaN(m.R2) {
		r2 := m.R2
		out.R2 = &r2
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a null R2 as NaN.
func (m *Metrics) UnmarshalJSON(b []byte) error {
	var in metricsJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*m = Metrics{Samples: in.Samples, MSE: in.MSE, RMSE: in.RMSE, MAE: in.MAE, R2: math.NaN()}
	if in.R2 != nil {
		m.R2 = *in.R2
	}
	return nil
}

// Pair is one held-out trip's observed and predicted emissions in kg.
type Pair struct {
	Actual    float64 `json:"actual"`
	Predicted float64 `json:"predicted"`
}

// Predictions runs reg over test, keeping the order of test.
func Predictions(reg Regressor, test []dataset.Sample) []Pair {
	out := make([]Pair, len(test))
	for i, s := range test {
		out[i] = Pair{Actual: s.Y, Predicted: reg.Predict(s.X)}
	}
	return out
}

// Evaluate runs one inference pass of reg over test.
func Evaluate(reg Regressor, test []dataset.Sample) (Metrics, error) {
	return EvaluateFunc(func(s dataset.Sample) float64 { return reg.Predict(s.X) }, test)
}

// EvaluateFunc scores an arbitrary prediction function over test.
func EvaluateFunc(predict func(dataset.Sample) float64, test []dataset.Sample) (Metrics, error) {
	if len(test) == 0 {
		return Metrics{}, &model.InsufficientDataError{Op: "evaluate", Have: 0, Need: 1}
	}
	n := float64(len(test))
	var absSum, sqSum, mean float64
	for _, s := range test {
		d := s.Y - predict(s)
		absSum += math.Abs(d)
		sqSum += d * d
		mean += s.Y
	}
	mean /= n
	var tss float64
	for _, s := range test {
		tss += (s.Y - mean) * (s.Y - mean)
	}
	m := Metrics{
		Samples: len(test),
		MSE:     sqSum / n,
		RMSE:    math.Sqrt(sqSum / n),
		MAE:     absSum / n,
		R2:      math.NaN(),
	}
	if tss > 0 {
		m.R2 = 1 - sqSum/tss
	}
	return m, nil
}
