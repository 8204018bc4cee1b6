package charts

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/commutecarbon/core/evaluation"
)

// ErrNoPredictions is returned when there is nothing to plot.
var ErrNoPredictions = errors.New("no predictions to plot")

// WritePredictionChart renders predicted against observed emissions of the
// held-out trips to w, with the y = x line a perfect model would follow.
func WritePredictionChart(w io.Writer, pairs []evaluation.Pair) error {
	if len(pairs) == 0 {
		return ErrNoPredictions
	}
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Predicted vs actual CO2",
			Subtitle: fmt.Sprintf("%d held-out trips", len(pairs)),
		}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Actual CO2 (kg)"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Predicted CO2 (kg)"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "item"}),
	)

	lo, hi := math.Inf(1), math.Inf(-1)
	points := make([]opts.ScatterData, 0, len(pairs))
	for _, p := range pairs {
		if !finite(p.Actual) || !finite(p.Predicted) {
			continue
		}
		points = append(points, opts.ScatterData{Value: []float64{p.Actual, p.Predicted}})
		lo = math.Min(lo, math.Min(p.Actual, p.Predicted))
		hi = math.Max(hi, math.Max(p.Actual, p.Predicted))
	}
	if len(points) == 0 {
		return ErrNoPredictions
	}
	scatter.AddSeries("Trips", points)

	ideal := charts.NewLine()
	ideal.AddSeries("Ideal", []opts.LineData{
		{Value: []float64{lo, lo}},
		{Value: []float64{hi, hi}},
	})
	scatter.Overlap(ideal)

	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
