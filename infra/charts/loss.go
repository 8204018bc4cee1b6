// Package charts renders training runs as standalone HTML pages.
package charts

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/commutecarbon/core/history"
)

// ErrNoEpochs is returned for runs without a loss history.
var ErrNoEpochs = errors.New("run has no recorded epochs")

// WriteLossChart renders the training and held-out loss curves of run to w.
func WriteLossChart(w io.Writer, run history.Run) error {
	if len(run.Losses) == 0 {
		return ErrNoEpochs
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Training loss",
			Subtitle: fmt.Sprintf("run %s on %s, %d trips", run.ID, run.Dataset, run.Records),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Epoch"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "MSE (scaled)"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)

	xAxis := make([]string, len(run.Losses))
	train := make([]opts.LineData, len(run.Losses))
	heldOut := make([]opts.LineData, len(run.Losses))
	for i, e := range run.Losses {
		xAxis[i] = strconv.Itoa(e.Epoch)
		train[i] = opts.LineData{Value: lossValue(e.TrainLoss)}
		heldOut[i] = opts.LineData{Value: lossValue(e.HeldOutLoss)}
	}
	line.SetXAxis(xAxis).
		AddSeries("Training loss", train).
		AddSeries("Held-out loss", heldOut)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// lossValue maps a diverged loss to "-", which ECharts draws as a gap.
func lossValue(v float64) any {
	if !finite(v) {
		return "-"
	}
	return v
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
