package charts

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/commutecarbon/core/dataset"
	"github.com/kilianp07/commutecarbon/core/model"
)

// WriteEmissionsChart renders the mean observed emissions per traffic
// condition of a corpus summary to w. Conditions absent from the corpus are
// skipped.
func WriteEmissionsChart(w io.Writer, sum dataset.Summary) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "CO2 emissions by traffic condition",
			Subtitle: fmt.Sprintf("%d trips, overall mean %.2f kg", sum.Records, sum.MeanKg),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Traffic"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Mean CO2 (kg)"}),
	)

	var xAxis []string
	var means, counts []opts.BarData
	for _, tc := range model.TrafficConditions() {
		g, ok := sum.ByTraffic[tc]
		if !ok {
			continue
		}
		xAxis = append(xAxis, tc.String())
		means = append(means, opts.BarData{Value: g.MeanKg})
		counts = append(counts, opts.BarData{Value: g.Count})
	}
	bar.SetXAxis(xAxis).
		AddSeries("Mean CO2 (kg)", means).
		AddSeries("Trips", counts)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
