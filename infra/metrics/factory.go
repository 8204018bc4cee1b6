package metrics

import (
	"github.com/kilianp07/commutecarbon/core/factory"
	coremetrics "github.com/kilianp07/commutecarbon/core/metrics"
)

// init registers built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterSink("prometheus", func(conf map[string]any) (coremetrics.RunRecorder, error) {
		var c PromConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewPromSink(c)
	})

	_ = coremetrics.RegisterSink("influx", func(conf map[string]any) (coremetrics.RunRecorder, error) {
		var c InfluxConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c), nil
	})
}
