// Package metrics defines the recorders that observe a training run.
// Sinks like PromSink and InfluxSink record epoch losses, evaluation metrics
// and predictions, and can be combined with NewMultiSink. NewSink returns a
// MultiSink automatically when multiple sinks are configured.
package metrics
