// Package infra contains technical adapters: dataset file formats, metric
// exporters, the MQTT publisher, charts, scenario files and error
// reporting. These packages depend only on the interfaces defined in the
// core packages.
package infra
