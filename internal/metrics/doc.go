// Package metrics records conversion metrics.
//
// Components receive a Recorder and default to NoopRecorder, so nothing has to
// nil-check before recording:
//
//	conv := convert.NewFileConverter(runner, convert.WithRecorder(metrics.NoopRecorder{}))
//
// When a textfile path is configured the CLI swaps in a PrometheusRecorder and,
// once the run ends, writes its registry in the node_exporter textfile format so
// batch conversions can be scraped after the fact.
package metrics
