package metrics

import "time"

// ResultLabel enumerates per-file and per-run result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for conversions.
type Recorder interface {
	// ObserveFileDuration records one single-file conversion, labeled by root tag.
	ObserveFileDuration(tag string, d time.Duration)
	IncFileResult(result ResultLabel)
	ObserveRunDuration(d time.Duration)
	IncRunOutcome(outcome ResultLabel)
	// SetIncludes records the number of XInclude entries in the last synthesized index.
	SetIncludes(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveFileDuration(string, time.Duration) {}
func (NoopRecorder) IncFileResult(ResultLabel)                 {}
func (NoopRecorder) ObserveRunDuration(time.Duration)          {}
func (NoopRecorder) IncRunOutcome(ResultLabel)                 {}
func (NoopRecorder) SetIncludes(int)                           {}

// Outcome maps a run error to its outcome label.
func Outcome(err error, canceled bool) ResultLabel {
	switch {
	case err == nil:
		return ResultSuccess
	case canceled:
		return ResultCanceled
	default:
		return ResultFailed
	}
}
