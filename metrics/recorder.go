// Package metrics records pipeline activity.
package metrics

import "time"

// Pipeline stage labels.
const (
	StageLoad      = "load"
	StageAggregate = "aggregate"
	StageForecast  = "forecast"
	StageAnomaly   = "anomaly"
	StageRender    = "render"
)

// Recorder defines the interface for recording pipeline metrics.
type Recorder interface {
	// ObserveStage records one run of a pipeline stage.
	ObserveStage(stage string, duration time.Duration, err error)

	// ObserveFetch records the download time of one upstream table.
	ObserveFetch(metric string, duration time.Duration)

	// SetAnomalies records how many days the last render flagged.
	SetAnomalies(n int)
}

// NoopRecorder implements Recorder with no-op behavior for when metrics are disabled.
type NoopRecorder struct{}

// Nop returns a no-op metrics recorder that discards all metrics.
func Nop() Recorder {
	return &NoopRecorder{}
}

// ObserveStage does nothing in the no-op recorder.
func (n *NoopRecorder) ObserveStage(_ string, _ time.Duration, _ error) {}

// ObserveFetch does nothing in the no-op recorder.
func (n *NoopRecorder) ObserveFetch(_ string, _ time.Duration) {}

// SetAnomalies does nothing in the no-op recorder.
func (n *NoopRecorder) SetAnomalies(_ int) {}
