package core

import "context"

// NopMetricsRecorder discards all measurements. Installed when no recorder
// is configured so instrumentation call sites never nil-check.
type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string)         {}
func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}
