package recorder

import "github.com/ducminhle1904/dca-montecarlo/pkg/orchestrator"

// NoopRecorder is a no-op implementation used when recording is disabled.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *orchestrator.RunResult) error { return nil }
func (n *NoopRecorder) RecentRuns(_ int) ([]RunSummary, error)    { return nil, nil }
func (n *NoopRecorder) Close() error                              { return nil }
