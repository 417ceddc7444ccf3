package analysis

import "time"

// Default detection thresholds. The host may override them via configuration;
// the engine compares against whatever it is given without validation.
const (
	DefaultTimeout         = 10 * time.Second
	DefaultSlowResponse    = 3 * time.Second
	DefaultDuplicateWindow = 1 * time.Second
)

// Thresholds carries the three timing knobs of the engine.
type Thresholds struct {
	Timeout         time.Duration
	SlowResponse    time.Duration
	DuplicateWindow time.Duration
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Timeout:         DefaultTimeout,
		SlowResponse:    DefaultSlowResponse,
		DuplicateWindow: DefaultDuplicateWindow,
	}
}

// Engine runs diagnostic detection over request records. It is stateless:
// every pass recomputes its grouping and sequencing state from the snapshot
// it is handed, so repeated passes over an unchanged snapshot yield the same
// result. Safe for concurrent use.
type Engine struct {
	thresholds Thresholds
}

func NewEngine(t Thresholds) *Engine {
	return &Engine{thresholds: t}
}

func (e *Engine) Thresholds() Thresholds { return e.thresholds }
