package consolidation

import "time"

// ThrottleConfig bounds how often consolidation may run.
type ThrottleConfig struct {
	MinInterval time.Duration
}

// DefaultThrottleConfig refuses to re-run within an hour of the last run.
func DefaultThrottleConfig() ThrottleConfig {
	return ThrottleConfig{MinInterval: time.Hour}
}

// Throttle tracks the last run time and answers whether a new run is
// allowed yet. Declared in mod.rs's scheduling::throttle module; no
// source shipped, implemented here directly from its name and the
// adaptive-scheduler text in spec.md §4.4.
type Throttle struct {
	cfg     ThrottleConfig
	lastRun time.Time
}

// NewThrottle returns a Throttle that has never run.
func NewThrottle(cfg ThrottleConfig) *Throttle {
	return &Throttle{cfg: cfg}
}

// Allow reports whether enough time has elapsed since the last run.
func (t *Throttle) Allow(now time.Time) bool {
	if t.lastRun.IsZero() {
		return true
	}
	return now.Sub(t.lastRun) >= t.cfg.MinInterval
}

// MarkRun records now as the last run time.
func (t *Throttle) MarkRun(now time.Time) {
	t.lastRun = now
}
