package consolidation

// TunableThresholds are the auto-tuner's adjustable knobs, mirroring
// config.ConsolidationConfig's similarity_threshold/novelty_threshold
// fields. Ported structurally from monitoring/auto_tuning.rs's
// TunableThresholds (declared in mod.rs, source not shipped).
type TunableThresholds struct {
	SimilarityThreshold float64
	NoveltyThreshold    float64
}

// DefaultTunableThresholds mirrors config.ConsolidationConfig's defaults.
func DefaultTunableThresholds() TunableThresholds {
	return TunableThresholds{SimilarityThreshold: 0.75, NoveltyThreshold: NoveltyThreshold}
}

// Dashboard is a running snapshot of consolidation health, ported
// directly from original_source's monitoring/dashboard.rs
// ConsolidationDashboard.
type Dashboard struct {
	TotalRuns        int
	SuccessfulRuns   int
	LatestMetrics    *Metrics
	LatestAssessment *QualityAssessment
	Thresholds       TunableThresholds
	SuccessRate      float64
}

// NewDashboard returns an empty dashboard with default thresholds.
func NewDashboard() *Dashboard {
	return &Dashboard{Thresholds: DefaultTunableThresholds()}
}

// RecordRun appends one run's metrics/assessment and updates the
// running success rate. Ported directly from dashboard.rs's record_run.
func (d *Dashboard) RecordRun(m Metrics, a QualityAssessment) {
	d.TotalRuns++
	if a.OverallPass {
		d.SuccessfulRuns++
	}
	if d.TotalRuns > 0 {
		d.SuccessRate = float64(d.SuccessfulRuns) / float64(d.TotalRuns)
	} else {
		d.SuccessRate = 0
	}
	mCopy := m
	aCopy := a
	d.LatestMetrics = &mCopy
	d.LatestAssessment = &aCopy
}
