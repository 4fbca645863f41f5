package consolidation

// Metrics is the quality-metrics struct a consolidation run emits.
// Field names and meanings ported from original_source's
// cortex-core/models/consolidation_metrics.rs ConsolidationMetrics.
type Metrics struct {
	Precision         float64
	CompressionRatio  float64
	Lift              float64
	Stability         float64
}

// QualityTargets are the minimum acceptable values per metric; a run
// failing any of them trips the auto-tuner (spec.md §4.4 "Auto-tuning
// nudges thresholds upward when success rate falls below target").
type QualityTargets struct {
	MinPrecision        float64
	MinCompressionRatio float64
	MinLift             float64
	MinStability        float64
}

// DefaultQualityTargets is a reasonable starting bar: most abstractions
// should be precise and durable, and worth at least doubling the source
// material's information density.
func DefaultQualityTargets() QualityTargets {
	return QualityTargets{
		MinPrecision:        0.7,
		MinCompressionRatio: 2.0,
		MinLift:             1.2,
		MinStability:        0.6,
	}
}

// QualityAssessment is dashboard.rs's QualityAssessment: per-metric
// pass/fail plus an overall verdict and the reasons for failure.
type QualityAssessment struct {
	PrecisionOK        bool
	CompressionOK      bool
	LiftOK             bool
	StabilityOK        bool
	OverallPass        bool
	Issues             []string
}

// AssessQuality compares m against targets and reports which, if any,
// metrics fell short. This package's own implementation — no metrics.rs
// source is shipped, only its consumer (dashboard.rs) and the two types
// it expects.
func AssessQuality(m Metrics, targets QualityTargets) QualityAssessment {
	a := QualityAssessment{
		PrecisionOK:   m.Precision >= targets.MinPrecision,
		CompressionOK: m.CompressionRatio >= targets.MinCompressionRatio,
		LiftOK:        m.Lift >= targets.MinLift,
		StabilityOK:   m.Stability >= targets.MinStability,
	}
	if !a.PrecisionOK {
		a.Issues = append(a.Issues, "precision below target")
	}
	if !a.CompressionOK {
		a.Issues = append(a.Issues, "compression ratio below target")
	}
	if !a.LiftOK {
		a.Issues = append(a.Issues, "lift below target")
	}
	if !a.StabilityOK {
		a.Issues = append(a.Issues, "stability below target")
	}
	a.OverallPass = a.PrecisionOK && a.CompressionOK && a.LiftOK && a.StabilityOK
	return a
}
