package consolidation

// TuningAdjustment describes one nudge the auto-tuner applied, for
// audit/observability. Declared in mod.rs's auto_tuning module export
// list; no source shipped, implemented here from spec.md §4.4's
// "Auto-tuning nudges thresholds upward when success rate falls below
// target" text.
type TuningAdjustment struct {
	Field    string
	Previous float64
	Next     float64
	Reason   string
}

const (
	autoTuneStep          = 0.02
	autoTuneMinSuccess    = 0.7
	autoTuneWindowMinRuns = 5
)

// AutoTune inspects the dashboard's rolling success rate and, if it has
// fallen below autoTuneMinSuccess over at least autoTuneWindowMinRuns
// runs, nudges similarity_threshold and novelty_threshold upward by a
// small fixed step — stricter clustering and a stricter novelty bar
// both reduce false-positive consolidations, which is what a falling
// success rate signals. Thresholds are capped at 0.99 so the pipeline
// never becomes entirely unreachable.
func AutoTune(d *Dashboard) []TuningAdjustment {
	if d.TotalRuns < autoTuneWindowMinRuns || d.SuccessRate >= autoTuneMinSuccess {
		return nil
	}

	var adjustments []TuningAdjustment

	prevSim := d.Thresholds.SimilarityThreshold
	nextSim := clampThreshold(prevSim + autoTuneStep)
	if nextSim != prevSim {
		d.Thresholds.SimilarityThreshold = nextSim
		adjustments = append(adjustments, TuningAdjustment{
			Field: "similarity_threshold", Previous: prevSim, Next: nextSim,
			Reason: "success rate below target",
		})
	}

	prevNov := d.Thresholds.NoveltyThreshold
	nextNov := clampThreshold(prevNov + autoTuneStep)
	if nextNov != prevNov {
		d.Thresholds.NoveltyThreshold = nextNov
		adjustments = append(adjustments, TuningAdjustment{
			Field: "novelty_threshold", Previous: prevNov, Next: nextNov,
			Reason: "success rate below target",
		})
	}

	return adjustments
}

func clampThreshold(v float64) float64 {
	if v > 0.99 {
		return 0.99
	}
	return v
}
