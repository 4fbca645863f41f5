package engine

import (
	"context"
	"time"
)

// RunMaintenancePass runs one decay sweep followed by a consolidation
// pass, if the consolidation throttle/trigger logic says one is due.
// Grounded on spec.md §4.4's adaptive scheduler sitting alongside the
// decay sweep as the two periodic background passes a long-running
// process performs between requests.
func (e *Engine) RunMaintenancePass(ctx context.Context, now time.Time, recentIngestRate float64) error {
	if _, err := e.RunDecaySweep(now); err != nil {
		return err
	}

	shouldRun, reason, err := e.Consolidation.ShouldRun(now, recentIngestRate)
	if err != nil {
		return err
	}
	if !shouldRun {
		log.Debug("consolidation skipped", "reason", reason)
		return nil
	}

	result, err := e.Consolidation.Run(ctx, now)
	if err != nil {
		return err
	}
	log.Info("consolidation pass complete",
		"clusters_formed", result.ClustersFormed,
		"abstracts_created", len(result.AbstractsCreated),
		"sources_superseded", result.SourcesSuperseded,
		"pruned", result.Pruned)

	return nil
}
