package engine

import (
	"time"

	"github.com/mattepiu/cortex/internal/coretypes"
	"github.com/mattepiu/cortex/internal/decay"
	"github.com/mattepiu/cortex/internal/storage"
	"github.com/mattepiu/cortex/internal/telemetry"
)

// DecaySweepResult summarizes one sweep's effect, for logging/telemetry.
type DecaySweepResult struct {
	Processed int
	Archived  int
}

const decaySweepPageSize = 500

// RunDecaySweep loads every non-archived memory, recomputes its decayed
// confidence via decay.ProcessBatch, persists the new confidence, and
// archives whatever crosses the archival floor. Grounded on spec.md
// §4.2's "decay runs as a periodic batch pass over the corpus, never on
// the read path" and wired here since no pack source ships the
// scheduling loop itself.
func (e *Engine) RunDecaySweep(now time.Time) (DecaySweepResult, error) {
	timer := telemetry.NewTimer()

	// Read the whole non-archived corpus before mutating anything:
	// archiving a record mid-page would shift OFFSET-based pagination
	// out from under an in-progress sweep.
	var memories []*coretypes.Memory
	for offset := 0; ; offset += decaySweepPageSize {
		page, err := e.Store.QueryBy(storage.QueryFilters{
			IncludeArchived: false,
			Limit:           decaySweepPageSize,
			Offset:          offset,
		})
		if err != nil {
			return DecaySweepResult{}, err
		}
		memories = append(memories, page...)
		if len(page) < decaySweepPageSize {
			break
		}
	}

	records := make([]decay.RecordInput, len(memories))
	for i, m := range memories {
		records[i] = decay.FromMemory(m)
	}

	var total DecaySweepResult
	for _, r := range decay.ProcessBatch(records, decay.Context{Now: now, HalfLives: e.HalfLives}) {
		confidence := r.DecayedConfidence
		update := &storage.MemoryUpdate{
			Confidence: &confidence,
			ChangedBy:  "decay-sweep",
			Reason:     "periodic confidence decay",
		}
		if err := e.Store.Update(r.MemoryID, update); err != nil {
			return DecaySweepResult{}, err
		}
		total.Processed++
		if r.Archival != nil {
			if err := e.Store.Archive(r.MemoryID, "decay-sweep", r.Archival.Reason); err != nil {
				return DecaySweepResult{}, err
			}
			total.Archived++
		}
	}

	timer.ObserveSeconds(e.Metrics.DecayRunDuration)
	e.Metrics.DecayRunsTotal.Inc()

	log.Info("decay sweep complete", "processed", total.Processed, "archived", total.Archived)

	return total, nil
}
