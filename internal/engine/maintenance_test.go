package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattepiu/cortex/internal/coretypes"
)

func TestRunDecaySweep_ArchivesStaleLowConfidenceMemory(t *testing.T) {
	e, err := New(newTestConfig(t))
	require.NoError(t, err)
	defer e.Close()

	stale := &coretypes.Memory{
		Kind:         coretypes.KindEpisodic,
		Payload:      coretypes.NewTextPayload(coretypes.KindEpisodic, "one-off debugging note", nil),
		Summary:      "one-off debugging note",
		Confidence:   0.2,
		Importance:   coretypes.ImportanceLow,
		Namespace:    "default",
		SourceAgent:  "test-agent",
		LastAccessed: time.Now().AddDate(-2, 0, 0),
	}
	require.NoError(t, e.Store.Create(stale))

	result, err := e.RunDecaySweep(time.Now())
	require.NoError(t, err)
	assert.Greater(t, result.Processed, 0, "expected at least one processed record")

	got, err := e.Store.Get(stale.ID)
	require.NoError(t, err)
	assert.True(t, got.Archived, "expected a two-year-stale low-confidence memory to be archived, got confidence %v", got.Confidence)
}

func TestRunMaintenancePass_SkipsConsolidationBelowThrottle(t *testing.T) {
	e, err := New(newTestConfig(t))
	require.NoError(t, err)
	defer e.Close()

	assert.NoError(t, e.RunMaintenancePass(context.Background(), time.Now(), 0))
}
