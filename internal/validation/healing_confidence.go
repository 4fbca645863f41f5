package validation

import "github.com/mattepiu/cortex/internal/coretypes"

// AdjustConfidence blends a memory's current confidence toward a
// validation score, weighted by strength (0 = no change, 1 = full
// replacement). Ported directly from
// healing/confidence_adjust.rs's adjust.
func AdjustConfidence(m *coretypes.Memory, validationScore, strength float64) {
	strength = clamp01(strength)
	m.Confidence = coretypes.ClampConfidence(m.Confidence*(1-strength) + validationScore*strength)
}

// ApplyConfidenceDelta applies a direct delta to a memory's confidence.
// Ported directly from healing/confidence_adjust.rs's apply_delta.
func ApplyConfidenceDelta(m *coretypes.Memory, delta float64) {
	m.Confidence = coretypes.ClampConfidence(m.Confidence + delta)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
