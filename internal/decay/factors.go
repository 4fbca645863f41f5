package decay

import (
	"math"
	"time"

	"github.com/mattepiu/cortex/internal/coretypes"
)

// HalfLives maps a Kind to its temporal half-life. A zero duration is the
// sentinel for "infinite half-life" (spec.md §4.2: core never decays
// temporally). Decided in DESIGN.md's Open Questions: operator overrides
// (decay.half_life_overrides) replace an entry wholesale rather than
// scaling it, since a half-life is a concrete duration, not a factor.
type HalfLives map[coretypes.Kind]time.Duration

// DefaultHalfLives assigns a half-life per kind, biased toward what each
// kind is for: episodic events decay fastest, decisions and preferences
// are durable, core never decays.
func DefaultHalfLives() HalfLives {
	day := 24 * time.Hour
	return HalfLives{
		coretypes.KindCore:           0,
		coretypes.KindTribal:         180 * day,
		coretypes.KindProcedural:     120 * day,
		coretypes.KindSemantic:       90 * day,
		coretypes.KindEpisodic:       14 * day,
		coretypes.KindDecision:       365 * day,
		coretypes.KindInsight:        60 * day,
		coretypes.KindReference:      90 * day,
		coretypes.KindPreference:     365 * day,
		coretypes.KindCodePattern:    45 * day,
		coretypes.KindCodeConstraint: 60 * day,
	}
}

// WithOverrides returns a copy of h with each non-zero entry in overrides
// replacing the corresponding kind's half-life.
func (h HalfLives) WithOverrides(overrides map[coretypes.Kind]time.Duration) HalfLives {
	out := make(HalfLives, len(h))
	for k, v := range h {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// temporalFactor computes exp(-days_since_access / half_life); a zero
// half-life means infinite (no decay), returning 1.0 regardless of age.
// Grounded on original_source factors/temporal.rs.
func temporalFactor(halfLife time.Duration, lastAccessed, now time.Time) float64 {
	if halfLife <= 0 {
		return 1.0
	}
	daysSinceAccess := now.Sub(lastAccessed).Hours() / 24
	if daysSinceAccess < 0 {
		daysSinceAccess = 0
	}
	halfLifeDays := halfLife.Hours() / 24
	return math.Exp(-daysSinceAccess / halfLifeDays)
}

// citationAlpha is the default weight applied to the stale-citation
// ratio; spec.md §4.2 calls this "tuned per install" without a fixed
// value, so it is exposed as a Context field with this as the default.
const DefaultCitationAlpha = 0.5

// citationFactor computes 1 - alpha*staleRatio, floored at 0 so a fully
// stale record cannot push confidence negative before clamping.
func citationFactor(alpha, staleRatio float64) float64 {
	f := 1 - alpha*staleRatio
	if f < 0 {
		return 0
	}
	return f
}

// usageFactor computes min(1.5, 1 + log10(accessCount+1)*0.2). Grounded
// on original_source factors/usage.rs verbatim.
func usageFactor(accessCount int) float64 {
	boost := 1 + math.Log10(float64(accessCount+1))*0.2
	if boost > 1.5 {
		return 1.5
	}
	return boost
}

// importanceMultipliers gives each importance tier a small anchor
// multiplier, >1 for critical per spec.md §4.2.
var importanceMultipliers = map[coretypes.Importance]float64{
	coretypes.ImportanceLow:      0.9,
	coretypes.ImportanceNormal:   1.0,
	coretypes.ImportanceHigh:     1.1,
	coretypes.ImportanceCritical: 1.25,
}

func importanceFactor(imp coretypes.Importance) float64 {
	if m, ok := importanceMultipliers[imp]; ok {
		return m
	}
	return 1.0
}

// patternBoost is applied when a record's linked patterns are still
// active (spec.md §4.2: "a small multiplier").
const patternBoost = 1.1

func patternFactor(hasActivePatterns bool) float64 {
	if hasActivePatterns {
		return patternBoost
	}
	return 1.0
}
