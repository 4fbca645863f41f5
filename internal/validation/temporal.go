package validation

import (
	"time"

	"github.com/mattepiu/cortex/internal/coretypes"
	"github.com/mattepiu/cortex/internal/decay"
)

// scoreTemporal checks an explicit expiry (ValidUntil) and age against
// the kind's expected lifetime. No temporal.rs source shipped; built
// from spec.md §4.6's "expiry, age vs expected lifetime" description,
// reusing decay.HalfLives as the expected-lifetime table rather than
// inventing a second per-kind duration table.
func scoreTemporal(m *coretypes.Memory, halfLives decay.HalfLives, now time.Time) float64 {
	if m.ValidUntil != nil && now.After(*m.ValidUntil) {
		return 0.0
	}

	expected := halfLives[m.Kind]
	if expected <= 0 {
		return 1.0 // no expected lifetime configured (e.g. KindCore): never penalized by age alone
	}

	age := now.Sub(m.TransactionTime)
	if age <= 0 {
		return 1.0
	}

	ratio := age.Hours() / expected.Hours()
	switch {
	case ratio <= 1.0:
		return 1.0
	case ratio >= 3.0:
		return 0.0
	default:
		// Linear falloff from 1.0 at ratio==1 to 0.0 at ratio==3.
		return 1.0 - (ratio-1.0)/2.0
	}
}
