package concurrency

import (
	"fmt"
	"sync"
	"time"

	"github.com/mattepiu/cortex/internal/coretypes"
)

// Direction is whether a reclassification rule raises or lowers
// importance. Ported directly from cortex-reclassification/src/
// rules.rs's Direction.
type Direction string

const (
	Upgrade   Direction = "upgrade"
	Downgrade Direction = "downgrade"
)

// ReclassificationRule is one threshold/cooldown pair governing a
// single importance transition. Ported directly from rules.rs's
// ReclassificationRule.
type ReclassificationRule struct {
	From                coretypes.Importance
	To                  coretypes.Importance
	Direction           Direction
	ConfidenceThreshold float64
	MinAgeMonths        float64
}

// AllRules returns the full, fixed reclassification table. Ported
// directly from rules.rs's all_rules: three upgrade rules and three
// downgrade rules, one per adjacent importance pair.
func AllRules() []ReclassificationRule {
	return []ReclassificationRule{
		{From: coretypes.ImportanceLow, To: coretypes.ImportanceNormal, Direction: Upgrade, ConfidenceThreshold: 0.7, MinAgeMonths: 2},
		{From: coretypes.ImportanceNormal, To: coretypes.ImportanceHigh, Direction: Upgrade, ConfidenceThreshold: 0.85, MinAgeMonths: 2},
		{From: coretypes.ImportanceHigh, To: coretypes.ImportanceCritical, Direction: Upgrade, ConfidenceThreshold: 0.95, MinAgeMonths: 3},
		{From: coretypes.ImportanceCritical, To: coretypes.ImportanceHigh, Direction: Downgrade, ConfidenceThreshold: 0.5, MinAgeMonths: 3},
		{From: coretypes.ImportanceHigh, To: coretypes.ImportanceNormal, Direction: Downgrade, ConfidenceThreshold: 0.3, MinAgeMonths: 3},
		{From: coretypes.ImportanceNormal, To: coretypes.ImportanceLow, Direction: Downgrade, ConfidenceThreshold: 0.15, MinAgeMonths: 3},
	}
}

// FindApplicableRule returns the rule matching current's importance
// whose age/confidence condition is satisfied, or nil if none applies.
// An upgrade rule fires when confidence has risen to at least its
// threshold and the memory is at least MinAgeMonths old; a downgrade
// rule fires when confidence has fallen to at most its threshold under
// the same age gate. Ported directly from rules.rs's
// find_applicable_rule.
func FindApplicableRule(current coretypes.Importance, confidence, ageMonths float64) *ReclassificationRule {
	for _, rule := range AllRules() {
		if rule.From != current {
			continue
		}
		if ageMonths < rule.MinAgeMonths {
			continue
		}
		switch rule.Direction {
		case Upgrade:
			if confidence >= rule.ConfidenceThreshold {
				r := rule
				return &r
			}
		case Downgrade:
			if confidence <= rule.ConfidenceThreshold {
				r := rule
				return &r
			}
		}
	}
	return nil
}

// ReclassificationChange is one applied or proposed importance change,
// kept in the audit trail. Declared in cortex-reclassification/src/
// lib.rs's use of engine.rs/safeguards.rs (neither shipped); built here
// from spec.md §4.7's "full audit trail" requirement.
type ReclassificationChange struct {
	MemoryID  string
	From      coretypes.Importance
	To        coretypes.Importance
	Reason    string
	Timestamp time.Time
}

// Reclassifier re-evaluates memory importance on a monthly cadence,
// applying AllRules() under two safeguards neither shipped in the
// retrieval pack but named by spec.md §4.7: a critical memory is never
// automatically downgraded (only a human can demote it), and at most
// one change is applied per memory per calendar month regardless of how
// many rules would otherwise fire.
type Reclassifier struct {
	mu          sync.Mutex
	lastChanged map[string]time.Time
	audit       []ReclassificationChange
}

// NewReclassifier returns an empty reclassifier.
func NewReclassifier() *Reclassifier {
	return &Reclassifier{lastChanged: make(map[string]time.Time)}
}

// Evaluate checks whether m qualifies for a reclassification at now,
// given its age (months since m.TransactionTime) and current confidence.
// Returns the change applied, or nil if no rule fired or a safeguard
// blocked it.
func (r *Reclassifier) Evaluate(m *coretypes.Memory, now time.Time) *ReclassificationChange {
	ageMonths := now.Sub(m.TransactionTime).Hours() / 24 / 30

	rule := FindApplicableRule(m.Importance, m.Confidence, ageMonths)
	if rule == nil {
		return nil
	}

	if rule.Direction == Downgrade && m.Importance == coretypes.ImportanceCritical {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if last, ok := r.lastChanged[m.ID]; ok && now.Sub(last) < 30*24*time.Hour {
		return nil
	}

	change := ReclassificationChange{
		MemoryID:  m.ID,
		From:      rule.From,
		To:        rule.To,
		Reason:    reclassificationReason(*rule, m.Confidence),
		Timestamp: now,
	}
	r.lastChanged[m.ID] = now
	r.audit = append(r.audit, change)

	m.Importance = rule.To

	return &change
}

func reclassificationReason(rule ReclassificationRule, confidence float64) string {
	verb := "rose to"
	if rule.Direction == Downgrade {
		verb = "fell to"
	}
	return fmt.Sprintf("%s: confidence %s %.2f", rule.Direction, verb, confidence)
}

// AuditTrail returns every reclassification change applied so far, in
// application order.
func (r *Reclassifier) AuditTrail() []ReclassificationChange {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ReclassificationChange, len(r.audit))
	copy(out, r.audit)
	return out
}

// SweepMonthly evaluates every memory in corpus, applying at most one
// change each, and returns every change that fired. The caller is
// responsible for persisting m.Importance back to storage for each
// returned change's MemoryID.
func (r *Reclassifier) SweepMonthly(corpus []*coretypes.Memory, now time.Time) []ReclassificationChange {
	var changes []ReclassificationChange
	for _, m := range corpus {
		if change := r.Evaluate(m, now); change != nil {
			changes = append(changes, *change)
		}
	}
	return changes
}
