package retrieval

import (
	"strings"

	"github.com/mattepiu/cortex/internal/coretypes"
)

// Intent is a coarse classification of what a query is after, used to
// bias both kind-affinity scoring and per-intent scorer weight overrides.
type Intent string

const (
	IntentPattern     Intent = "pattern"
	IntentConstraint  Intent = "constraint"
	IntentDecision    Intent = "decision"
	IntentTribal      Intent = "tribal"
	IntentGeneral     Intent = "general"
)

// intentKeywords is a small lookup table from surface tokens to intent;
// the first matching keyword wins. Grounded on the teacher's tagSearch/
// keywordSearch split in internal/search/engine.go, generalized from a
// search-type enum to a classified-intent enum per spec.md §4.3.
var intentKeywords = map[string]Intent{
	"pattern":    IntentPattern,
	"approach":   IntentPattern,
	"convention": IntentPattern,
	"constraint": IntentConstraint,
	"must":       IntentConstraint,
	"never":      IntentConstraint,
	"required":   IntentConstraint,
	"decision":   IntentDecision,
	"decided":    IntentDecision,
	"why":        IntentDecision,
	"gotcha":     IntentTribal,
	"quirk":      IntentTribal,
	"workaround": IntentTribal,
}

// ClassifyIntent scans query tokens against intentKeywords and returns
// the first match, or IntentGeneral if none match.
func ClassifyIntent(query string) Intent {
	for _, tok := range strings.Fields(strings.ToLower(query)) {
		tok = strings.Trim(tok, ".,?!:;\"'")
		if intent, ok := intentKeywords[tok]; ok {
			return intent
		}
	}
	return IntentGeneral
}

// kindAffinity maps an intent to the kinds it most favors, used as an
// additive scorer signal (internal/retrieval/scoring.go).
var kindAffinity = map[Intent]map[coretypes.Kind]float64{
	IntentPattern: {
		coretypes.KindCodePattern: 1.0,
		coretypes.KindProcedural:  0.6,
	},
	IntentConstraint: {
		coretypes.KindCodeConstraint: 1.0,
		coretypes.KindDecision:       0.3,
	},
	IntentDecision: {
		coretypes.KindDecision: 1.0,
		coretypes.KindInsight:  0.4,
	},
	IntentTribal: {
		coretypes.KindTribal:   1.0,
		coretypes.KindEpisodic: 0.5,
	},
	IntentGeneral: {},
}

// KindAffinityScore returns how strongly kind matches intent, in [0,1].
func KindAffinityScore(intent Intent, kind coretypes.Kind) float64 {
	return kindAffinity[intent][kind]
}
