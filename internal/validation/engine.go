package validation

import (
	"time"

	"github.com/mattepiu/cortex/internal/coretypes"
	"github.com/mattepiu/cortex/internal/decay"
)

// Config bundles the engine's tunable knobs. Declared in lib.rs's
// `pub use engine::{ValidationConfig, ValidationEngine}`; no engine.rs
// source shipped, built here from spec.md §4.6's "passed iff all four
// dimensions clear a configured floor" text.
type Config struct {
	PassFloor                float64
	ConfidenceAdjustStrength float64
	HalfLives                decay.HalfLives
}

// DefaultConfig returns a Config with a 0.7 pass floor per dimension,
// matching healing/flagging.rs's review floor.
func DefaultConfig() Config {
	return Config{
		PassFloor:                0.7,
		ConfidenceAdjustStrength: 0.3,
		HalfLives:                decay.DefaultHalfLives(),
	}
}

// Engine runs the four-dimension validation pass and proposes healing
// actions. Ported structurally from lib.rs's ValidationEngine (no
// engine.rs source shipped).
type Engine struct {
	cfg      Config
	detector *Detector
	files    FileMetadata
	patterns PatternIndex
}

// NewEngine constructs an Engine. files/patterns are the external
// collaborators from spec.md §6; pass OSFileMetadata{} for files in
// production and a real pattern index once one exists.
func NewEngine(cfg Config, files FileMetadata, patterns PatternIndex) *Engine {
	if cfg.PassFloor == 0 {
		cfg = DefaultConfig()
	}
	return &Engine{cfg: cfg, detector: NewDetector(), files: files, patterns: patterns}
}

// Validate scores every dimension for target against the rest of the
// corpus (used for contradiction/consensus context), propagates
// confidence adjustments, and proposes healing actions.
func (e *Engine) Validate(target *coretypes.Memory, corpus []*coretypes.Memory, edges []coretypes.RelationshipEdge, similarity SimilarityFunc, now time.Time) (Result, []ConfidenceAdjustment) {
	contradictions, adjustments := e.detector.DetectAndPropagate(corpus, edges, similarity)
	groups := DetectConsensus(corpus)

	scores := DimensionScores{
		Citation:         scoreCitation(target, e.files).Score,
		Temporal:         scoreTemporal(target, e.cfg.HalfLives, now),
		Contradiction:    scoreContradiction(target.ID, contradictions, groups),
		PatternAlignment: scorePatternAlignment(target, e.patterns),
	}

	overall := scores.Average()
	passed := scores.Citation >= e.cfg.PassFloor &&
		scores.Temporal >= e.cfg.PassFloor &&
		scores.Contradiction >= e.cfg.PassFloor &&
		scores.PatternAlignment >= e.cfg.PassFloor

	result := Result{
		MemoryID:     target.ID,
		Dimensions:   scores,
		OverallScore: overall,
		Passed:       passed,
	}

	result.HealingActions = e.proposeHealing(target, scores, overall)

	var targetAdjustments []ConfidenceAdjustment
	for _, a := range adjustments {
		if a.MemoryID == target.ID {
			targetAdjustments = append(targetAdjustments, a)
		}
	}

	return result, targetAdjustments
}

// proposeHealing builds the healing-action list for one memory's scores,
// per spec.md §4.6's five strategies. Actions are proposed, not applied
// — callers (the engine aggregator) decide whether to execute them
// against storage.
func (e *Engine) proposeHealing(m *coretypes.Memory, scores DimensionScores, overall float64) []HealingAction {
	var actions []HealingAction

	if overall < e.cfg.PassFloor {
		actions = append(actions, HealingAction{
			ActionType:  HealingConfidenceAdjust,
			Description: "blend confidence toward overall validation score",
			Applied:     false,
		})
	}

	citation := scoreCitation(m, e.files)
	if len(citation.MissingFiles) > 0 {
		actions = append(actions, HealingAction{
			ActionType:  HealingCitationUpdate,
			Description: "one or more linked files no longer exist at their recorded path",
			Applied:     false,
		})
		actions = append(actions, HealingAction{
			ActionType:  HealingEmbeddingRefresh,
			Description: "re-embed after citation context changed",
			Applied:     false,
		})
	}

	if flag := FlagForReview(m.ID, scores); flag != nil {
		actions = append(actions, HealingAction{
			ActionType:  HealingHumanReviewFlag,
			Description: flag.Reason,
			Applied:     false,
		})
		if flag.Severity == ReviewHigh {
			actions = append(actions, HealingAction{
				ActionType:  HealingArchival,
				Description: "critical validation failure: " + flag.Reason,
				Applied:     false,
			})
		}
	}

	return actions
}
