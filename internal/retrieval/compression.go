package retrieval

import (
	"fmt"
	"strings"

	"github.com/mattepiu/cortex/internal/coretypes"
)

// CompressionLevel is one of the four fixed detail levels a record can
// be rendered at, from least to most verbose (spec.md §4.3).
type CompressionLevel int

const (
	LevelID CompressionLevel = iota
	LevelOneLiner
	LevelEvidence
	LevelFull
)

// Rendered is one record compressed to a specific level, with its
// estimated token cost.
type Rendered struct {
	MemoryID string
	Level    CompressionLevel
	Text     string
	Tokens   int
}

// estimateTokens is a cheap token estimator (~4 bytes/token, the common
// rule of thumb for English prose) — good enough for budget-fitting
// without pulling in a real tokenizer, which nothing else in this module
// needs. Rounds up rather than down: estimateTokens(a+b) <=
// estimateTokens(a) + estimateTokens(b) always holds for this reason,
// which AssembleGenerationContext relies on to reserve room for the
// provenance tag it prepends after a level is chosen.
func estimateTokens(s string) int {
	if s == "" {
		return 0
	}
	return (len(s) + 3) / 4
}

// RenderLevel renders m at the given level.
func RenderLevel(m *coretypes.Memory, level CompressionLevel) Rendered {
	var text string
	switch level {
	case LevelID:
		text = m.ID
	case LevelOneLiner:
		text = fmt.Sprintf("%s: %s [%s]", m.Kind, m.Summary, strings.Join(m.Tags.Slice(), ","))
	case LevelEvidence:
		text = fmt.Sprintf("%s: %s [%s]\nfiles: %s\npatterns: %s",
			m.Kind, m.Summary, strings.Join(m.Tags.Slice(), ","),
			strings.Join(m.LinkedFiles.Slice(), ","),
			strings.Join(m.LinkedPatterns.Slice(), ","))
	case LevelFull:
		text = fmt.Sprintf("%s: %s [%s]\nfiles: %s\npatterns: %s\nconstraints: %s\ncontent-hash: %s\nconfidence: %.2f",
			m.Kind, m.Summary, strings.Join(m.Tags.Slice(), ","),
			strings.Join(m.LinkedFiles.Slice(), ","),
			strings.Join(m.LinkedPatterns.Slice(), ","),
			strings.Join(m.LinkedConstraints.Slice(), ","),
			m.ContentHash, m.Confidence)
	}
	return Rendered{MemoryID: m.ID, Level: level, Text: text, Tokens: estimateTokens(text)}
}

// allLevels in ascending verbosity order.
var allLevels = []CompressionLevel{LevelID, LevelOneLiner, LevelEvidence, LevelFull}

// CompressToFit renders m at the maximal level whose token cost fits
// within remaining, the budget still available after accounting for
// everything already selected ahead of it. L0 is returned even if it
// would itself exceed remaining, since a record can never be omitted
// entirely by this step (spec.md §4.3: "L0 is always chosen if even it
// would exceed"). Property carried: tokens(L0) <= tokens(L1) <=
// tokens(L2) <= tokens(L3), since each level strictly extends the prior
// one's text.
func CompressToFit(m *coretypes.Memory, remaining int) Rendered {
	best := RenderLevel(m, LevelID)
	for _, level := range allLevels[1:] {
		r := RenderLevel(m, level)
		if r.Tokens > remaining {
			break
		}
		best = r
	}
	return best
}
