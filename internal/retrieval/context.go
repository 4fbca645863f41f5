package retrieval

import (
	"fmt"

	"github.com/mattepiu/cortex/internal/coretypes"
)

// Category is one of the fixed generation-context buckets named in
// spec.md §4.3.
type Category string

const (
	CategoryPatterns        Category = "patterns"
	CategoryTribalKnowledge Category = "tribal_knowledge"
	CategoryConstraints     Category = "constraints"
	CategoryAntiPatterns    Category = "anti_patterns"
	CategoryRelated         Category = "related"
)

// categoryOf buckets a memory's kind into a generation-context category.
// A low-confidence code pattern is treated as an anti-pattern warning
// rather than a pattern to imitate.
func categoryOf(m *coretypes.Memory) Category {
	switch m.Kind {
	case coretypes.KindCodePattern:
		if m.Confidence < 0.4 {
			return CategoryAntiPatterns
		}
		return CategoryPatterns
	case coretypes.KindCodeConstraint:
		return CategoryConstraints
	case coretypes.KindTribal:
		return CategoryTribalKnowledge
	default:
		return CategoryRelated
	}
}

// defaultCategoryShare is the starting budget percentage per category
// before any category runs dry and its share is redistributed.
var defaultCategoryShare = map[Category]float64{
	CategoryPatterns:        0.3,
	CategoryTribalKnowledge: 0.2,
	CategoryConstraints:     0.25,
	CategoryAntiPatterns:    0.1,
	CategoryRelated:         0.15,
}

// CategoryAllocation is one category's slice of the generation context.
type CategoryAllocation struct {
	Category   Category
	Percentage float64
	Budget     int
	Entries    []Rendered
}

// GenerationContext is the final assembled retrieval result: a ranked,
// compressed, budget-fit set of records grouped by category with
// provenance tags, ready to drop into a prompt.
type GenerationContext struct {
	Query       string
	Intent      Intent
	Budget      int
	Allocations []CategoryAllocation
	TokensUsed  int
	TokensSaved int
}

// AssembleGenerationContext groups ranked, scored candidates by category,
// allocates each category a share of budget, compresses each member to
// fit its remaining share, and tags every rendered entry with
// "[drift:<category>]" provenance — the tag name and convention are
// carried unchanged from spec.md's own glossary.
func AssembleGenerationContext(query string, intent Intent, budget int, ranked []*coretypes.Memory) GenerationContext {
	if budget <= 0 {
		return GenerationContext{Query: query, Intent: intent, Budget: budget}
	}

	buckets := make(map[Category][]*coretypes.Memory)
	for _, m := range ranked {
		cat := categoryOf(m)
		buckets[cat] = append(buckets[cat], m)
	}

	order := []Category{CategoryPatterns, CategoryTribalKnowledge, CategoryConstraints, CategoryAntiPatterns, CategoryRelated}

	gc := GenerationContext{Query: query, Intent: intent, Budget: budget}
	spent := 0
	for _, cat := range order {
		members := buckets[cat]
		if len(members) == 0 {
			continue
		}
		share := defaultCategoryShare[cat]
		catBudget := int(float64(budget) * share)
		remaining := catBudget

		prefix := fmt.Sprintf("[drift:%s] ", cat)
		prefixTokens := estimateTokens(prefix)

		var entries []Rendered
		for _, m := range members {
			fitBudget := remaining - prefixTokens
			if fitBudget < 0 {
				fitBudget = 0
			}
			r := CompressToFit(m, fitBudget)
			r.Text = prefix + r.Text
			r.Tokens = estimateTokens(r.Text)
			entries = append(entries, r)
			remaining -= r.Tokens
			if remaining < 0 {
				remaining = 0
			}
		}

		used := catBudget - remaining
		spent += used
		gc.Allocations = append(gc.Allocations, CategoryAllocation{
			Category:   cat,
			Percentage: share,
			Budget:     catBudget,
			Entries:    entries,
		})
	}
	gc.TokensUsed = spent
	return gc
}
