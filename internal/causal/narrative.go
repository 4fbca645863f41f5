package causal

import (
	"fmt"
	"strings"

	"github.com/mattepiu/cortex/internal/coretypes"
)

// ConfidenceLevel classifies a chain-confidence score into a human label.
// Grounded on narrative/confidence.rs.
type ConfidenceLevel int

const (
	ConfidenceVeryLow ConfidenceLevel = iota
	ConfidenceLow
	ConfidenceMedium
	ConfidenceHigh
)

// ConfidenceLevelFromScore classifies score per narrative/confidence.rs's
// fixed bands: >=0.8 high, >=0.5 medium, >=0.3 low, else very low.
func ConfidenceLevelFromScore(score float64) ConfidenceLevel {
	switch {
	case score >= 0.8:
		return ConfidenceHigh
	case score >= 0.5:
		return ConfidenceMedium
	case score >= 0.3:
		return ConfidenceLow
	default:
		return ConfidenceVeryLow
	}
}

func (l ConfidenceLevel) String() string {
	switch l {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceLow:
		return "low"
	default:
		return "very low"
	}
}

// ChainConfidence computes confidence for a causal path: 60% minimum edge
// strength plus 40% average strength, reduced by a 5%-per-hop depth
// penalty. Grounded verbatim on narrative/confidence.rs.
func ChainConfidence(edgeStrengths []float64, depth int) float64 {
	if len(edgeStrengths) == 0 {
		return 0.0
	}
	min, sum := edgeStrengths[0], 0.0
	for _, s := range edgeStrengths {
		if s < min {
			min = s
		}
		sum += s
	}
	avg := sum / float64(len(edgeStrengths))
	base := 0.6*min + 0.4*avg
	depthPenalty := 1.0
	for i := 0; i < depth; i++ {
		depthPenalty *= 0.95
	}
	score := base * depthPenalty
	return coretypes.ClampConfidence(score)
}

// templateFor returns the narrative template for a relation, with
// {source} and {target} placeholders. Grounded verbatim on
// narrative/templates.rs.
func templateFor(relation coretypes.CausalRelation) string {
	switch relation {
	case coretypes.RelationCaused:
		return "{source} was caused by {target} because of direct causal evidence."
	case coretypes.RelationEnabled:
		return "{target} enabled {source} by providing necessary conditions."
	case coretypes.RelationPrevented:
		return "{target} prevented {source} from occurring."
	case coretypes.RelationContradicts:
		return "Warning: {source} contradicts {target}. These memories are in conflict."
	case coretypes.RelationSupersedes:
		return "{source} supersedes {target} as a newer version."
	case coretypes.RelationSupports:
		return "{target} supports {source} with corroborating evidence."
	case coretypes.RelationDerivedFrom:
		return "{source} was derived from {target} through transformation."
	case coretypes.RelationTriggeredBy:
		return "This decision led to {source}, triggered by {target}."
	default:
		return "{source} is related to {target}."
	}
}

// RenderTemplate fills templateFor's placeholders with actual summaries.
func RenderTemplate(relation coretypes.CausalRelation, sourceSummary, targetSummary string) string {
	s := templateFor(relation)
	s = strings.ReplaceAll(s, "{source}", sourceSummary)
	s = strings.ReplaceAll(s, "{target}", targetSummary)
	return s
}

// sectionHeader groups a relation under a narrative section. Grounded
// verbatim on narrative/templates.rs.
func sectionHeader(relation coretypes.CausalRelation) string {
	switch relation {
	case coretypes.RelationCaused, coretypes.RelationTriggeredBy:
		return "Origins"
	case coretypes.RelationEnabled, coretypes.RelationSupports:
		return "Support"
	case coretypes.RelationPrevented, coretypes.RelationContradicts:
		return "Conflicts"
	case coretypes.RelationSupersedes, coretypes.RelationDerivedFrom:
		return "Effects"
	default:
		return "Related"
	}
}

// NarrativeSection groups rendered lines under one header, in the order
// edges were visited.
type NarrativeSection struct {
	Header string
	Lines  []string
}

// Narrative is a rendered causal story for one memory: its direct edges
// grouped by section, plus an overall confidence classification of the
// strongest chain found.
type Narrative struct {
	MemoryID   string
	Sections   []NarrativeSection
	Confidence float64
	Level      ConfidenceLevel
}

// summaryLookup resolves a memory id to a display summary; callers
// typically back this with storage.GetBulk results.
type summaryLookup func(memoryID string) string

// BuildNarrative composes a Narrative for memoryID from its direct
// outgoing and incoming causal edges, grouped by section. Grounded on
// narrative/mod.rs and narrative/builder.rs (builder.rs itself is not
// shipped in the retrieval pack; this reconstructs its described
// behavior — grouped, templated sections plus a confidence summary —
// from mod.rs's public surface).
func BuildNarrative(g *Graph, memoryID string, summaries summaryLookup) Narrative {
	n := Narrative{MemoryID: memoryID}
	sectioned := make(map[string]*NarrativeSection)
	order := []string{"Origins", "Support", "Conflicts", "Effects", "Related"}

	var strengths []float64
	addEdge := func(relation coretypes.CausalRelation, strength float64, sourceID, targetID string) {
		header := sectionHeader(relation)
		sec, ok := sectioned[header]
		if !ok {
			sec = &NarrativeSection{Header: header}
			sectioned[header] = sec
		}
		line := RenderTemplate(relation, summaries(sourceID), summaries(targetID))
		sec.Lines = append(sec.Lines, line)
		strengths = append(strengths, strength)
	}

	for _, e := range g.Outgoing(memoryID) {
		addEdge(e.Relation, e.Strength, e.Source, e.Target)
	}
	for _, e := range g.Incoming(memoryID) {
		addEdge(e.Relation, e.Strength, e.Source, e.Target)
	}

	for _, header := range order {
		if sec, ok := sectioned[header]; ok {
			n.Sections = append(n.Sections, *sec)
		}
	}

	n.Confidence = ChainConfidence(strengths, 1)
	n.Level = ConfidenceLevelFromScore(n.Confidence)
	return n
}

// String renders the narrative as plain text, for logging or CLI display.
func (n Narrative) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Causal narrative for %s (confidence: %s)\n", n.MemoryID, n.Level)
	for _, sec := range n.Sections {
		fmt.Fprintf(&b, "\n%s:\n", sec.Header)
		for _, line := range sec.Lines {
			fmt.Fprintf(&b, "  - %s\n", line)
		}
	}
	return b.String()
}
