package decay

import (
	"time"

	"github.com/mattepiu/cortex/internal/coretypes"
)

// ArchivalThreshold is the confidence floor below which a non-archived
// record becomes eligible for archival (spec.md §4.2).
const ArchivalThreshold = 0.15

// RecordInput is everything the decay formula needs about one memory,
// decoupled from coretypes.Memory so this package never imports storage
// and stays a pure function of its inputs.
type RecordInput struct {
	MemoryID          string
	Kind              coretypes.Kind
	Confidence        float64
	Importance        coretypes.Importance
	LastAccessed      time.Time
	AccessCount       int
	Archived          bool
	LinkedFiles       []string
	LinkedFunctions   []string
	LinkedPatterns    []string
}

// Context carries the per-batch, externally-supplied signals the formula
// needs beyond the record itself (spec.md §4.2's DecayContext analog).
type Context struct {
	Now time.Time

	// HalfLives is consulted per-kind; DefaultHalfLives().WithOverrides(...)
	// if the caller has no reason to customize it.
	HalfLives HalfLives

	// CitationAlpha weights the stale-citation ratio; DefaultCitationAlpha
	// if unset (zero value).
	CitationAlpha float64

	// StaleLinks reports, for a given record, how many of its
	// linked_files/linked_functions no longer exist — the filesystem
	// metadata collaborator from spec.md §6. Supplied as a function so
	// this package never touches the filesystem itself.
	StaleLinks func(input RecordInput) (staleCount, totalCount int)

	// ActivePatterns reports whether a record's linked patterns are still
	// considered active (e.g. still referenced elsewhere in the corpus).
	ActivePatterns func(input RecordInput) bool
}

func (c Context) alpha() float64 {
	if c.CitationAlpha == 0 {
		return DefaultCitationAlpha
	}
	return c.CitationAlpha
}

func (c Context) staleRatio(input RecordInput) float64 {
	if c.StaleLinks == nil {
		return 0
	}
	stale, total := c.StaleLinks(input)
	if total == 0 {
		return 0
	}
	return float64(stale) / float64(total)
}

func (c Context) hasActivePatterns(input RecordInput) bool {
	if c.ActivePatterns == nil {
		return len(input.LinkedPatterns) > 0
	}
	return c.ActivePatterns(input)
}

// Breakdown exposes every factor individually, for observability and
// tests (spec.md §4.2's compute_breakdown analog).
type Breakdown struct {
	Base       float64
	Temporal   float64
	Citation   float64
	Usage      float64
	Importance float64
	Pattern    float64
	Final      float64
}

// ArchivalDecision is produced when a decayed record crosses the
// archival floor and is not already archived.
type ArchivalDecision struct {
	MemoryID string
	Reason   string
}

// DecayResult is one record's outcome from ProcessBatch, in input order.
type DecayResult struct {
	MemoryID         string
	DecayedConfidence float64
	Breakdown        Breakdown
	Archival         *ArchivalDecision
}

// ProcessBatch computes decayed confidence and an optional archival
// decision for every input record, preserving order. It never writes to
// storage — callers persist DecayResult.DecayedConfidence and apply
// Archival themselves (spec.md §4.2's batch contract).
func ProcessBatch(records []RecordInput, ctx Context) []DecayResult {
	if ctx.Now.IsZero() {
		ctx.Now = time.Now()
	}
	halfLives := ctx.HalfLives
	if halfLives == nil {
		halfLives = DefaultHalfLives()
	}

	results := make([]DecayResult, len(records))
	for i, r := range records {
		b := Breakdown{
			Base:       r.Confidence,
			Temporal:   temporalFactor(halfLives[r.Kind], r.LastAccessed, ctx.Now),
			Citation:   citationFactor(ctx.alpha(), ctx.staleRatio(r)),
			Usage:      usageFactor(r.AccessCount),
			Importance: importanceFactor(r.Importance),
			Pattern:    patternFactor(ctx.hasActivePatterns(r)),
		}
		b.Final = coretypes.ClampConfidence(b.Base * b.Temporal * b.Citation * b.Usage * b.Importance * b.Pattern)

		result := DecayResult{MemoryID: r.MemoryID, DecayedConfidence: b.Final, Breakdown: b}
		if !r.Archived && b.Final < ArchivalThreshold {
			result.Archival = &ArchivalDecision{MemoryID: r.MemoryID, Reason: "confidence decayed below archival threshold"}
		}
		results[i] = result
	}
	return results
}

// FromMemory builds a RecordInput from a coretypes.Memory, the shape
// every real caller (the decay background pass) actually has in hand.
func FromMemory(m *coretypes.Memory) RecordInput {
	return RecordInput{
		MemoryID:        m.ID,
		Kind:            m.Kind,
		Confidence:      m.Confidence,
		Importance:      m.Importance,
		LastAccessed:    m.LastAccessed,
		AccessCount:     m.AccessCount,
		Archived:        m.Archived,
		LinkedFiles:     m.LinkedFiles.Slice(),
		LinkedFunctions: m.LinkedFunctions.Slice(),
		LinkedPatterns:  m.LinkedPatterns.Slice(),
	}
}
