package coretypes

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Kind is the closed set of memory variants. Each Kind carries its own
// Payload implementation; dispatch is by type switch on Payload, not by
// string lookup, per DESIGN NOTES (tagged union over "Content" variants).
//
// Grounded on: teacher's memories table (content/domain/tags columns) and
// original_source/crates/cortex-core/src/memory/types/domain_agnostic.rs,
// generalized from one flat content column to a typed-payload union.
type Kind string

const (
	KindCore           Kind = "core"
	KindTribal         Kind = "tribal"
	KindProcedural     Kind = "procedural"
	KindSemantic       Kind = "semantic"
	KindEpisodic       Kind = "episodic"
	KindDecision       Kind = "decision"
	KindInsight        Kind = "insight"
	KindReference      Kind = "reference"
	KindPreference     Kind = "preference"
	KindCodePattern    Kind = "code_pattern"
	KindCodeConstraint Kind = "code_constraint"
)

// AllKinds enumerates the closed set, used for validation and for default
// half-life tables.
var AllKinds = []Kind{
	KindCore, KindTribal, KindProcedural, KindSemantic, KindEpisodic,
	KindDecision, KindInsight, KindReference, KindPreference,
	KindCodePattern, KindCodeConstraint,
}

// IsValidKind reports whether k is one of AllKinds.
func IsValidKind(k Kind) bool {
	for _, v := range AllKinds {
		if v == k {
			return true
		}
	}
	return false
}

// Importance is an ordered tier, low to critical.
type Importance int

const (
	ImportanceLow Importance = iota
	ImportanceNormal
	ImportanceHigh
	ImportanceCritical
)

func (i Importance) String() string {
	switch i {
	case ImportanceLow:
		return "low"
	case ImportanceNormal:
		return "normal"
	case ImportanceHigh:
		return "high"
	case ImportanceCritical:
		return "critical"
	default:
		return "normal"
	}
}

// ParseImportance parses the string form, defaulting to Normal on an
// unrecognized value rather than erroring — matches the teacher's
// importance-clamping behavior in memory/service.go (Store defaults a
// bad importance to 5 rather than failing the call).
func ParseImportance(s string) Importance {
	switch s {
	case "low":
		return ImportanceLow
	case "high":
		return ImportanceHigh
	case "critical":
		return ImportanceCritical
	default:
		return ImportanceNormal
	}
}

// Payload is the typed content carried by a Memory. Each Kind has exactly
// one concrete implementation below.
type Payload interface {
	// PayloadKind returns the Kind this payload belongs to, used for
	// round-trip validation between Memory.Kind and Memory.Payload.
	PayloadKind() Kind
	// Canonical returns a deterministic byte representation used to
	// compute Memory.ContentHash. Two payloads that are semantically
	// identical must produce identical bytes.
	Canonical() []byte
}

// canonicalJSON marshals v with sorted map keys (encoding/json already
// sorts struct fields by declaration order and map keys alphabetically),
// giving a stable byte sequence for hashing.
func canonicalJSON(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		// Payload marshaling must not fail for well-formed in-memory
		// structs; a failure here indicates a programming error upstream.
		panic(fmt.Sprintf("coretypes: payload marshal failed: %v", err))
	}
	return b
}

// TextPayload is the generic payload shared by most Kinds: free text plus
// an optional structured fact list. It covers core/tribal/procedural/
// semantic/episodic/decision/insight/reference/preference.
type TextPayload struct {
	Text  string            `json:"text"`
	Facts map[string]string `json:"facts,omitempty"`
	kind  Kind
}

func NewTextPayload(kind Kind, text string, facts map[string]string) *TextPayload {
	return &TextPayload{Text: text, Facts: facts, kind: kind}
}

func (p *TextPayload) PayloadKind() Kind { return p.kind }
func (p *TextPayload) Canonical() []byte {
	keys := make([]string, 0, len(p.Facts))
	for k := range p.Facts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ordered := make([][2]string, 0, len(keys))
	for _, k := range keys {
		ordered = append(ordered, [2]string{k, p.Facts[k]})
	}
	return canonicalJSON(struct {
		Text  string      `json:"text"`
		Facts [][2]string `json:"facts"`
	}{p.Text, ordered})
}

// CodePayload is the payload for code_pattern / code_constraint kinds:
// a snippet plus the code artifacts it references.
type CodePayload struct {
	Snippet   string `json:"snippet"`
	Language  string `json:"language,omitempty"`
	Rationale string `json:"rationale,omitempty"`
	kind      Kind
}

func NewCodePayload(kind Kind, snippet, language, rationale string) *CodePayload {
	return &CodePayload{Snippet: snippet, Language: language, Rationale: rationale, kind: kind}
}

func (p *CodePayload) PayloadKind() Kind  { return p.kind }
func (p *CodePayload) Canonical() []byte { return canonicalJSON(p) }

// StringSet is an unordered set of short strings (tags, linked files, ...).
type StringSet map[string]struct{}

func NewStringSet(items ...string) StringSet {
	s := make(StringSet, len(items))
	for _, it := range items {
		if it != "" {
			s[it] = struct{}{}
		}
	}
	return s
}

func (s StringSet) Has(item string) bool {
	_, ok := s[item]
	return ok
}

func (s StringSet) Add(item string) {
	if item != "" {
		s[item] = struct{}{}
	}
}

// Slice returns the set's members in sorted order, for deterministic
// serialization and hashing.
func (s StringSet) Slice() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy.
func (s StringSet) Clone() StringSet {
	out := make(StringSet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// Memory is the central bitemporal record. See SPEC_FULL.md §3 and
// spec.md §3 for the field-by-field contract.
type Memory struct {
	ID          string
	Kind        Kind
	Payload     Payload
	ContentHash string
	Summary     string
	Confidence  float64
	Importance  Importance

	TransactionTime time.Time
	ValidTime       time.Time
	ValidUntil      *time.Time

	LastAccessed time.Time
	AccessCount  int

	Tags StringSet

	LinkedFiles       StringSet
	LinkedFunctions   StringSet
	LinkedPatterns    StringSet
	LinkedConstraints StringSet

	Archived bool

	Supersedes    *string
	SupersededBy  *string

	Namespace   string
	SourceAgent string
}

// ClampConfidence enforces the confidence in [0,1] invariant (spec.md §3).
// Called on every mutating path; never leave a caller to remember it.
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// ComputeContentHash returns the deterministic hash of a payload — a pure
// function of the payload bytes, per spec.md §3's content_hash invariant.
func ComputeContentHash(p Payload) string {
	sum := sha256.Sum256(p.Canonical())
	return fmt.Sprintf("%x", sum)
}

// ValidateSupersession enforces: at most one outgoing superseded_by, and
// the supersedes/superseded_by pair must be mutually consistent (if this
// memory supersedes another, that other's SupersededBy must point back).
func (m *Memory) ValidateSupersession(predecessor *Memory) error {
	if m.Supersedes == nil {
		return nil
	}
	if predecessor == nil || predecessor.ID != *m.Supersedes {
		return fmt.Errorf("coretypes: supersedes target mismatch for memory %s", m.ID)
	}
	if predecessor.SupersededBy != nil && *predecessor.SupersededBy != m.ID {
		return fmt.Errorf("coretypes: predecessor %s already superseded by %s", predecessor.ID, *predecessor.SupersededBy)
	}
	return nil
}

// CausalRelation is the closed set of causal edge relations (spec.md §3).
type CausalRelation string

const (
	RelationCaused       CausalRelation = "caused"
	RelationEnabled      CausalRelation = "enabled"
	RelationPrevented    CausalRelation = "prevented"
	RelationContradicts  CausalRelation = "contradicts"
	RelationSupersedes   CausalRelation = "supersedes"
	RelationSupports     CausalRelation = "supports"
	RelationDerivedFrom  CausalRelation = "derived_from"
	RelationTriggeredBy  CausalRelation = "triggered_by"
)

// Evidence is one append-only justification for a causal edge.
type Evidence struct {
	Description string
	Source      string
	Timestamp   time.Time
}

// CausalEdge is a directed, strength-weighted, evidence-carrying edge in
// the causal DAG (spec.md §3, §4.5).
type CausalEdge struct {
	ID       string
	Source   string
	Target   string
	Relation CausalRelation
	Strength float64
	Evidence []Evidence
	Inferred bool
	Created  time.Time
}

// RelationshipKind is the closed set of 14 non-causal relationship kinds
// (spec.md §3).
type RelationshipKind string

const (
	RelSupersedes  RelationshipKind = "supersedes"
	RelSupports    RelationshipKind = "supports"
	RelContradicts RelationshipKind = "contradicts"
	RelRelated     RelationshipKind = "related"
	RelDerivedFrom RelationshipKind = "derived_from"
	RelOwns        RelationshipKind = "owns"
	RelAffects     RelationshipKind = "affects"
	RelBlocks      RelationshipKind = "blocks"
	RelRequires    RelationshipKind = "requires"
	RelReferences  RelationshipKind = "references"
	RelLearnedFrom RelationshipKind = "learned_from"
	RelAssignedTo  RelationshipKind = "assigned_to"
	RelDependsOn   RelationshipKind = "depends_on"
	RelCrossAgent  RelationshipKind = "cross_agent"
)

// RelationshipEdge is a richer, non-causal edge between two memories.
type RelationshipEdge struct {
	ID         string
	Source     string
	Target     string
	Kind       RelationshipKind
	Strength   float64
	CrossAgent *CrossAgentMeta
	Created    time.Time
}

// CrossAgentMeta carries provenance when a relationship spans agents.
type CrossAgentMeta struct {
	SourceAgent string
	TargetAgent string
	Note        string
}

// AuditOperation is the closed set of audit-log operation kinds.
type AuditOperation string

const (
	AuditCreate   AuditOperation = "create"
	AuditUpdate   AuditOperation = "update"
	AuditArchive  AuditOperation = "archive"
	AuditSupersede AuditOperation = "supersede"
	AuditDelete   AuditOperation = "delete"
)

// AuditRecord is an append-only row for every CRUD-class operation
// (spec.md §3).
type AuditRecord struct {
	ID        string
	MemoryID  string
	Operation AuditOperation
	Details   string
	Actor     string
	Timestamp time.Time
}

// VersionSnapshot captures a record's pre-update state (spec.md §3).
type VersionSnapshot struct {
	MemoryID      string
	VersionNumber int
	Content       string
	Summary       string
	Confidence    float64
	ChangedBy     string
	Reason        string
	Timestamp     time.Time
}
