package concurrency

import (
	"time"

	"github.com/mattepiu/cortex/internal/coretypes"
	"github.com/mattepiu/cortex/internal/crdt"
)

// FieldDeltaKind is the closed set of field-level edits two agents can
// apply concurrently to the same memory. Ported directly from
// cortex-crdt/src/memory/field_delta.rs's FieldDelta enum.
type FieldDeltaKind string

const (
	DeltaContentUpdated         FieldDeltaKind = "content_updated"
	DeltaSummaryUpdated         FieldDeltaKind = "summary_updated"
	DeltaConfidenceBoosted      FieldDeltaKind = "confidence_boosted"
	DeltaTagAdded               FieldDeltaKind = "tag_added"
	DeltaTagRemoved             FieldDeltaKind = "tag_removed"
	DeltaLinkAdded              FieldDeltaKind = "link_added"
	DeltaLinkRemoved            FieldDeltaKind = "link_removed"
	DeltaAccessCountIncremented FieldDeltaKind = "access_count_incremented"
	DeltaImportanceChanged      FieldDeltaKind = "importance_changed"
	DeltaArchivedChanged        FieldDeltaKind = "archived_changed"
	DeltaProvenanceHopAdded     FieldDeltaKind = "provenance_hop_added"
	DeltaMemoryCreated          FieldDeltaKind = "memory_created"
	DeltaNamespaceChanged       FieldDeltaKind = "namespace_changed"
)

// LinkField names which StringSet on coretypes.Memory a link delta
// targets. Ported from field_delta.rs's LinkAdded/LinkRemoved link_type.
type LinkField string

const (
	LinkFiles       LinkField = "files"
	LinkFunctions   LinkField = "functions"
	LinkPatterns    LinkField = "patterns"
	LinkConstraints LinkField = "constraints"
)

// FieldDelta is one agent's proposed edit to one field of one memory.
// Dispatch is by Kind, mirroring coretypes.Payload's tagged-union
// convention rather than a Rust-style enum, since only one of the
// variant-specific fields below is populated for any given Kind.
type FieldDelta struct {
	Kind     FieldDeltaKind
	MemoryID string
	AgentID  string

	// content_updated / summary_updated / importance_changed /
	// archived_changed / namespace_changed: LWW semantics.
	StringValue string
	BoolValue   bool
	Importance  coretypes.Importance
	Timestamp   time.Time

	// confidence_boosted: max-wins semantics.
	Confidence float64

	// tag_added / tag_removed / link_added / link_removed: OR-Set
	// semantics.
	Tag         string
	LinkField   LinkField
	LinkTarget  string
	RemovedTags map[crdt.UniqueTag]struct{}

	// access_count_incremented: grow-only counter semantics.
	CountDelta uint64

	// provenance_hop_added: append-only log, no merge needed.
	ProvenanceHop string

	// memory_created: the full initial state, applied once.
	FullState *coretypes.Memory
}

// NewContentUpdated builds a content_updated delta.
func NewContentUpdated(memoryID, agentID, value string, ts time.Time) FieldDelta {
	return FieldDelta{Kind: DeltaContentUpdated, MemoryID: memoryID, AgentID: agentID, StringValue: value, Timestamp: ts}
}

// NewSummaryUpdated builds a summary_updated delta.
func NewSummaryUpdated(memoryID, agentID, value string, ts time.Time) FieldDelta {
	return FieldDelta{Kind: DeltaSummaryUpdated, MemoryID: memoryID, AgentID: agentID, StringValue: value, Timestamp: ts}
}

// NewConfidenceBoosted builds a confidence_boosted delta.
func NewConfidenceBoosted(memoryID string, value float64, ts time.Time) FieldDelta {
	return FieldDelta{Kind: DeltaConfidenceBoosted, MemoryID: memoryID, Confidence: value, Timestamp: ts}
}

// NewTagAdded builds a tag_added delta.
func NewTagAdded(memoryID, agentID, tag string) FieldDelta {
	return FieldDelta{Kind: DeltaTagAdded, MemoryID: memoryID, AgentID: agentID, Tag: tag}
}

// NewTagRemoved builds a tag_removed delta carrying the tags observed at
// remove time, so a concurrent add the remover never saw survives merge.
func NewTagRemoved(memoryID, agentID, tag string, removed map[crdt.UniqueTag]struct{}) FieldDelta {
	return FieldDelta{Kind: DeltaTagRemoved, MemoryID: memoryID, AgentID: agentID, Tag: tag, RemovedTags: removed}
}

// NewLinkAdded builds a link_added delta.
func NewLinkAdded(memoryID, agentID string, field LinkField, target string) FieldDelta {
	return FieldDelta{Kind: DeltaLinkAdded, MemoryID: memoryID, AgentID: agentID, LinkField: field, LinkTarget: target}
}

// NewLinkRemoved builds a link_removed delta.
func NewLinkRemoved(memoryID, agentID string, field LinkField, target string, removed map[crdt.UniqueTag]struct{}) FieldDelta {
	return FieldDelta{Kind: DeltaLinkRemoved, MemoryID: memoryID, AgentID: agentID, LinkField: field, LinkTarget: target, RemovedTags: removed}
}

// NewAccessCountIncremented builds an access_count_incremented delta.
func NewAccessCountIncremented(memoryID, agentID string, n uint64) FieldDelta {
	return FieldDelta{Kind: DeltaAccessCountIncremented, MemoryID: memoryID, AgentID: agentID, CountDelta: n}
}

// NewImportanceChanged builds an importance_changed delta.
func NewImportanceChanged(memoryID, agentID string, value coretypes.Importance, ts time.Time) FieldDelta {
	return FieldDelta{Kind: DeltaImportanceChanged, MemoryID: memoryID, AgentID: agentID, Importance: value, Timestamp: ts}
}

// NewArchivedChanged builds an archived_changed delta.
func NewArchivedChanged(memoryID, agentID string, value bool, ts time.Time) FieldDelta {
	return FieldDelta{Kind: DeltaArchivedChanged, MemoryID: memoryID, AgentID: agentID, BoolValue: value, Timestamp: ts}
}

// NewProvenanceHopAdded builds a provenance_hop_added delta.
func NewProvenanceHopAdded(memoryID, hop string) FieldDelta {
	return FieldDelta{Kind: DeltaProvenanceHopAdded, MemoryID: memoryID, ProvenanceHop: hop}
}

// NewMemoryCreated builds a memory_created delta carrying the full
// initial state, applied once when a memory first replicates to an
// agent that has never seen it.
func NewMemoryCreated(m *coretypes.Memory) FieldDelta {
	return FieldDelta{Kind: DeltaMemoryCreated, MemoryID: m.ID, FullState: m}
}

// NewNamespaceChanged builds a namespace_changed delta.
func NewNamespaceChanged(memoryID, agentID, namespace string, ts time.Time) FieldDelta {
	return FieldDelta{Kind: DeltaNamespaceChanged, MemoryID: memoryID, AgentID: agentID, StringValue: namespace, Timestamp: ts}
}
