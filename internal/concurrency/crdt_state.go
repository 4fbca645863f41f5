package concurrency

import (
	"time"

	"github.com/mattepiu/cortex/internal/coretypes"
	"github.com/mattepiu/cortex/internal/crdt"
)

// memoryCRDTState is the live merge state for one memory: one CRDT
// primitive per concurrently-editable field, seeded from the memory's
// last known durable snapshot and folded forward by every FieldDelta
// applied since. Grounded on field_delta.rs's variant-to-primitive
// mapping named in its doc comments (LWW for scalar overwrite fields,
// max-wins for confidence, grow-only for access_count, OR-Set for every
// tag/link collection).
type memoryCRDTState struct {
	content     *crdt.LWWRegister[string]
	summary     *crdt.LWWRegister[string]
	importance  *crdt.LWWRegister[coretypes.Importance]
	archived    *crdt.LWWRegister[bool]
	namespace   *crdt.LWWRegister[string]
	confidence  *crdt.MaxRegister
	accessCount *crdt.GCounter
	tags        *crdt.ORSet[string]
	files       *crdt.ORSet[string]
	functions   *crdt.ORSet[string]
	patterns    *crdt.ORSet[string]
	constraints *crdt.ORSet[string]
	provenance  []string
}

// newMemoryCRDTState seeds merge state from a memory's current durable
// fields, under the given agent's id (used to mint OR-Set tags for any
// further local edits).
func newMemoryCRDTState(agentID string, m *coretypes.Memory) *memoryCRDTState {
	st := &memoryCRDTState{
		content:     crdt.NewLWWRegister(m.ContentHash, m.TransactionTime, agentID),
		summary:     crdt.NewLWWRegister(m.Summary, m.TransactionTime, agentID),
		importance:  crdt.NewLWWRegister(m.Importance, m.TransactionTime, agentID),
		archived:    crdt.NewLWWRegister(m.Archived, m.TransactionTime, agentID),
		namespace:   crdt.NewLWWRegister(m.Namespace, m.TransactionTime, agentID),
		confidence:  crdt.NewMaxRegister(m.Confidence, m.TransactionTime),
		accessCount: crdt.NewGCounter(),
		tags:        crdt.NewORSet[string](agentID),
		files:       crdt.NewORSet[string](agentID),
		functions:   crdt.NewORSet[string](agentID),
		patterns:    crdt.NewORSet[string](agentID),
		constraints: crdt.NewORSet[string](agentID),
	}
	st.accessCount.Add(agentID, uint64(m.AccessCount))
	for _, t := range m.Tags.Slice() {
		st.tags.Add(t)
	}
	for _, f := range m.LinkedFiles.Slice() {
		st.files.Add(f)
	}
	for _, f := range m.LinkedFunctions.Slice() {
		st.functions.Add(f)
	}
	for _, p := range m.LinkedPatterns.Slice() {
		st.patterns.Add(p)
	}
	for _, c := range m.LinkedConstraints.Slice() {
		st.constraints.Add(c)
	}
	return st
}

func (st *memoryCRDTState) orSet(field LinkField) *crdt.ORSet[string] {
	switch field {
	case LinkFiles:
		return st.files
	case LinkFunctions:
		return st.functions
	case LinkPatterns:
		return st.patterns
	case LinkConstraints:
		return st.constraints
	default:
		return nil
	}
}

// apply folds one delta into this memory's merge state. content_updated
// carries the new content's hash (StringValue), not the payload itself —
// payload replacement still goes through storage.Update; the CRDT layer
// only arbitrates which concurrent write wins.
func (st *memoryCRDTState) apply(d FieldDelta) {
	switch d.Kind {
	case DeltaContentUpdated:
		st.content.Set(d.StringValue, d.Timestamp, d.AgentID)
	case DeltaSummaryUpdated:
		st.summary.Set(d.StringValue, d.Timestamp, d.AgentID)
	case DeltaConfidenceBoosted:
		st.confidence.Set(d.Confidence, d.Timestamp)
	case DeltaTagAdded:
		st.tags.Add(d.Tag)
	case DeltaTagRemoved:
		if d.RemovedTags != nil {
			st.tags.ApplyRemove(d.Tag, d.RemovedTags)
		} else {
			st.tags.Remove(d.Tag)
		}
	case DeltaLinkAdded:
		if set := st.orSet(d.LinkField); set != nil {
			set.Add(d.LinkTarget)
		}
	case DeltaLinkRemoved:
		if set := st.orSet(d.LinkField); set != nil {
			if d.RemovedTags != nil {
				set.ApplyRemove(d.LinkTarget, d.RemovedTags)
			} else {
				set.Remove(d.LinkTarget)
			}
		}
	case DeltaAccessCountIncremented:
		st.accessCount.Add(d.AgentID, d.CountDelta)
	case DeltaImportanceChanged:
		st.importance.Set(d.Importance, d.Timestamp, d.AgentID)
	case DeltaArchivedChanged:
		st.archived.Set(d.BoolValue, d.Timestamp, d.AgentID)
	case DeltaNamespaceChanged:
		st.namespace.Set(d.StringValue, d.Timestamp, d.AgentID)
	case DeltaProvenanceHopAdded:
		st.provenance = append(st.provenance, d.ProvenanceHop)
	case DeltaMemoryCreated:
		// Applied once by the engine before any other delta; no
		// per-field merge needed since the state was just seeded from
		// d.FullState.
	}
}

// materialize projects the current merge state onto base, returning a
// new coretypes.Memory with every concurrently-editable field replaced
// by its merged value. base supplies the fields the CRDT layer does not
// arbitrate (ID, Kind, Payload, bitemporal ValidTime/ValidUntil,
// Supersedes/SupersededBy).
func (st *memoryCRDTState) materialize(base *coretypes.Memory) *coretypes.Memory {
	out := *base
	out.Summary = st.summary.Value()
	out.Confidence = coretypes.ClampConfidence(st.confidence.Value())
	out.Importance = st.importance.Value()
	out.Archived = st.archived.Value()
	out.Namespace = st.namespace.Value()
	out.AccessCount = int(st.accessCount.Value())
	out.Tags = coretypes.NewStringSet(st.tags.Values()...)
	out.LinkedFiles = coretypes.NewStringSet(st.files.Values()...)
	out.LinkedFunctions = coretypes.NewStringSet(st.functions.Values()...)
	out.LinkedPatterns = coretypes.NewStringSet(st.patterns.Values()...)
	out.LinkedConstraints = coretypes.NewStringSet(st.constraints.Values()...)
	if st.content.Timestamp().After(time.Time{}) {
		out.ContentHash = st.content.Value()
	}
	return &out
}
