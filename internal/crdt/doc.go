// Package crdt implements the five conflict-free replicated data types
// the concurrency substrate merges multi-agent edits with: G-Counter,
// LWW-Register, MaxRegister, MV-Register, and OR-Set. Each type
// guarantees convergence (commutative, associative, idempotent merge)
// without coordination between agents.
//
// Grounded on original_source/crates/cortex-crdt/src/primitives/gcounter.rs
// (present in full in the retrieval pack) for structure and doc-comment
// register; lww_register.rs/max_register.rs/mv_register.rs/or_set.rs are
// named in that crate's mod.rs but not shipped in the pack, so those four
// are implemented directly from their standard CRDT definitions and
// spec.md §4.7, in the same style as gcounter.rs (value/merge/delta_since
// trio, per-type Delta struct for sync). No CRDT library appears
// anywhere in the retrieval pack; these are small, spec-exact algorithms
// better hand-written than pulled from an unvetted dependency, so this
// package is stdlib-only by design — see DESIGN.md.
package crdt
