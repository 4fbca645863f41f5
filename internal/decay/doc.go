// Package decay implements the five-factor multiplicative confidence
// decay formula: final confidence = base × temporal × citation × usage ×
// importance × pattern, clamped to [0,1], plus the archival decision
// that follows from it.
//
// Grounded on original_source/crates/cortex-decay/src/{formula,archival}.rs
// and the factors/{temporal,usage}.rs files it ships (citation/
// importance/pattern factors are not present in the retrieval pack and
// are implemented directly from spec.md §4.2's formula text), with the
// teacher's migration-seeded decay_score/tier_id/access_count columns
// providing the storage-side shape this package's inputs are read from.
//
// process_batch is a pure function: it never touches storage. Callers
// read records, call ProcessBatch, and persist the returned decisions
// themselves (spec.md §4.2: "The engine never writes to storage
// directly").
package decay
