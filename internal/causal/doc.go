// Package causal maintains an in-memory directed acyclic graph of
// CausalEdges between memories, rehydrated at startup from
// storage.LoadCausalGraph and kept current as edges are added.
//
// Grounded on original_source/crates/cortex-causal: graph/dag_enforcement.rs
// (DFS reachability cycle check), graph/pruning.rs (weak-edge and
// unvalidated-inferred-edge pruning), inference/mod.rs and
// inference/strategies/{explicit_reference,semantic_similarity,
// pattern_matching}.rs (composite scoring), traversal/{neighbors,
// trace_effects,trace_origins,bidirectional}.rs (graph walks), and
// narrative/{confidence,templates,builder}.rs (chain-confidence formula
// and template rendering). original_source ships three inference
// strategies summing to weight 0.85 (explicit_reference 0.4, semantic
// similarity 0.3, pattern_matching 0.15); a fourth, temporal proximity
// (weight 0.15), is added here to round the composite to 1.0 and is not
// drawn from the pack.
package causal
