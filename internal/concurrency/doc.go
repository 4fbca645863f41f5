// Package concurrency is the multi-agent coordination substrate:
// per-target-agent field-delta queues draining into CRDT merges, a
// sharded session manager tracking what has already been sent to each
// agent, predictive preloading of likely-needed memories, and a monthly
// importance reclassifier.
//
// Grounded on original_source/crates/cortex-crdt/src/memory/field_delta.rs
// (FieldDelta's 13 variants, ported directly), cortex-session/src/
// {context,manager,deduplication,analytics}.rs (SessionContext/
// SessionManager/dedup/analytics, ported structurally — manager.rs's
// DashMap becomes a Go lock-striped map since no concurrent-map
// dependency appears anywhere in the retrieval pack), cortex-prediction
// (signals/strategies/precompute, ported structurally; cache.rs and
// engine.rs are named in lib.rs but not shipped, so PredictionCache and
// the orchestrating Predictor are this package's own implementation
// built from spec.md §4.7 and the shipped strategy/signal files), and
// cortex-reclassification/src/rules.rs (the full threshold/cooldown
// table, ported directly).
package concurrency
