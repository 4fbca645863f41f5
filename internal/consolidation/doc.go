// Package consolidation implements the six-phase background pipeline
// that compresses a corpus of individual memories into fewer, higher-
// value abstractions: Selection, Clustering, Recall gate, Abstraction,
// Integration, Pruning (spec.md §4.4). Grounded on
// original_source/crates/cortex/cortex-consolidation's shipped files —
// algorithms/{sentence_splitter,similarity}.rs (ported directly) and
// monitoring/dashboard.rs (ConsolidationDashboard) — plus its lib.rs/
// mod.rs module declarations for textrank, tfidf, engine, pipeline,
// llm_polish, throttle, triggers, auto_tuning, and metrics, none of
// which have source shipped in the retrieval pack; those are this
// package's own implementations of what the declared names describe,
// following spec.md §4.4's text and the monitoring types dashboard.rs
// already assumes (QualityAssessment, TunableThresholds).
package consolidation
