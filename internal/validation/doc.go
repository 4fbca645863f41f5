// Package validation implements the four-dimension memory validation and
// contradiction framework of spec.md §4.6.
//
// Grounded on original_source/crates/cortex-validation: lib.rs's
// dimension list and healing-strategy list, contradiction/detection/
// mod.rs's five-strategy ordering, contradiction/detection/
// cross_pattern.rs (ported directly — the only detection strategy with
// shipped source; absolute_statement/feedback/semantic/
// temporal_supersession are declared in mod.rs but unshipped, built here
// from their names and spec.md §4.6's one-line descriptions),
// contradiction/consensus.rs (ported directly), healing/
// {confidence_adjust,citation_update,embedding_refresh,flagging}.rs
// (ported directly; healing/archival.rs is declared but unshipped, built
// here as a thin wrapper over the storage Archive call), and
// cortex-core/models/{contradiction,validation_result}.rs for the result
// shape. contradiction/propagation.rs and dimensions/{citation,temporal,
// pattern_alignment}.rs and engine.rs are declared in their respective
// mod.rs files but ship no source; implemented here from spec.md §4.6's
// text.
package validation
