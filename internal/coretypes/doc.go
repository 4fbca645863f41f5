// Package coretypes holds the leaf types shared by every cortex subsystem:
// the Memory record, causal and relationship edges, audit/version rows,
// the error taxonomy, and the Clock seam. Nothing in this package imports
// any other cortex package, matching the dependency order in SPEC_FULL.md
// (types/errors come first).
package coretypes
