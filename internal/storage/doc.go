// Package storage is the bitemporal record store: a single-writer,
// multi-reader SQLite engine with FTS5 lexical search, a BLOB-backed
// vector column searched by cosine similarity in Go, relationship and
// causal-edge persistence, audit/version history, and retention-based
// compaction.
//
// Grounded on the teacher's internal/database package (connection
// handling, schema-as-SQL-constant, dynamic-SET-clause updates, FTS5
// trigger trio) generalized from a single flat memories table to the
// full bitemporal schema spec.md §3-§4.1 describes.
package storage
