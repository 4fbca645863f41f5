// Package engine wires every subsystem — storage, decay, causal,
// embedding, retrieval, consolidation, validation, sanitizer,
// concurrency, and telemetry — into one constructed value, the way
// cmd/mycelicmemory/root.go's runMCPServer opens a database and builds a
// single mcp.Server from it. Engine is the thing cmd/cortexd constructs
// and holds for the lifetime of the process.
package engine
