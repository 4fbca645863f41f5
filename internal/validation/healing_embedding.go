package validation

// RefreshRequest asks the embedding subsystem to re-embed a memory
// whose context has changed. Ported directly from
// healing/embedding_refresh.rs's RefreshRequest.
type RefreshRequest struct {
	MemoryID string
	Reason   string
}

// CollectRefreshRequest builds a RefreshRequest when a memory's citation
// changed or its content hash drifted. Ported directly from
// healing/embedding_refresh.rs's collect_refresh_requests.
func CollectRefreshRequest(memoryID string, citationChanged, contentHashDrifted bool) *RefreshRequest {
	if !citationChanged && !contentHashDrifted {
		return nil
	}
	reason := "citation updated — context may have changed"
	if contentHashDrifted {
		reason = "content hash drift detected — linked file content changed"
	}
	return &RefreshRequest{MemoryID: memoryID, Reason: reason}
}
