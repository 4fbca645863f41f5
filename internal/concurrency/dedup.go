package concurrency

// DeduplicationResult is the outcome of filtering a candidate memory
// list against a session's already-sent set. Ported directly from
// cortex-session/src/deduplication.rs's DeduplicationResult.
type DeduplicationResult struct {
	ToSend      []string
	Filtered    []string
	TokensSaved int
}

// FilterDuplicates splits candidateIDs into what still needs sending to
// ctx's agent and what was already sent this session, estimating the
// token cost avoided by skipping each filtered id. Ported directly from
// deduplication.rs's filter_duplicates.
func FilterDuplicates(candidateIDs []string, ctx *SessionContext, estimateTokens func(memoryID string) int) DeduplicationResult {
	result := DeduplicationResult{}
	for _, id := range candidateIDs {
		if ctx.IsMemorySent(id) {
			result.Filtered = append(result.Filtered, id)
			if estimateTokens != nil {
				result.TokensSaved += estimateTokens(id)
			}
			continue
		}
		result.ToSend = append(result.ToSend, id)
	}
	return result
}
