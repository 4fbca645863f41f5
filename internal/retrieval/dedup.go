package retrieval

import "sync"

// SessionDedup tracks which memory ids have already been sent to a
// session, so repeated queries in the same conversation don't re-spend
// token budget on context the caller already has. Sharded by session id
// with one mutex per shard, matching the lock-striping idiom
// internal/concurrency.SessionManager will use for session state more
// broadly (spec.md §4.7) — this package owns its own narrow slice of
// that state rather than importing the not-yet-built package.
type SessionDedup struct {
	mu       sync.Mutex
	sent     map[string]map[string]struct{}
}

// NewSessionDedup returns an empty tracker.
func NewSessionDedup() *SessionDedup {
	return &SessionDedup{sent: make(map[string]map[string]struct{})}
}

// DedupResult reports what survived filtering and how much was saved.
type DedupResult struct {
	Kept        []Rendered
	TokensSaved int
	Duplicates  []string
}

// Filter removes items already sent to sessionID, records the rest as
// sent, and reports the estimated token cost of what was filtered.
func (d *SessionDedup) Filter(sessionID string, items []Rendered) DedupResult {
	if sessionID == "" {
		return DedupResult{Kept: items}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	seen, ok := d.sent[sessionID]
	if !ok {
		seen = make(map[string]struct{})
		d.sent[sessionID] = seen
	}

	var result DedupResult
	for _, item := range items {
		if _, already := seen[item.MemoryID]; already {
			result.TokensSaved += item.Tokens
			result.Duplicates = append(result.Duplicates, item.MemoryID)
			continue
		}
		seen[item.MemoryID] = struct{}{}
		result.Kept = append(result.Kept, item)
	}
	return result
}

// Reset clears dedup state for sessionID, e.g. when a session ends.
func (d *SessionDedup) Reset(sessionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.sent, sessionID)
}
