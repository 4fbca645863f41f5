package concurrency

import (
	"sync"
	"time"
)

// SessionContext tracks one agent session's lifecycle: when it started,
// when it last queried, and which memories have already been sent to it
// (so retrieval never re-sends a memory the agent already has in
// context). Ported structurally from cortex-session/src/context.rs's
// SessionContext.
type SessionContext struct {
	mu sync.RWMutex

	SessionID     string
	AgentID       string
	CreatedAt     time.Time
	LastQueryAt   time.Time
	QueryCount    uint64
	sentMemoryIDs map[string]struct{}
	Analytics     SessionAnalytics
}

// NewSessionContext starts a session with no associated agent id.
// Ported from context.rs's SessionContext::new.
func NewSessionContext(sessionID string, now time.Time) *SessionContext {
	return &SessionContext{
		SessionID:     sessionID,
		CreatedAt:     now,
		LastQueryAt:   now,
		sentMemoryIDs: make(map[string]struct{}),
	}
}

// NewSessionContextWithAgent starts a session scoped to a specific
// agent. Ported from context.rs's SessionContext::new_with_agent.
func NewSessionContextWithAgent(sessionID, agentID string, now time.Time) *SessionContext {
	ctx := NewSessionContext(sessionID, now)
	ctx.AgentID = agentID
	return ctx
}

// MarkMemorySent records that memoryID has been delivered to this
// session's agent. Ported from context.rs's mark_memory_sent.
func (c *SessionContext) MarkMemorySent(memoryID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sentMemoryIDs[memoryID] = struct{}{}
}

// IsMemorySent reports whether memoryID was already sent this session.
// Ported from context.rs's is_memory_sent.
func (c *SessionContext) IsMemorySent(memoryID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.sentMemoryIDs[memoryID]
	return ok
}

// RecordQuery bumps the query counter and refreshes LastQueryAt. Ported
// from context.rs's record_query.
func (c *SessionContext) RecordQuery(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.QueryCount++
	c.LastQueryAt = now
}

// IdleDuration is how long it has been since the last query. Ported
// from context.rs's idle_duration.
func (c *SessionContext) IdleDuration(now time.Time) time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return now.Sub(c.LastQueryAt)
}

// SessionDuration is how long the session has been alive. Ported from
// context.rs's session_duration.
func (c *SessionContext) SessionDuration(now time.Time) time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return now.Sub(c.CreatedAt)
}
