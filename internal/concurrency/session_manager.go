package concurrency

import (
	"hash/fnv"
	"sync"
	"time"
)

// defaultSessionShards is the stripe count for SessionManager's lock
// striping. Ported structurally from cortex-session/src/manager.rs's use
// of DashMap, whose default shard count is also a small power of two;
// no concurrent-map library is wired anywhere in the retrieval pack, so
// striping is done by hand with a slice of mutex-guarded maps rather
// than importing one for this single call site — see DESIGN.md.
const defaultSessionShards = 16

type sessionShard struct {
	mu       sync.RWMutex
	sessions map[string]*SessionContext
}

// SessionManager is a concurrent registry of active agent sessions,
// lock-striped across defaultSessionShards shards so sessions on
// different shards never contend. Ported structurally from
// cortex-session/src/manager.rs's SessionManager.
type SessionManager struct {
	shards []*sessionShard
}

// NewSessionManager returns an empty, ready-to-use manager.
func NewSessionManager() *SessionManager {
	shards := make([]*sessionShard, defaultSessionShards)
	for i := range shards {
		shards[i] = &sessionShard{sessions: make(map[string]*SessionContext)}
	}
	return &SessionManager{shards: shards}
}

func (m *SessionManager) shardFor(sessionID string) *sessionShard {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	return m.shards[h.Sum32()%uint32(len(m.shards))]
}

// CreateSession starts and registers a new session. Ported from
// manager.rs's create_session.
func (m *SessionManager) CreateSession(sessionID string, now time.Time) *SessionContext {
	shard := m.shardFor(sessionID)
	ctx := NewSessionContext(sessionID, now)
	shard.mu.Lock()
	shard.sessions[sessionID] = ctx
	shard.mu.Unlock()
	return ctx
}

// CreateSessionWithAgent starts and registers a new agent-scoped session.
func (m *SessionManager) CreateSessionWithAgent(sessionID, agentID string, now time.Time) *SessionContext {
	shard := m.shardFor(sessionID)
	ctx := NewSessionContextWithAgent(sessionID, agentID, now)
	shard.mu.Lock()
	shard.sessions[sessionID] = ctx
	shard.mu.Unlock()
	return ctx
}

// GetSession looks up a registered session. Ported from manager.rs's
// get_session.
func (m *SessionManager) GetSession(sessionID string) (*SessionContext, bool) {
	shard := m.shardFor(sessionID)
	shard.mu.RLock()
	defer shard.mu.RUnlock()
	ctx, ok := shard.sessions[sessionID]
	return ctx, ok
}

// RemoveSession evicts a session, e.g. on agent disconnect. Ported from
// manager.rs's remove_session.
func (m *SessionManager) RemoveSession(sessionID string) {
	shard := m.shardFor(sessionID)
	shard.mu.Lock()
	delete(shard.sessions, sessionID)
	shard.mu.Unlock()
}

// MarkMemorySent marks a memory sent on a registered session, reporting
// false if the session is unknown. Ported from manager.rs's
// mark_memory_sent.
func (m *SessionManager) MarkMemorySent(sessionID, memoryID string) bool {
	ctx, ok := m.GetSession(sessionID)
	if !ok {
		return false
	}
	ctx.MarkMemorySent(memoryID)
	return true
}

// IsMemorySent reports whether memoryID was sent on sessionID, or false
// if the session is unknown. Ported from manager.rs's is_memory_sent.
func (m *SessionManager) IsMemorySent(sessionID, memoryID string) bool {
	ctx, ok := m.GetSession(sessionID)
	if !ok {
		return false
	}
	return ctx.IsMemorySent(memoryID)
}

// RecordQuery records a query against a registered session, reporting
// false if the session is unknown. Ported from manager.rs's
// record_query.
func (m *SessionManager) RecordQuery(sessionID string, now time.Time) bool {
	ctx, ok := m.GetSession(sessionID)
	if !ok {
		return false
	}
	ctx.RecordQuery(now)
	return true
}

// SessionCount returns the number of currently registered sessions.
// Ported from manager.rs's session_count.
func (m *SessionManager) SessionCount() int {
	total := 0
	for _, shard := range m.shards {
		shard.mu.RLock()
		total += len(shard.sessions)
		shard.mu.RUnlock()
	}
	return total
}

// SessionIDs returns every currently registered session id. Ported from
// manager.rs's session_ids.
func (m *SessionManager) SessionIDs() []string {
	var out []string
	for _, shard := range m.shards {
		shard.mu.RLock()
		for id := range shard.sessions {
			out = append(out, id)
		}
		shard.mu.RUnlock()
	}
	return out
}

// EvictIdle removes every session whose idle duration at now exceeds
// maxIdle, returning the evicted session ids. Not present in manager.rs
// (DashMap-backed sessions there are reaped by an external scheduler);
// built here so this package owns the full session lifecycle spec.md §5
// describes, including idle cleanup.
func (m *SessionManager) EvictIdle(now time.Time, maxIdle time.Duration) []string {
	var evicted []string
	for _, shard := range m.shards {
		shard.mu.Lock()
		for id, ctx := range shard.sessions {
			if ctx.IdleDuration(now) > maxIdle {
				delete(shard.sessions, id)
				evicted = append(evicted, id)
			}
		}
		shard.mu.Unlock()
	}
	return evicted
}
