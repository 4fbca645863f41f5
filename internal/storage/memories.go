package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mattepiu/cortex/internal/coretypes"
)

// Create inserts a new memory. Fails with coretypes.StorageError{Code:
// duplicate_id} if the id already exists and the memory does not carry a
// Supersedes pointer (spec.md §4.1 "create(record)").
//
// Grounded on the teacher's CreateMemory (default-filling, single INSERT),
// generalized to the full bitemporal Memory and to emit an AuditRecord
// plus a version-0 snapshot per spec.md §3's lifecycle.
func (s *Store) Create(m *coretypes.Memory) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.TransactionTime.IsZero() {
		m.TransactionTime = s.clock.Now()
	}
	if m.ValidTime.IsZero() {
		m.ValidTime = m.TransactionTime
	}
	if m.LastAccessed.IsZero() {
		m.LastAccessed = m.TransactionTime
	}
	if m.Tags == nil {
		m.Tags = coretypes.NewStringSet()
	}
	m.Confidence = coretypes.ClampConfidence(m.Confidence)
	m.ContentHash = coretypes.ComputeContentHash(m.Payload)

	payloadJSON, err := encodePayload(m.Payload)
	if err != nil {
		return err
	}

	tx, unlock, err := s.beginWrite()
	if err != nil {
		return err
	}
	defer unlock()
	defer tx.Rollback()

	var existing int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM memories WHERE id = ?`, m.ID).Scan(&existing); err != nil {
		return coretypes.NewSqliteError("check existing id", err)
	}
	if existing > 0 && m.Supersedes == nil {
		return coretypes.NewDuplicateID(m.ID)
	}

	_, err = tx.Exec(`
		INSERT INTO memories (
			id, kind, payload_json, search_text, content_hash, summary, confidence, importance,
			transaction_time, valid_time, valid_until, last_accessed, access_count,
			tags, linked_files, linked_functions, linked_patterns, linked_constraints,
			archived, supersedes, superseded_by, namespace, source_agent, decay_score
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		m.ID, string(m.Kind), payloadJSON, searchableText(m.Payload), m.ContentHash, m.Summary, m.Confidence, int(m.Importance),
		m.TransactionTime, m.ValidTime, nullTime(m.ValidUntil), m.LastAccessed, m.AccessCount,
		encodeStringSet(m.Tags), encodeStringSet(m.LinkedFiles), encodeStringSet(m.LinkedFunctions),
		encodeStringSet(m.LinkedPatterns), encodeStringSet(m.LinkedConstraints),
		m.Archived, nullStr(m.Supersedes), nullStr(m.SupersededBy), m.Namespace, m.SourceAgent, 1.0,
	)
	if err != nil {
		return coretypes.NewSqliteError("insert memory", err)
	}

	if err := writeAuditTx(tx, m.ID, coretypes.AuditCreate, "", m.SourceAgent, s.clock.Now()); err != nil {
		return err
	}
	if err := writeVersionTx(tx, m.ID, 0, payloadJSON, m.Summary, m.Confidence, m.SourceAgent, "create", s.clock.Now()); err != nil {
		return err
	}

	return tx.Commit()
}

// Get retrieves a memory by id, returning (nil, nil) if absent — never
// blocks the writer, since it runs against the read pool.
func (s *Store) Get(id string) (*coretypes.Memory, error) {
	var m *coretypes.Memory
	err := s.queryRead(func() error {
		row := s.readDB.QueryRow(`SELECT `+memoryColumns+` FROM memories WHERE id = ?`, id)
		var scanErr error
		m, scanErr = scanMemory(row)
		if scanErr == sql.ErrNoRows {
			m = nil
			return nil
		}
		return scanErr
	})
	if err != nil {
		return nil, coretypes.NewSqliteError("get memory", err)
	}
	return m, nil
}

// GetBulk retrieves many memories by id in one query, skipping missing
// ids rather than erroring (spec.md §4.1: "returns None for missing
// ids").
func (s *Store) GetBulk(ids []string) ([]*coretypes.Memory, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	var out []*coretypes.Memory
	err := s.queryRead(func() error {
		rows, err := s.readDB.Query(`SELECT `+memoryColumns+` FROM memories WHERE id IN (`+strings.Join(placeholders, ",")+`)`, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = scanMemories(rows)
		return err
	})
	if err != nil {
		return nil, coretypes.NewSqliteError("get bulk", err)
	}
	return out, nil
}

// MemoryUpdate carries optional field updates; a nil pointer/set leaves
// the column untouched. Generalizes the teacher's pointer-field
// MemoryUpdate from a handful of columns to the full bitemporal record.
type MemoryUpdate struct {
	Payload    coretypes.Payload
	Summary    *string
	Confidence *float64
	Importance *coretypes.Importance
	// ValidUntil, when non-nil, sets valid_until; *ValidUntil == nil clears it.
	ValidUntil **time.Time
	Tags       coretypes.StringSet
	Archived   *bool
	ChangedBy  string
	Reason     string
}

// Update applies a partial update, snapshotting the prior state to
// memory_versions first and emitting an audit row. Fails with NotFound if
// id is absent, per spec.md §4.1.
func (s *Store) Update(id string, u *MemoryUpdate) error {
	tx, unlock, err := s.beginWrite()
	if err != nil {
		return err
	}
	defer unlock()
	defer tx.Rollback()

	current, err := scanMemory(tx.QueryRow(`SELECT `+memoryColumns+` FROM memories WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return coretypes.NewNotFound(id)
	}
	if err != nil {
		return coretypes.NewSqliteError("read current memory", err)
	}

	currentPayloadJSON, err := encodePayload(current.Payload)
	if err != nil {
		return err
	}
	if err := writeVersionTx(tx, id, nextVersionTx(tx, id), currentPayloadJSON, current.Summary, current.Confidence, u.ChangedBy, u.Reason, s.clock.Now()); err != nil {
		return err
	}

	var setClauses []string
	var args []interface{}

	if u.Payload != nil {
		payloadJSON, err := encodePayload(u.Payload)
		if err != nil {
			return err
		}
		setClauses = append(setClauses, "payload_json = ?", "search_text = ?", "content_hash = ?", "kind = ?")
		args = append(args, payloadJSON, searchableText(u.Payload), coretypes.ComputeContentHash(u.Payload), string(u.Payload.PayloadKind()))
	}
	if u.Summary != nil {
		setClauses = append(setClauses, "summary = ?")
		args = append(args, *u.Summary)
	}
	if u.Confidence != nil {
		setClauses = append(setClauses, "confidence = ?")
		args = append(args, coretypes.ClampConfidence(*u.Confidence))
	}
	if u.Importance != nil {
		setClauses = append(setClauses, "importance = ?")
		args = append(args, int(*u.Importance))
	}
	if u.ValidUntil != nil {
		setClauses = append(setClauses, "valid_until = ?")
		args = append(args, nullTime(*u.ValidUntil))
	}
	if u.Tags != nil {
		setClauses = append(setClauses, "tags = ?")
		args = append(args, encodeStringSet(u.Tags))
	}
	if u.Archived != nil {
		setClauses = append(setClauses, "archived = ?")
		args = append(args, *u.Archived)
	}

	if len(setClauses) == 0 {
		return tx.Commit()
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE memories SET %s WHERE id = ?", strings.Join(setClauses, ", "))
	if _, err := tx.Exec(query, args...); err != nil {
		return coretypes.NewSqliteError("update memory", err)
	}

	if err := writeAuditTx(tx, id, coretypes.AuditUpdate, u.Reason, u.ChangedBy, s.clock.Now()); err != nil {
		return err
	}

	return tx.Commit()
}

// Archive performs the logical delete spec.md §4.1 requires: sets
// archived=true, keeps the row. Physical deletion only happens later,
// during retention (audit.go RunRetention).
func (s *Store) Archive(id, actor, reason string) error {
	tx, unlock, err := s.beginWrite()
	if err != nil {
		return err
	}
	defer unlock()
	defer tx.Rollback()

	result, err := tx.Exec(`UPDATE memories SET archived = 1 WHERE id = ?`, id)
	if err != nil {
		return coretypes.NewSqliteError("archive memory", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return coretypes.NewNotFound(id)
	}

	if err := writeAuditTx(tx, id, coretypes.AuditArchive, reason, actor, s.clock.Now()); err != nil {
		return err
	}
	return tx.Commit()
}

// Supersede writes newMem as a fresh record pointing Supersedes at oldID,
// points old.SupersededBy at the new id, and archives the old record —
// spec.md §3's supersede lifecycle step.
func (s *Store) Supersede(oldID string, newMem *coretypes.Memory) error {
	newMem.Supersedes = &oldID
	if err := s.Create(newMem); err != nil {
		return err
	}

	tx, unlock, err := s.beginWrite()
	if err != nil {
		return err
	}
	defer unlock()
	defer tx.Rollback()

	result, err := tx.Exec(`UPDATE memories SET superseded_by = ?, archived = 1 WHERE id = ?`, newMem.ID, oldID)
	if err != nil {
		return coretypes.NewSqliteError("supersede memory", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return coretypes.NewNotFound(oldID)
	}
	if err := writeAuditTx(tx, oldID, coretypes.AuditSupersede, "superseded by "+newMem.ID, newMem.SourceAgent, s.clock.Now()); err != nil {
		return err
	}
	return tx.Commit()
}

// CreateBulk atomically inserts many memories; any per-row failure rolls
// back the whole batch (spec.md §4.1: "any per-row failure rolls back the
// whole batch"), unlike the partial-failure semantics retrieval/
// consolidation batches use elsewhere (spec.md §7).
func (s *Store) CreateBulk(memories []*coretypes.Memory) error {
	tx, unlock, err := s.beginWrite()
	if err != nil {
		return err
	}
	defer unlock()
	defer tx.Rollback()

	now := s.clock.Now()
	for _, m := range memories {
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		if m.TransactionTime.IsZero() {
			m.TransactionTime = now
		}
		if m.ValidTime.IsZero() {
			m.ValidTime = now
		}
		if m.LastAccessed.IsZero() {
			m.LastAccessed = now
		}
		if m.Tags == nil {
			m.Tags = coretypes.NewStringSet()
		}
		m.Confidence = coretypes.ClampConfidence(m.Confidence)
		m.ContentHash = coretypes.ComputeContentHash(m.Payload)

		payloadJSON, err := encodePayload(m.Payload)
		if err != nil {
			return err
		}

		_, err = tx.Exec(`
			INSERT INTO memories (
				id, kind, payload_json, search_text, content_hash, summary, confidence, importance,
				transaction_time, valid_time, valid_until, last_accessed, access_count,
				tags, linked_files, linked_functions, linked_patterns, linked_constraints,
				archived, supersedes, superseded_by, namespace, source_agent, decay_score
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			m.ID, string(m.Kind), payloadJSON, searchableText(m.Payload), m.ContentHash, m.Summary, m.Confidence, int(m.Importance),
			m.TransactionTime, m.ValidTime, nullTime(m.ValidUntil), m.LastAccessed, m.AccessCount,
			encodeStringSet(m.Tags), encodeStringSet(m.LinkedFiles), encodeStringSet(m.LinkedFunctions),
			encodeStringSet(m.LinkedPatterns), encodeStringSet(m.LinkedConstraints),
			m.Archived, nullStr(m.Supersedes), nullStr(m.SupersededBy), m.Namespace, m.SourceAgent, 1.0,
		)
		if err != nil {
			return coretypes.NewSqliteError(fmt.Sprintf("insert memory %s", m.ID), err)
		}
		if err := writeAuditTx(tx, m.ID, coretypes.AuditCreate, "bulk", m.SourceAgent, now); err != nil {
			return err
		}
		if err := writeVersionTx(tx, m.ID, 0, payloadJSON, m.Summary, m.Confidence, m.SourceAgent, "create", now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func nextVersionTx(tx *sql.Tx, memoryID string) int {
	var max int
	_ = tx.QueryRow(`SELECT COALESCE(MAX(version_number), -1) FROM memory_versions WHERE memory_id = ?`, memoryID).Scan(&max)
	return max + 1
}

// QueryFilters drives QueryBy: any zero-value field is not filtered on.
type QueryFilters struct {
	Kind            coretypes.Kind
	Namespace       string
	MinImportance   *coretypes.Importance
	MinConfidence   *float64
	MaxConfidence   *float64
	Tags            []string
	IncludeArchived bool
	Limit           int
	Offset          int
}

// QueryBy is the generalized indexed-lookup contract spec.md §4.1 calls
// "query_by_kind / importance / confidence-range / date-range / tags",
// folded into one filter struct the way the teacher's ListMemories takes
// a MemoryFilters struct.
func (s *Store) QueryBy(f QueryFilters) ([]*coretypes.Memory, error) {
	var where []string
	var args []interface{}

	if !f.IncludeArchived {
		where = append(where, "archived = 0")
	}
	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(f.Kind))
	}
	if f.Namespace != "" {
		where = append(where, "namespace = ?")
		args = append(args, f.Namespace)
	}
	if f.MinImportance != nil {
		where = append(where, "importance >= ?")
		args = append(args, int(*f.MinImportance))
	}
	if f.MinConfidence != nil {
		where = append(where, "confidence >= ?")
		args = append(args, *f.MinConfidence)
	}
	if f.MaxConfidence != nil {
		where = append(where, "confidence <= ?")
		args = append(args, *f.MaxConfidence)
	}
	for _, tag := range f.Tags {
		where = append(where, "tags LIKE ?")
		args = append(args, "%\""+tag+"\"%")
	}

	query := `SELECT ` + memoryColumns + ` FROM memories`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY transaction_time DESC"

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(" LIMIT %d", limit)
	if f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", f.Offset)
	}

	var out []*coretypes.Memory
	err := s.queryRead(func() error {
		rows, err := s.readDB.Query(query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = scanMemories(rows)
		return err
	})
	if err != nil {
		return nil, coretypes.NewSqliteError("query by filters", err)
	}
	return out, nil
}

// TouchAccess increments access_count and sets last_accessed = now for
// the given memory, feeding the decay engine's usage factor (spec.md
// §4.2). Called by the retrieval pipeline after serving a memory, not by
// Get itself (Get must never write, per spec.md §4.1: "never blocks the
// writer").
func (s *Store) TouchAccess(id string) error {
	tx, unlock, err := s.beginWrite()
	if err != nil {
		return err
	}
	defer unlock()
	defer tx.Rollback()

	_, err = tx.Exec(`UPDATE memories SET access_count = access_count + 1, last_accessed = ? WHERE id = ?`, s.clock.Now(), id)
	if err != nil {
		return coretypes.NewSqliteError("touch access", err)
	}
	return tx.Commit()
}
