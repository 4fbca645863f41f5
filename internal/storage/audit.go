package storage

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/mattepiu/cortex/internal/coretypes"
)

// writeAuditTx appends one row to audit_log within an already-open write
// transaction. Every CRUD-class operation emits exactly one audit row
// (spec.md §3), grounded on the teacher's writeAuditEntry helper used
// from inside MemoryService mutations.
func writeAuditTx(tx *sql.Tx, memoryID string, op coretypes.AuditOperation, details, actor string, now time.Time) error {
	_, err := tx.Exec(`
		INSERT INTO audit_log (id, memory_id, operation, details, actor, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`, uuid.New().String(), memoryID, string(op), details, actor, now)
	if err != nil {
		return coretypes.NewSqliteError("write audit log", err)
	}
	return nil
}

// writeVersionTx appends a pre-mutation snapshot to memory_versions.
func writeVersionTx(tx *sql.Tx, memoryID string, version int, content, summary string, confidence float64, changedBy, reason string, now time.Time) error {
	_, err := tx.Exec(`
		INSERT INTO memory_versions (memory_id, version_number, content, summary, confidence, changed_by, reason, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, memoryID, version, content, summary, confidence, changedBy, reason, now)
	if err != nil {
		return coretypes.NewSqliteError("write version snapshot", err)
	}
	return nil
}

// AuditTrail returns the ordered audit history for a memory, oldest first.
func (s *Store) AuditTrail(memoryID string) ([]coretypes.AuditRecord, error) {
	var out []coretypes.AuditRecord
	err := s.queryRead(func() error {
		rows, err := s.readDB.Query(`
			SELECT id, memory_id, operation, details, actor, timestamp
			FROM audit_log WHERE memory_id = ? ORDER BY timestamp ASC
		`, memoryID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var r coretypes.AuditRecord
			if err := rows.Scan(&r.ID, &r.MemoryID, &r.Operation, &r.Details, &r.Actor, &r.Timestamp); err != nil {
				return err
			}
			out = append(out, r)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, coretypes.NewSqliteError("read audit trail", err)
	}
	return out, nil
}

// VersionHistory returns every snapshot stored for a memory, oldest first.
func (s *Store) VersionHistory(memoryID string) ([]coretypes.VersionSnapshot, error) {
	var out []coretypes.VersionSnapshot
	err := s.queryRead(func() error {
		rows, err := s.readDB.Query(`
			SELECT memory_id, version_number, content, summary, confidence, changed_by, reason, timestamp
			FROM memory_versions WHERE memory_id = ? ORDER BY version_number ASC
		`, memoryID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var v coretypes.VersionSnapshot
			if err := rows.Scan(&v.MemoryID, &v.VersionNumber, &v.Content, &v.Summary, &v.Confidence, &v.ChangedBy, &v.Reason, &v.Timestamp); err != nil {
				return err
			}
			out = append(out, v)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, coretypes.NewSqliteError("read version history", err)
	}
	return out, nil
}

// RecordDegradation appends a DegradationEvent to degradation_log, used by
// every subsystem that silently falls back to a lower-quality mode
// (spec.md §7) — e.g. embedding provider unreachable, FTS5 unavailable.
func (s *Store) RecordDegradation(ev coretypes.DegradationEvent) error {
	tx, unlock, err := s.beginWrite()
	if err != nil {
		return err
	}
	defer unlock()
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO degradation_log (component, reason, occurred_at)
		VALUES (?, ?, ?)
	`, ev.Component, ev.Reason, time.Unix(ev.Timestamp, 0))
	if err != nil {
		return coretypes.NewSqliteError("record degradation", err)
	}
	return tx.Commit()
}

// RetentionPolicy configures RunRetention's cutoffs (spec.md §4.1
// retention rules: audit 30d, metrics 7d, snapshots 365d, plus physical
// deletion of long-archived low-value rows).
type RetentionPolicy struct {
	AuditRetention      time.Duration
	MetricsRetention    time.Duration
	SnapshotRetention   time.Duration
	ArchivedMaxAge      time.Duration
	ArchivedMaxConf     float64
}

// DefaultRetentionPolicy matches spec.md §4.1's stated defaults.
func DefaultRetentionPolicy() RetentionPolicy {
	return RetentionPolicy{
		AuditRetention:    30 * 24 * time.Hour,
		MetricsRetention:  7 * 24 * time.Hour,
		SnapshotRetention: 365 * 24 * time.Hour,
		ArchivedMaxAge:    90 * 24 * time.Hour,
		ArchivedMaxConf:   0.1,
	}
}

// RetentionReport summarizes what RunRetention removed.
type RetentionReport struct {
	AuditRowsDeleted      int64
	MetricRowsDeleted     int64
	SnapshotRowsDeleted   int64
	MemoriesPhysicallyDeleted int64
}

// RunRetention deletes expired audit/metrics/snapshot rows and physically
// removes archived memories that are old, low-confidence, and never
// accessed — the only physical deletion path in the store (everything
// else is the logical Archive). Grounded on the teacher's periodic
// pruning job in internal/daemon, generalized to the multi-table
// retention matrix spec.md §4.1 defines.
func (s *Store) RunRetention(policy RetentionPolicy) (*RetentionReport, error) {
	now := s.clock.Now()
	report := &RetentionReport{}

	tx, unlock, err := s.beginWrite()
	if err != nil {
		return nil, err
	}
	defer unlock()
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM audit_log WHERE timestamp < ?`, now.Add(-policy.AuditRetention))
	if err != nil {
		return nil, coretypes.NewSqliteError("prune audit log", err)
	}
	report.AuditRowsDeleted, _ = res.RowsAffected()

	res, err = tx.Exec(`DELETE FROM consolidation_metrics WHERE run_at < ?`, now.Add(-policy.MetricsRetention))
	if err != nil {
		return nil, coretypes.NewSqliteError("prune consolidation metrics", err)
	}
	m1, _ := res.RowsAffected()

	res, err = tx.Exec(`DELETE FROM validation_history WHERE checked_at < ?`, now.Add(-policy.MetricsRetention))
	if err != nil {
		return nil, coretypes.NewSqliteError("prune validation history", err)
	}
	m2, _ := res.RowsAffected()
	report.MetricRowsDeleted = m1 + m2

	res, err = tx.Exec(`DELETE FROM memory_versions WHERE timestamp < ?`, now.Add(-policy.SnapshotRetention))
	if err != nil {
		return nil, coretypes.NewSqliteError("prune version snapshots", err)
	}
	report.SnapshotRowsDeleted, _ = res.RowsAffected()

	res, err = tx.Exec(`
		DELETE FROM memories
		WHERE archived = 1
		  AND confidence < ?
		  AND access_count = 0
		  AND last_accessed < ?
	`, policy.ArchivedMaxConf, now.Add(-policy.ArchivedMaxAge))
	if err != nil {
		return nil, coretypes.NewSqliteError("physically delete archived memories", err)
	}
	report.MemoriesPhysicallyDeleted, _ = res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return nil, coretypes.NewSqliteError("commit retention pass", err)
	}
	return report, nil
}

// RegisterAgent upserts an agent into agent_registry, bumping last_seen.
func (s *Store) RegisterAgent(agentID, namespace, agentType string) error {
	tx, unlock, err := s.beginWrite()
	if err != nil {
		return err
	}
	defer unlock()
	defer tx.Rollback()

	now := s.clock.Now()
	_, err = tx.Exec(`
		INSERT INTO agent_registry (agent_id, namespace, agent_type, first_seen, last_seen)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(agent_id) DO UPDATE SET last_seen = excluded.last_seen
	`, agentID, namespace, agentType, now, now)
	if err != nil {
		return coretypes.NewSqliteError("register agent", err)
	}
	return tx.Commit()
}

// SetTrustScore upserts an agent's trust score, clamped to [0,1].
func (s *Store) SetTrustScore(agentID string, score float64) error {
	tx, unlock, err := s.beginWrite()
	if err != nil {
		return err
	}
	defer unlock()
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO trust_scores (agent_id, score, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(agent_id) DO UPDATE SET score = excluded.score, updated_at = excluded.updated_at
	`, agentID, coretypes.ClampConfidence(score), s.clock.Now())
	if err != nil {
		return coretypes.NewSqliteError("set trust score", err)
	}
	return tx.Commit()
}

// TrustScore returns an agent's trust score, defaulting to 0.5 (neutral)
// if the agent has never been scored.
func (s *Store) TrustScore(agentID string) (float64, error) {
	var score float64
	err := s.queryRead(func() error {
		row := s.readDB.QueryRow(`SELECT score FROM trust_scores WHERE agent_id = ?`, agentID)
		scanErr := row.Scan(&score)
		if scanErr == sql.ErrNoRows {
			score = 0.5
			return nil
		}
		return scanErr
	})
	if err != nil {
		return 0, coretypes.NewSqliteError("read trust score", err)
	}
	return score, nil
}
