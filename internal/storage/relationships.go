package storage

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/mattepiu/cortex/internal/coretypes"
)

// AddRelationship persists a non-causal relationship edge between two
// memories (spec.md §3's 14-kind relationship taxonomy). Grounded on the
// teacher's internal/relationships package, generalized from its fixed
// handful of kinds to the full closed set and cross-agent metadata.
func (s *Store) AddRelationship(e *coretypes.RelationshipEdge) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Created.IsZero() {
		e.Created = s.clock.Now()
	}

	var crossSrc, crossTgt, crossNote *string
	if e.CrossAgent != nil {
		crossSrc, crossTgt, crossNote = &e.CrossAgent.SourceAgent, &e.CrossAgent.TargetAgent, &e.CrossAgent.Note
	}

	tx, unlock, err := s.beginWrite()
	if err != nil {
		return err
	}
	defer unlock()
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO memory_relationships (
			id, source_memory_id, target_memory_id, kind, strength,
			cross_agent_source, cross_agent_target, cross_agent_note, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Source, e.Target, string(e.Kind), coretypes.ClampConfidence(e.Strength),
		nullStr(crossSrc), nullStr(crossTgt), nullStr(crossNote), e.Created)
	if err != nil {
		return coretypes.NewSqliteError("add relationship", err)
	}
	return tx.Commit()
}

// GetRelationships returns every relationship touching a memory, as
// either its source or target, newest first.
func (s *Store) GetRelationships(memoryID string) ([]*coretypes.RelationshipEdge, error) {
	var out []*coretypes.RelationshipEdge
	err := s.queryRead(func() error {
		rows, err := s.readDB.Query(`
			SELECT id, source_memory_id, target_memory_id, kind, strength,
			       cross_agent_source, cross_agent_target, cross_agent_note, created_at
			FROM memory_relationships
			WHERE source_memory_id = ? OR target_memory_id = ?
			ORDER BY created_at DESC
		`, memoryID, memoryID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var e coretypes.RelationshipEdge
			var kind string
			var sSrc, sTgt, sNote sql.NullString
			if err := rows.Scan(&e.ID, &e.Source, &e.Target, &kind, &e.Strength, &sSrc, &sTgt, &sNote, &e.Created); err != nil {
				return err
			}
			e.Kind = coretypes.RelationshipKind(kind)
			if sSrc.Valid || sTgt.Valid || sNote.Valid {
				e.CrossAgent = &coretypes.CrossAgentMeta{
					SourceAgent: sSrc.String,
					TargetAgent: sTgt.String,
					Note:        sNote.String,
				}
			}
			out = append(out, &e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, coretypes.NewSqliteError("get relationships", err)
	}
	return out, nil
}

// AddCausalEdge persists a directed causal edge. The acyclicity
// invariant (spec.md §4.5) is enforced by internal/causal's in-memory
// DAG before this is ever called; the store itself only guards against
// duplicate (source,target,relation) triples via the UNIQUE index.
func (s *Store) AddCausalEdge(e *coretypes.CausalEdge) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Created.IsZero() {
		e.Created = s.clock.Now()
	}

	tx, unlock, err := s.beginWrite()
	if err != nil {
		return err
	}
	defer unlock()
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO causal_edges (id, source_memory_id, target_memory_id, relation, strength, inferred, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Source, e.Target, string(e.Relation), coretypes.ClampConfidence(e.Strength), e.Inferred, e.Created)
	if err != nil {
		return coretypes.NewSqliteError("add causal edge", err)
	}

	for _, ev := range e.Evidence {
		if _, err := tx.Exec(`
			INSERT INTO causal_evidence (edge_id, description, source, timestamp)
			VALUES (?, ?, ?, ?)
		`, e.ID, ev.Description, ev.Source, ev.Timestamp); err != nil {
			return coretypes.NewSqliteError("add causal evidence", err)
		}
	}

	return tx.Commit()
}

// AddCausalEvidence appends one evidence row to an existing causal edge
// without touching its strength; strength reweighting is the causal
// engine's responsibility (spec.md §4.5: evidence is append-only).
func (s *Store) AddCausalEvidence(edgeID string, ev coretypes.Evidence) error {
	tx, unlock, err := s.beginWrite()
	if err != nil {
		return err
	}
	defer unlock()
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO causal_evidence (edge_id, description, source, timestamp)
		VALUES (?, ?, ?, ?)
	`, edgeID, ev.Description, ev.Source, ev.Timestamp)
	if err != nil {
		return coretypes.NewSqliteError("add causal evidence", err)
	}
	return tx.Commit()
}

// LoadCausalGraph reads every causal edge plus its evidence, in the shape
// internal/causal needs to rebuild its in-memory DAG at startup (spec.md
// §4.5: the DAG is authoritative in memory; sqlite is its durable log).
func (s *Store) LoadCausalGraph() ([]*coretypes.CausalEdge, error) {
	var edges []*coretypes.CausalEdge
	edgeIndex := map[string]*coretypes.CausalEdge{}

	err := s.queryRead(func() error {
		rows, err := s.readDB.Query(`
			SELECT id, source_memory_id, target_memory_id, relation, strength, inferred, created_at
			FROM causal_edges
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			e := &coretypes.CausalEdge{}
			var relation string
			if err := rows.Scan(&e.ID, &e.Source, &e.Target, &relation, &e.Strength, &e.Inferred, &e.Created); err != nil {
				return err
			}
			e.Relation = coretypes.CausalRelation(relation)
			edges = append(edges, e)
			edgeIndex[e.ID] = e
		}
		if err := rows.Err(); err != nil {
			return err
		}

		evRows, err := s.readDB.Query(`SELECT edge_id, description, source, timestamp FROM causal_evidence ORDER BY timestamp ASC`)
		if err != nil {
			return err
		}
		defer evRows.Close()
		for evRows.Next() {
			var edgeID string
			var ev coretypes.Evidence
			if err := evRows.Scan(&edgeID, &ev.Description, &ev.Source, &ev.Timestamp); err != nil {
				return err
			}
			if e, ok := edgeIndex[edgeID]; ok {
				e.Evidence = append(e.Evidence, ev)
			}
		}
		return evRows.Err()
	})
	if err != nil {
		return nil, coretypes.NewSqliteError("load causal graph", err)
	}
	return edges, nil
}

// causalEdgesCTE fetches every causal edge reachable from source within
// maxDepth hops, using a recursive CTE as a storage-level fallback for
// callers that want a bounded traversal without loading the whole graph
// into internal/causal's in-memory DAG (SPEC_FULL.md §8's storage-level
// traversal hook).
func (s *Store) causalEdgesCTE(sourceID string, maxDepth int) ([]*coretypes.CausalEdge, error) {
	var edges []*coretypes.CausalEdge
	err := s.queryRead(func() error {
		rows, err := s.readDB.Query(`
			WITH RECURSIVE reachable(id, source_memory_id, target_memory_id, relation, strength, inferred, created_at, depth) AS (
				SELECT id, source_memory_id, target_memory_id, relation, strength, inferred, created_at, 1
				FROM causal_edges WHERE source_memory_id = ?
				UNION ALL
				SELECT ce.id, ce.source_memory_id, ce.target_memory_id, ce.relation, ce.strength, ce.inferred, ce.created_at, r.depth + 1
				FROM causal_edges ce
				JOIN reachable r ON ce.source_memory_id = r.target_memory_id
				WHERE r.depth < ?
			)
			SELECT id, source_memory_id, target_memory_id, relation, strength, inferred, created_at FROM reachable
		`, sourceID, maxDepth)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			e := &coretypes.CausalEdge{}
			var relation string
			if err := rows.Scan(&e.ID, &e.Source, &e.Target, &relation, &e.Strength, &e.Inferred, &e.Created); err != nil {
				return err
			}
			e.Relation = coretypes.CausalRelation(relation)
			edges = append(edges, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, coretypes.NewSqliteError("causal edges cte", err)
	}
	return edges, nil
}
