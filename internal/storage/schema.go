package storage

// SchemaVersion is the current schema version. Migrations walk from
// whatever schema_version.version is on disk up to this value; see
// migrations.go.
const SchemaVersion = 1

// CoreSchema contains every table but the FTS5 virtual table (created
// separately since it may be unavailable on exotic sqlite3 builds).
//
// Grounded on the teacher's internal/database/schema.go CoreSchema: same
// PRAGMA/IF NOT EXISTS/index style, generalized from the teacher's single
// memories table (content/source/domain columns) to the bitemporal record
// plus the causal/relationship/audit/consolidation surface spec.md §3 and
// SPEC_FULL.md §4 enumerate.
const CoreSchema = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY,
	applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- =============================================================================
-- MEMORIES: the central bitemporal record (spec.md §3).
-- =============================================================================
CREATE TABLE IF NOT EXISTS memories (
	id                 TEXT PRIMARY KEY,
	kind               TEXT NOT NULL CHECK (kind IN (
		'core','tribal','procedural','semantic','episodic','decision',
		'insight','reference','preference','code_pattern','code_constraint'
	)),
	payload_json       TEXT NOT NULL,
	search_text        TEXT NOT NULL DEFAULT '',
	content_hash       TEXT NOT NULL,
	summary            TEXT NOT NULL DEFAULT '',
	confidence         REAL NOT NULL DEFAULT 1.0 CHECK (confidence >= 0.0 AND confidence <= 1.0),
	importance         INTEGER NOT NULL DEFAULT 1,
	transaction_time   DATETIME NOT NULL,
	valid_time         DATETIME NOT NULL,
	valid_until        DATETIME,
	last_accessed      DATETIME NOT NULL,
	access_count       INTEGER NOT NULL DEFAULT 0,
	tags               TEXT NOT NULL DEFAULT '[]',
	linked_files       TEXT NOT NULL DEFAULT '[]',
	linked_functions   TEXT NOT NULL DEFAULT '[]',
	linked_patterns    TEXT NOT NULL DEFAULT '[]',
	linked_constraints TEXT NOT NULL DEFAULT '[]',
	archived           BOOLEAN NOT NULL DEFAULT 0,
	supersedes         TEXT,
	superseded_by      TEXT,
	namespace          TEXT NOT NULL DEFAULT 'default',
	source_agent       TEXT NOT NULL DEFAULT '',
	decay_score        REAL NOT NULL DEFAULT 1.0
);

CREATE INDEX IF NOT EXISTS idx_memories_kind ON memories(kind);
CREATE INDEX IF NOT EXISTS idx_memories_namespace ON memories(namespace);
CREATE INDEX IF NOT EXISTS idx_memories_archived ON memories(archived);
CREATE INDEX IF NOT EXISTS idx_memories_confidence ON memories(confidence);
CREATE INDEX IF NOT EXISTS idx_memories_importance ON memories(importance);
CREATE INDEX IF NOT EXISTS idx_memories_transaction_time ON memories(transaction_time);
CREATE INDEX IF NOT EXISTS idx_memories_valid_time ON memories(valid_time);
CREATE INDEX IF NOT EXISTS idx_memories_decay_score ON memories(decay_score);
CREATE INDEX IF NOT EXISTS idx_memories_supersedes ON memories(supersedes);

-- =============================================================================
-- MEMORY VERSIONS: append-only pre-update snapshots (spec.md §3).
-- =============================================================================
CREATE TABLE IF NOT EXISTS memory_versions (
	memory_id      TEXT NOT NULL,
	version_number INTEGER NOT NULL,
	content        TEXT NOT NULL,
	summary        TEXT NOT NULL DEFAULT '',
	confidence     REAL NOT NULL,
	changed_by     TEXT NOT NULL DEFAULT '',
	reason         TEXT NOT NULL DEFAULT '',
	timestamp      DATETIME NOT NULL,
	PRIMARY KEY (memory_id, version_number),
	FOREIGN KEY (memory_id) REFERENCES memories(id) ON DELETE CASCADE
);

-- =============================================================================
-- MEMORY RELATIONSHIPS: 14 non-causal relationship kinds (spec.md §3).
-- =============================================================================
CREATE TABLE IF NOT EXISTS memory_relationships (
	id                  TEXT PRIMARY KEY,
	source_memory_id    TEXT NOT NULL,
	target_memory_id    TEXT NOT NULL,
	kind                TEXT NOT NULL CHECK (kind IN (
		'supersedes','supports','contradicts','related','derived_from','owns',
		'affects','blocks','requires','references','learned_from',
		'assigned_to','depends_on','cross_agent'
	)),
	strength            REAL NOT NULL CHECK (strength >= 0.0 AND strength <= 1.0),
	cross_agent_source  TEXT,
	cross_agent_target  TEXT,
	cross_agent_note    TEXT,
	created_at          DATETIME NOT NULL,
	FOREIGN KEY (source_memory_id) REFERENCES memories(id) ON DELETE CASCADE,
	FOREIGN KEY (target_memory_id) REFERENCES memories(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_relationships_source ON memory_relationships(source_memory_id);
CREATE INDEX IF NOT EXISTS idx_relationships_target ON memory_relationships(target_memory_id);
CREATE INDEX IF NOT EXISTS idx_relationships_kind ON memory_relationships(kind);

-- =============================================================================
-- CAUSAL EDGES + EVIDENCE (spec.md §3): source -> target, DAG-enforced
-- in internal/causal, persisted here as the durable backing store.
-- =============================================================================
CREATE TABLE IF NOT EXISTS causal_edges (
	id               TEXT PRIMARY KEY,
	source_memory_id TEXT NOT NULL,
	target_memory_id TEXT NOT NULL,
	relation         TEXT NOT NULL CHECK (relation IN (
		'caused','enabled','prevented','contradicts','supersedes','supports',
		'derived_from','triggered_by'
	)),
	strength         REAL NOT NULL CHECK (strength >= 0.0 AND strength <= 1.0),
	inferred         BOOLEAN NOT NULL DEFAULT 0,
	created_at       DATETIME NOT NULL,
	UNIQUE (source_memory_id, target_memory_id, relation),
	FOREIGN KEY (source_memory_id) REFERENCES memories(id) ON DELETE CASCADE,
	FOREIGN KEY (target_memory_id) REFERENCES memories(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_causal_source ON causal_edges(source_memory_id);
CREATE INDEX IF NOT EXISTS idx_causal_target ON causal_edges(target_memory_id);

CREATE TABLE IF NOT EXISTS causal_evidence (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	edge_id     TEXT NOT NULL,
	description TEXT NOT NULL,
	source      TEXT NOT NULL DEFAULT '',
	timestamp   DATETIME NOT NULL,
	FOREIGN KEY (edge_id) REFERENCES causal_edges(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_causal_evidence_edge ON causal_evidence(edge_id);

-- =============================================================================
-- AUDIT LOG (spec.md §3): append-only, rotated monthly by retention.
-- =============================================================================
CREATE TABLE IF NOT EXISTS audit_log (
	id         TEXT PRIMARY KEY,
	memory_id  TEXT NOT NULL,
	operation  TEXT NOT NULL CHECK (operation IN ('create','update','archive','supersede','delete')),
	details    TEXT NOT NULL DEFAULT '',
	actor      TEXT NOT NULL DEFAULT '',
	timestamp  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_memory ON audit_log(memory_id);
CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_log(timestamp);

-- =============================================================================
-- CONSOLIDATION METRICS (spec.md §4.4 quality metrics, one row per run).
-- =============================================================================
CREATE TABLE IF NOT EXISTS consolidation_metrics (
	id                  TEXT PRIMARY KEY,
	run_at              DATETIME NOT NULL,
	precision_score     REAL NOT NULL DEFAULT 0,
	compression_ratio   REAL NOT NULL DEFAULT 0,
	lift                REAL NOT NULL DEFAULT 0,
	stability           REAL NOT NULL DEFAULT 0,
	memories_selected   INTEGER NOT NULL DEFAULT 0,
	clusters_formed     INTEGER NOT NULL DEFAULT 0,
	memories_abstracted INTEGER NOT NULL DEFAULT 0,
	memories_pruned     INTEGER NOT NULL DEFAULT 0
);

-- =============================================================================
-- DEGRADATION LOG (spec.md §7): non-failure fallbacks, health-surfaced.
-- =============================================================================
CREATE TABLE IF NOT EXISTS degradation_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	component   TEXT NOT NULL,
	reason      TEXT NOT NULL,
	occurred_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_degradation_occurred ON degradation_log(occurred_at);

-- =============================================================================
-- VALIDATION HISTORY (spec.md §4.6 four-dimension scoring, one row per pass).
-- =============================================================================
CREATE TABLE IF NOT EXISTS validation_history (
	id                      TEXT PRIMARY KEY,
	memory_id               TEXT NOT NULL,
	citation_score          REAL NOT NULL DEFAULT 0,
	temporal_score          REAL NOT NULL DEFAULT 0,
	contradiction_score     REAL NOT NULL DEFAULT 0,
	pattern_alignment_score REAL NOT NULL DEFAULT 0,
	overall_score           REAL NOT NULL DEFAULT 0,
	checked_at              DATETIME NOT NULL,
	FOREIGN KEY (memory_id) REFERENCES memories(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_validation_memory ON validation_history(memory_id);

-- =============================================================================
-- CONTRADICTIONS (spec.md §4.6 detection results).
-- =============================================================================
CREATE TABLE IF NOT EXISTS contradictions (
	id           TEXT PRIMARY KEY,
	memory_id_a  TEXT NOT NULL,
	memory_id_b  TEXT NOT NULL,
	strategy     TEXT NOT NULL,
	detail       TEXT NOT NULL DEFAULT '',
	resolved     BOOLEAN NOT NULL DEFAULT 0,
	detected_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contradictions_a ON contradictions(memory_id_a);
CREATE INDEX IF NOT EXISTS idx_contradictions_b ON contradictions(memory_id_b);

-- =============================================================================
-- DRIFT SNAPSHOTS: point-in-time consolidation/decay posture per namespace.
-- =============================================================================
CREATE TABLE IF NOT EXISTS drift_snapshots (
	id            TEXT PRIMARY KEY,
	namespace     TEXT NOT NULL,
	snapshot_at   DATETIME NOT NULL,
	summary       TEXT NOT NULL DEFAULT '',
	metrics_json  TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_drift_namespace ON drift_snapshots(namespace);

-- =============================================================================
-- TEMPORAL EVENTS: bitemporal lifecycle transitions, for replay/audit.
-- =============================================================================
CREATE TABLE IF NOT EXISTS temporal_events (
	id          TEXT PRIMARY KEY,
	memory_id   TEXT NOT NULL,
	event_type  TEXT NOT NULL,
	occurred_at DATETIME NOT NULL,
	detail      TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_temporal_events_memory ON temporal_events(memory_id);

-- =============================================================================
-- MATERIALIZED VIEWS: precomputed aggregates (e.g. per-namespace stats).
-- =============================================================================
CREATE TABLE IF NOT EXISTS materialized_views (
	name          TEXT PRIMARY KEY,
	refreshed_at  DATETIME NOT NULL,
	payload_json  TEXT NOT NULL
);

-- =============================================================================
-- DELTA QUEUE (spec.md §4.7 concurrency substrate): per-field deltas
-- awaiting application by the concurrency engine.
-- =============================================================================
CREATE TABLE IF NOT EXISTS delta_queue (
	id         TEXT PRIMARY KEY,
	memory_id  TEXT NOT NULL,
	field      TEXT NOT NULL,
	delta_json TEXT NOT NULL,
	applied    BOOLEAN NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	applied_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_delta_queue_memory ON delta_queue(memory_id);
CREATE INDEX IF NOT EXISTS idx_delta_queue_applied ON delta_queue(applied);

-- =============================================================================
-- AGENT REGISTRY + TRUST SCORES: multi-agent provenance and confidence
-- propagation weighting (spec.md §4.6, §4.7).
-- =============================================================================
CREATE TABLE IF NOT EXISTS agent_registry (
	agent_id    TEXT PRIMARY KEY,
	namespace   TEXT NOT NULL DEFAULT 'default',
	agent_type  TEXT NOT NULL DEFAULT 'unknown',
	first_seen  DATETIME NOT NULL,
	last_seen   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS trust_scores (
	agent_id   TEXT PRIMARY KEY,
	score      REAL NOT NULL DEFAULT 0.5 CHECK (score >= 0.0 AND score <= 1.0),
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (agent_id) REFERENCES agent_registry(agent_id) ON DELETE CASCADE
);

-- =============================================================================
-- EMBEDDINGS: one row per memory, vector stored as little-endian float32
-- BLOB; cosine similarity is computed in Go (search.go), per the Non-goal
-- against on-disk file format innovation (no native vector index).
-- =============================================================================
CREATE TABLE IF NOT EXISTS embeddings (
	memory_id  TEXT PRIMARY KEY,
	model      TEXT NOT NULL,
	dimensions INTEGER NOT NULL,
	vector     BLOB NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (memory_id) REFERENCES memories(id) ON DELETE CASCADE
);
`

// FTS5Schema mirrors the teacher's standalone (own-content) FTS5 table and
// its AFTER INSERT/DELETE/UPDATE sync trigger trio, scoped to the new
// memories columns (search_text replaces the teacher's single content
// column, since payload is now a typed union rather than one text field).
const FTS5Schema = `
CREATE VIRTUAL TABLE IF NOT EXISTS memories_fts USING fts5(
	id UNINDEXED,
	search_text,
	summary,
	tags,
	namespace UNINDEXED
);

CREATE TRIGGER IF NOT EXISTS memories_fts_insert AFTER INSERT ON memories BEGIN
	INSERT INTO memories_fts(id, search_text, summary, tags, namespace)
	VALUES (new.id, new.search_text, new.summary, new.tags, new.namespace);
END;

CREATE TRIGGER IF NOT EXISTS memories_fts_delete AFTER DELETE ON memories BEGIN
	DELETE FROM memories_fts WHERE id = old.id;
END;

CREATE TRIGGER IF NOT EXISTS memories_fts_update AFTER UPDATE ON memories BEGIN
	UPDATE memories_fts SET
		search_text = new.search_text,
		summary = new.summary,
		tags = new.tags,
		namespace = new.namespace
	WHERE id = old.id;
END;
`
