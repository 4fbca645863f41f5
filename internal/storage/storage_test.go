package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mattepiu/cortex/internal/coretypes"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(Options{Path: path})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTextMemory(kind coretypes.Kind, text string) *coretypes.Memory {
	return &coretypes.Memory{
		Kind:       kind,
		Payload:    coretypes.NewTextPayload(kind, text, nil),
		Summary:    text,
		Confidence: 0.9,
		Importance: coretypes.ImportanceNormal,
		Namespace:  "default",
		SourceAgent: "test-agent",
	}
}

func TestOpenClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cortex.db")
	s, err := Open(Options{Path: path})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestInitSchema(t *testing.T) {
	s := newTestStore(t)

	version, err := s.GetSchemaVersion()
	if err != nil {
		t.Fatalf("get schema version: %v", err)
	}
	if version != SchemaVersion {
		t.Errorf("expected schema version %d, got %d", SchemaVersion, version)
	}

	tables := []string{
		"memories", "memory_versions", "memory_relationships",
		"causal_edges", "causal_evidence", "audit_log",
		"consolidation_metrics", "degradation_log", "validation_history",
		"contradictions", "drift_snapshots", "temporal_events",
		"materialized_views", "delta_queue", "agent_registry",
		"trust_scores", "embeddings",
	}
	for _, table := range tables {
		var name string
		err := s.writeDB.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s should exist: %v", table, err)
		}
	}
}

func TestMemoryCRUD(t *testing.T) {
	s := newTestStore(t)

	t.Run("Create", func(t *testing.T) {
		m := newTextMemory(coretypes.KindSemantic, "the build pipeline runs on self-hosted runners")
		if err := s.Create(m); err != nil {
			t.Fatalf("create: %v", err)
		}
		if m.ID == "" {
			t.Error("id should be generated")
		}
		if m.ContentHash == "" {
			t.Error("content hash should be computed")
		}
	})

	t.Run("DuplicateID", func(t *testing.T) {
		m := newTextMemory(coretypes.KindCore, "duplicate")
		if err := s.Create(m); err != nil {
			t.Fatalf("create: %v", err)
		}
		dup := newTextMemory(coretypes.KindCore, "duplicate again")
		dup.ID = m.ID
		err := s.Create(dup)
		if err == nil {
			t.Fatal("expected duplicate id error")
		}
		var storageErr *coretypes.StorageError
		if !asStorageErr(err, &storageErr) || storageErr.Code != coretypes.CodeDuplicateID {
			t.Errorf("expected CodeDuplicateID, got %v", err)
		}
	})

	t.Run("Get", func(t *testing.T) {
		m := newTextMemory(coretypes.KindDecision, "chose sqlite over postgres for single-node deployment")
		if err := s.Create(m); err != nil {
			t.Fatalf("create: %v", err)
		}

		got, err := s.Get(m.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got == nil {
			t.Fatal("expected a memory, got nil")
		}
		if got.Summary != m.Summary {
			t.Errorf("summary mismatch: got %q want %q", got.Summary, m.Summary)
		}
		tp, ok := got.Payload.(*coretypes.TextPayload)
		if !ok {
			t.Fatalf("expected *TextPayload, got %T", got.Payload)
		}
		if tp.Text != "chose sqlite over postgres for single-node deployment" {
			t.Errorf("payload text mismatch: %q", tp.Text)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		got, err := s.Get("does-not-exist")
		if err != nil {
			t.Fatalf("get missing: %v", err)
		}
		if got != nil {
			t.Error("expected nil for missing id")
		}
	})

	t.Run("Update", func(t *testing.T) {
		m := newTextMemory(coretypes.KindInsight, "original summary")
		if err := s.Create(m); err != nil {
			t.Fatalf("create: %v", err)
		}

		newSummary := "revised summary"
		newConfidence := 0.42
		err := s.Update(m.ID, &MemoryUpdate{Summary: &newSummary, Confidence: &newConfidence, ChangedBy: "test-agent", Reason: "correction"})
		if err != nil {
			t.Fatalf("update: %v", err)
		}

		got, err := s.Get(m.ID)
		if err != nil {
			t.Fatalf("get after update: %v", err)
		}
		if got.Summary != newSummary {
			t.Errorf("summary not updated: got %q", got.Summary)
		}
		if got.Confidence != newConfidence {
			t.Errorf("confidence not updated: got %v", got.Confidence)
		}

		versions, err := s.VersionHistory(m.ID)
		if err != nil {
			t.Fatalf("version history: %v", err)
		}
		if len(versions) != 1 {
			t.Fatalf("expected 1 version snapshot, got %d", len(versions))
		}
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		err := s.Update("does-not-exist", &MemoryUpdate{})
		if err == nil {
			t.Fatal("expected not-found error")
		}
	})

	t.Run("Archive", func(t *testing.T) {
		m := newTextMemory(coretypes.KindTribal, "to be archived")
		if err := s.Create(m); err != nil {
			t.Fatalf("create: %v", err)
		}
		if err := s.Archive(m.ID, "test-agent", "stale"); err != nil {
			t.Fatalf("archive: %v", err)
		}

		got, err := s.Get(m.ID)
		if err != nil {
			t.Fatalf("get after archive: %v", err)
		}
		if !got.Archived {
			t.Error("expected archived=true")
		}
	})

	t.Run("Supersede", func(t *testing.T) {
		old := newTextMemory(coretypes.KindProcedural, "old procedure")
		if err := s.Create(old); err != nil {
			t.Fatalf("create old: %v", err)
		}
		replacement := newTextMemory(coretypes.KindProcedural, "new procedure")
		if err := s.Supersede(old.ID, replacement); err != nil {
			t.Fatalf("supersede: %v", err)
		}

		gotOld, err := s.Get(old.ID)
		if err != nil {
			t.Fatalf("get old: %v", err)
		}
		if !gotOld.Archived {
			t.Error("old memory should be archived")
		}
		if gotOld.SupersededBy == nil || *gotOld.SupersededBy != replacement.ID {
			t.Error("old memory should point to replacement")
		}

		gotNew, err := s.Get(replacement.ID)
		if err != nil {
			t.Fatalf("get replacement: %v", err)
		}
		if gotNew.Supersedes == nil || *gotNew.Supersedes != old.ID {
			t.Error("replacement should point back to old")
		}
	})

	t.Run("CreateBulk", func(t *testing.T) {
		batch := []*coretypes.Memory{
			newTextMemory(coretypes.KindEpisodic, "event one"),
			newTextMemory(coretypes.KindEpisodic, "event two"),
			newTextMemory(coretypes.KindEpisodic, "event three"),
		}
		if err := s.CreateBulk(batch); err != nil {
			t.Fatalf("create bulk: %v", err)
		}
		for _, m := range batch {
			got, err := s.Get(m.ID)
			if err != nil || got == nil {
				t.Fatalf("expected bulk-created memory %s to exist", m.ID)
			}
		}
	})
}

func TestGetBulk(t *testing.T) {
	s := newTestStore(t)

	a := newTextMemory(coretypes.KindReference, "a")
	b := newTextMemory(coretypes.KindReference, "b")
	if err := s.Create(a); err != nil {
		t.Fatalf("create a: %v", err)
	}
	if err := s.Create(b); err != nil {
		t.Fatalf("create b: %v", err)
	}

	got, err := s.GetBulk([]string{a.ID, b.ID, "missing-id"})
	if err != nil {
		t.Fatalf("get bulk: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 results (missing id skipped), got %d", len(got))
	}
}

func TestQueryBy(t *testing.T) {
	s := newTestStore(t)

	high := newTextMemory(coretypes.KindPreference, "important preference")
	high.Importance = coretypes.ImportanceHigh
	if err := s.Create(high); err != nil {
		t.Fatalf("create: %v", err)
	}

	low := newTextMemory(coretypes.KindPreference, "minor preference")
	low.Importance = coretypes.ImportanceLow
	if err := s.Create(low); err != nil {
		t.Fatalf("create: %v", err)
	}

	min := coretypes.ImportanceHigh
	results, err := s.QueryBy(QueryFilters{Kind: coretypes.KindPreference, MinImportance: &min})
	if err != nil {
		t.Fatalf("query by: %v", err)
	}
	if len(results) != 1 || results[0].ID != high.ID {
		t.Errorf("expected only the high-importance memory, got %d results", len(results))
	}
}

func TestSearchFTS(t *testing.T) {
	s := newTestStore(t)

	m := newTextMemory(coretypes.KindSemantic, "retries use exponential backoff with jitter")
	if err := s.Create(m); err != nil {
		t.Fatalf("create: %v", err)
	}

	hits, err := s.SearchFTS("backoff", "", 10)
	if err != nil {
		t.Fatalf("search fts: %v", err)
	}
	found := false
	for _, h := range hits {
		if h.MemoryID == m.ID {
			found = true
		}
	}
	if !found {
		t.Error("expected fts match for 'backoff'")
	}
}

func TestEmbeddingRoundTrip(t *testing.T) {
	s := newTestStore(t)

	m := newTextMemory(coretypes.KindSemantic, "vector storage test")
	if err := s.Create(m); err != nil {
		t.Fatalf("create: %v", err)
	}

	vec := []float32{0.1, 0.2, 0.3, 0.4}
	if err := s.PutEmbedding(m.ID, "test-model", vec); err != nil {
		t.Fatalf("put embedding: %v", err)
	}

	got, err := s.GetEmbedding(m.ID)
	if err != nil {
		t.Fatalf("get embedding: %v", err)
	}
	if len(got) != len(vec) {
		t.Fatalf("expected %d dims, got %d", len(vec), len(got))
	}
	for i := range vec {
		if got[i] != vec[i] {
			t.Errorf("dim %d: got %v want %v", i, got[i], vec[i])
		}
	}
}

func TestSearchVector(t *testing.T) {
	s := newTestStore(t)

	a := newTextMemory(coretypes.KindSemantic, "a")
	b := newTextMemory(coretypes.KindSemantic, "b")
	if err := s.Create(a); err != nil {
		t.Fatalf("create a: %v", err)
	}
	if err := s.Create(b); err != nil {
		t.Fatalf("create b: %v", err)
	}

	if err := s.PutEmbedding(a.ID, "m", []float32{1, 0, 0}); err != nil {
		t.Fatalf("put embedding a: %v", err)
	}
	if err := s.PutEmbedding(b.ID, "m", []float32{0, 1, 0}); err != nil {
		t.Fatalf("put embedding b: %v", err)
	}

	hits, err := s.SearchVector([]float32{1, 0, 0}, "", 10)
	if err != nil {
		t.Fatalf("search vector: %v", err)
	}
	if len(hits) == 0 || hits[0].MemoryID != a.ID {
		t.Errorf("expected a to rank first, got %+v", hits)
	}
}

func TestRelationships(t *testing.T) {
	s := newTestStore(t)

	a := newTextMemory(coretypes.KindDecision, "decision a")
	b := newTextMemory(coretypes.KindDecision, "decision b")
	if err := s.Create(a); err != nil {
		t.Fatalf("create a: %v", err)
	}
	if err := s.Create(b); err != nil {
		t.Fatalf("create b: %v", err)
	}

	edge := &coretypes.RelationshipEdge{Source: a.ID, Target: b.ID, Kind: coretypes.RelSupports, Strength: 0.8}
	if err := s.AddRelationship(edge); err != nil {
		t.Fatalf("add relationship: %v", err)
	}

	rels, err := s.GetRelationships(a.ID)
	if err != nil {
		t.Fatalf("get relationships: %v", err)
	}
	if len(rels) != 1 || rels[0].Kind != coretypes.RelSupports {
		t.Errorf("expected 1 supports relationship, got %+v", rels)
	}
}

func TestCausalEdges(t *testing.T) {
	s := newTestStore(t)

	a := newTextMemory(coretypes.KindEpisodic, "deploy failed")
	b := newTextMemory(coretypes.KindInsight, "rollback fixed it")
	if err := s.Create(a); err != nil {
		t.Fatalf("create a: %v", err)
	}
	if err := s.Create(b); err != nil {
		t.Fatalf("create b: %v", err)
	}

	edge := &coretypes.CausalEdge{
		Source: a.ID, Target: b.ID, Relation: coretypes.RelationCaused, Strength: 0.7,
		Evidence: []coretypes.Evidence{{Description: "observed in incident log", Source: "oncall", Timestamp: time.Now()}},
	}
	if err := s.AddCausalEdge(edge); err != nil {
		t.Fatalf("add causal edge: %v", err)
	}

	edges, err := s.LoadCausalGraph()
	if err != nil {
		t.Fatalf("load causal graph: %v", err)
	}
	if len(edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(edges))
	}
	if len(edges[0].Evidence) != 1 {
		t.Errorf("expected 1 evidence row, got %d", len(edges[0].Evidence))
	}
}

func TestAuditTrail(t *testing.T) {
	s := newTestStore(t)

	m := newTextMemory(coretypes.KindCore, "audited memory")
	if err := s.Create(m); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Archive(m.ID, "test-agent", "done"); err != nil {
		t.Fatalf("archive: %v", err)
	}

	trail, err := s.AuditTrail(m.ID)
	if err != nil {
		t.Fatalf("audit trail: %v", err)
	}
	if len(trail) != 2 {
		t.Fatalf("expected create+archive audit rows, got %d", len(trail))
	}
	if trail[0].Operation != coretypes.AuditCreate || trail[1].Operation != coretypes.AuditArchive {
		t.Errorf("unexpected audit operations: %+v", trail)
	}
}

func TestRunRetention(t *testing.T) {
	s := newTestStore(t)

	m := newTextMemory(coretypes.KindCore, "old archived low confidence")
	m.Confidence = 0.01
	if err := s.Create(m); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Archive(m.ID, "test-agent", "expired"); err != nil {
		t.Fatalf("archive: %v", err)
	}

	tx, unlock, err := s.beginWrite()
	if err != nil {
		t.Fatalf("begin write: %v", err)
	}
	old := time.Now().Add(-200 * 24 * time.Hour)
	if _, err := tx.Exec(`UPDATE memories SET last_accessed = ? WHERE id = ?`, old, m.ID); err != nil {
		t.Fatalf("backdate: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit backdate: %v", err)
	}
	unlock()

	report, err := s.RunRetention(DefaultRetentionPolicy())
	if err != nil {
		t.Fatalf("run retention: %v", err)
	}
	if report.MemoriesPhysicallyDeleted != 1 {
		t.Errorf("expected 1 physically deleted memory, got %d", report.MemoriesPhysicallyDeleted)
	}

	got, err := s.Get(m.ID)
	if err != nil {
		t.Fatalf("get after retention: %v", err)
	}
	if got != nil {
		t.Error("expected memory to be physically deleted")
	}
}

func TestTrustScore(t *testing.T) {
	s := newTestStore(t)

	if err := s.RegisterAgent("agent-1", "default", "cli"); err != nil {
		t.Fatalf("register agent: %v", err)
	}

	neutral, err := s.TrustScore("agent-2")
	if err != nil {
		t.Fatalf("trust score for unregistered agent: %v", err)
	}
	if neutral != 0.5 {
		t.Errorf("expected neutral default 0.5, got %v", neutral)
	}

	if err := s.SetTrustScore("agent-1", 0.9); err != nil {
		t.Fatalf("set trust score: %v", err)
	}
	got, err := s.TrustScore("agent-1")
	if err != nil {
		t.Fatalf("trust score: %v", err)
	}
	if got != 0.9 {
		t.Errorf("expected 0.9, got %v", got)
	}
}

func TestHealth(t *testing.T) {
	s := newTestStore(t)
	h := s.Health()
	if h.Status != coretypes.HealthOK {
		t.Errorf("expected healthy store, got %v: %s", h.Status, h.Detail)
	}
}

func TestGetStats(t *testing.T) {
	s := newTestStore(t)

	m := newTextMemory(coretypes.KindCore, "stats test")
	if err := s.Create(m); err != nil {
		t.Fatalf("create: %v", err)
	}

	stats, err := s.GetStats()
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if stats.MemoryCount != 1 {
		t.Errorf("expected 1 memory, got %d", stats.MemoryCount)
	}
	if stats.SchemaVersion != SchemaVersion {
		t.Errorf("expected schema version %d, got %d", SchemaVersion, stats.SchemaVersion)
	}
}

func asStorageErr(err error, target **coretypes.StorageError) bool {
	se, ok := err.(*coretypes.StorageError)
	if !ok {
		return false
	}
	*target = se
	return true
}
