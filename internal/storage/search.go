package storage

import (
	"encoding/binary"
	"math"

	"github.com/mattepiu/cortex/internal/coretypes"
)

// LexicalHit is one FTS5 match with its bm25 rank (lower is better, per
// sqlite's bm25() convention) prior to the retrieval pipeline's own
// scoring pass.
type LexicalHit struct {
	MemoryID string
	Rank     float64
}

// SearchFTS runs a lexical query against the memories_fts virtual table,
// scoped to non-archived rows, ordered by bm25. Grounded on the teacher's
// FTS5 MATCH query in internal/search, retargeted to the search_text
// column and extended with a namespace filter.
//
// FTS5 may be absent on exotic sqlite3 builds; callers should treat a
// CodeSqliteError here as a retrieval-engine degradation signal (spec.md
// §7) and fall back to a LIKE scan rather than failing the whole query.
func (s *Store) SearchFTS(query, namespace string, limit int) ([]LexicalHit, error) {
	if limit <= 0 {
		limit = 50
	}

	var hits []LexicalHit
	err := s.queryRead(func() error {
		rows, err := s.readDB.Query(`
			SELECT m.id, bm25(memories_fts) AS rank
			FROM memories_fts
			JOIN memories m ON m.id = memories_fts.id
			WHERE memories_fts MATCH ?
			  AND m.archived = 0
			  AND (? = '' OR m.namespace = ?)
			ORDER BY rank
			LIMIT ?
		`, query, namespace, namespace, limit)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var h LexicalHit
			if err := rows.Scan(&h.MemoryID, &h.Rank); err != nil {
				return err
			}
			hits = append(hits, h)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, coretypes.NewSqliteError("search fts", err)
	}
	return hits, nil
}

// SearchLike is the FTS5-unavailable fallback: a plain substring scan
// over search_text/summary/tags. Slower and recall-limited, but keeps
// the retrieval pipeline degraded rather than down (spec.md §7).
func (s *Store) SearchLike(query, namespace string, limit int) ([]LexicalHit, error) {
	if limit <= 0 {
		limit = 50
	}
	pattern := "%" + query + "%"

	var hits []LexicalHit
	err := s.queryRead(func() error {
		rows, err := s.readDB.Query(`
			SELECT id, 0.0 FROM memories
			WHERE archived = 0
			  AND (? = '' OR namespace = ?)
			  AND (search_text LIKE ? OR summary LIKE ? OR tags LIKE ?)
			LIMIT ?
		`, namespace, namespace, pattern, pattern, pattern, limit)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var h LexicalHit
			if err := rows.Scan(&h.MemoryID, &h.Rank); err != nil {
				return err
			}
			hits = append(hits, h)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, coretypes.NewSqliteError("search like", err)
	}
	return hits, nil
}

// VectorHit is one cosine-similarity match (higher is better).
type VectorHit struct {
	MemoryID   string
	Similarity float64
}

// PutEmbedding stores or replaces the embedding vector for a memory.
// vector is encoded little-endian float32, matching encodeVector/
// decodeVector below (spec.md's Non-goal against a native vector index:
// embeddings stay plain BLOB columns, scored in Go).
func (s *Store) PutEmbedding(memoryID, model string, vector []float32) error {
	tx, unlock, err := s.beginWrite()
	if err != nil {
		return err
	}
	defer unlock()
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO embeddings (memory_id, model, dimensions, vector, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(memory_id) DO UPDATE SET
			model = excluded.model, dimensions = excluded.dimensions,
			vector = excluded.vector, updated_at = excluded.updated_at
	`, memoryID, model, len(vector), encodeVector(vector), s.clock.Now())
	if err != nil {
		return coretypes.NewSqliteError("put embedding", err)
	}
	return tx.Commit()
}

// GetEmbedding returns a memory's stored vector, or (nil, nil) if absent.
func (s *Store) GetEmbedding(memoryID string) ([]float32, error) {
	var vec []float32
	err := s.queryRead(func() error {
		var raw []byte
		row := s.readDB.QueryRow(`SELECT vector FROM embeddings WHERE memory_id = ?`, memoryID)
		if err := row.Scan(&raw); err != nil {
			if err.Error() == "sql: no rows in result set" {
				return nil
			}
			return err
		}
		vec = decodeVector(raw)
		return nil
	})
	if err != nil {
		return nil, coretypes.NewSqliteError("get embedding", err)
	}
	return vec, nil
}

// SearchVector performs a brute-force cosine-similarity scan over every
// embedding in namespace (or every namespace if empty), returning the
// top-k by descending similarity. spec.md explicitly scopes retrieval to
// corpora small enough for this to be the right tradeoff over standing
// up a dedicated vector index (Non-goal: "no native vector index").
func (s *Store) SearchVector(query []float32, namespace string, topK int) ([]VectorHit, error) {
	if topK <= 0 {
		topK = 50
	}

	var hits []VectorHit
	err := s.queryRead(func() error {
		rows, err := s.readDB.Query(`
			SELECT e.memory_id, e.vector
			FROM embeddings e
			JOIN memories m ON m.id = e.memory_id
			WHERE m.archived = 0 AND (? = '' OR m.namespace = ?)
		`, namespace, namespace)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var id string
			var raw []byte
			if err := rows.Scan(&id, &raw); err != nil {
				return err
			}
			vec := decodeVector(raw)
			sim := cosineSimilarity(query, vec)
			hits = append(hits, VectorHit{MemoryID: id, Similarity: sim})
		}
		return rows.Err()
	})
	if err != nil {
		return nil, coretypes.NewSqliteError("search vector", err)
	}

	sortVectorHitsDesc(hits)
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func sortVectorHitsDesc(hits []VectorHit) {
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].Similarity > hits[j-1].Similarity; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(raw []byte) []float32 {
	n := len(raw) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// FullTextStats reports the corpus size FTS5 is indexing, for health
// checks (spec.md §7 wants retrieval degradation observable).
func (s *Store) FullTextStats() (int64, error) {
	var count int64
	err := s.queryRead(func() error {
		return s.readDB.QueryRow(`SELECT COUNT(*) FROM memories_fts`).Scan(&count)
	})
	if err != nil {
		return 0, coretypes.NewSqliteError("fts stats", err)
	}
	return count, nil
}
