package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mattepiu/cortex/internal/coretypes"
)

// storedPayload is the on-disk envelope for coretypes.Payload: a kind tag
// plus the payload's own JSON fields, flattened into one object so the
// column stays readable in a sqlite3 CLI session (grounded on the
// teacher's plain-JSON tags column, generalized to a tagged union since
// payload is now typed rather than a single content string).
type storedPayload struct {
	Kind      coretypes.Kind    `json:"kind"`
	Text      string            `json:"text,omitempty"`
	Facts     map[string]string `json:"facts,omitempty"`
	Snippet   string            `json:"snippet,omitempty"`
	Language  string            `json:"language,omitempty"`
	Rationale string            `json:"rationale,omitempty"`
}

func encodePayload(p coretypes.Payload) (string, error) {
	var sp storedPayload
	switch v := p.(type) {
	case *coretypes.TextPayload:
		sp = storedPayload{Kind: v.PayloadKind(), Text: v.Text, Facts: v.Facts}
	case *coretypes.CodePayload:
		sp = storedPayload{Kind: v.PayloadKind(), Snippet: v.Snippet, Language: v.Language, Rationale: v.Rationale}
	default:
		return "", fmt.Errorf("storage: unsupported payload type %T", p)
	}
	b, err := json.Marshal(sp)
	if err != nil {
		return "", fmt.Errorf("storage: marshal payload: %w", err)
	}
	return string(b), nil
}

func decodePayload(raw string) (coretypes.Payload, error) {
	var sp storedPayload
	if err := json.Unmarshal([]byte(raw), &sp); err != nil {
		return nil, fmt.Errorf("storage: unmarshal payload: %w", err)
	}
	switch sp.Kind {
	case coretypes.KindCodePattern, coretypes.KindCodeConstraint:
		return coretypes.NewCodePayload(sp.Kind, sp.Snippet, sp.Language, sp.Rationale), nil
	default:
		return coretypes.NewTextPayload(sp.Kind, sp.Text, sp.Facts), nil
	}
}

// searchableText extracts the free-text surface of a payload for the FTS5
// index, since payload is now typed instead of one flat content column.
func searchableText(p coretypes.Payload) string {
	switch v := p.(type) {
	case *coretypes.TextPayload:
		return v.Text
	case *coretypes.CodePayload:
		return strings.TrimSpace(v.Snippet + " " + v.Rationale)
	default:
		return ""
	}
}

func encodeStringSet(s coretypes.StringSet) string {
	b, _ := json.Marshal(s.Slice())
	return string(b)
}

func decodeStringSet(raw string) coretypes.StringSet {
	var items []string
	if raw != "" {
		_ = json.Unmarshal([]byte(raw), &items)
	}
	return coretypes.NewStringSet(items...)
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullStr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func ptrFromNullStr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	v := n.String
	return &v
}

func ptrFromNullTime(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	v := n.Time
	return &v
}

// memoryRow is the flat column set every SELECT against memories shares.
const memoryColumns = `
	id, kind, payload_json, content_hash, summary, confidence, importance,
	transaction_time, valid_time, valid_until, last_accessed, access_count,
	tags, linked_files, linked_functions, linked_patterns, linked_constraints,
	archived, supersedes, superseded_by, namespace, source_agent, decay_score
`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMemory(row rowScanner) (*coretypes.Memory, error) {
	var (
		m                                                                      coretypes.Memory
		payloadJSON                                                            string
		importance                                                            int
		validUntil                                                            sql.NullTime
		supersedes, supersededBy                                               sql.NullString
		tags, linkedFiles, linkedFunctions, linkedPatterns, linkedConstraints string
		decayScore                                                            float64
	)

	err := row.Scan(
		&m.ID, &m.Kind, &payloadJSON, &m.ContentHash, &m.Summary, &m.Confidence, &importance,
		&m.TransactionTime, &m.ValidTime, &validUntil, &m.LastAccessed, &m.AccessCount,
		&tags, &linkedFiles, &linkedFunctions, &linkedPatterns, &linkedConstraints,
		&m.Archived, &supersedes, &supersededBy, &m.Namespace, &m.SourceAgent, &decayScore,
	)
	if err != nil {
		return nil, err
	}

	payload, err := decodePayload(payloadJSON)
	if err != nil {
		return nil, err
	}

	m.Payload = payload
	m.Importance = coretypes.Importance(importance)
	m.ValidUntil = ptrFromNullTime(validUntil)
	m.Tags = decodeStringSet(tags)
	m.LinkedFiles = decodeStringSet(linkedFiles)
	m.LinkedFunctions = decodeStringSet(linkedFunctions)
	m.LinkedPatterns = decodeStringSet(linkedPatterns)
	m.LinkedConstraints = decodeStringSet(linkedConstraints)
	m.Supersedes = ptrFromNullStr(supersedes)
	m.SupersededBy = ptrFromNullStr(supersededBy)
	_ = decayScore // exposed via QueryByConfidenceRange-style helpers, not on Memory itself

	return &m, nil
}

func scanMemories(rows *sql.Rows) ([]*coretypes.Memory, error) {
	var out []*coretypes.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
