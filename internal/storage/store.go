package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mattepiu/cortex/internal/coretypes"
	"github.com/mattepiu/cortex/internal/logging"
)

var log = logging.GetLogger("storage")

// Options configures Open. Mirrors spec.md §6's "Storage" config group
// (db_path, wal_mode, mmap_size, cache_size, busy_timeout_ms,
// read_pool_size) so callers can pass pkg/config.DatabaseConfig verbatim.
type Options struct {
	Path          string
	WALMode       bool
	MmapSizeBytes int64
	CacheSizeKB   int
	BusyTimeoutMs int
	ReadPoolSize  int
	Clock         coretypes.Clock
}

// Store is the bitemporal record store: one mutex-guarded write
// connection plus a round-robin pool of read-only connections, per
// spec.md §4.1's concurrency model. Grounded on the teacher's Database
// struct (single *sql.DB, sync.RWMutex), split into two pools here
// because spec.md asks for read concurrency the teacher's one-connection
// design didn't provide.
type Store struct {
	writeDB *sql.DB
	readDB  *sql.DB
	path    string
	clock   coretypes.Clock
	writeMu sync.Mutex
}

// Open opens (creating if absent) the database at opts.Path, applies
// pragmas, and initializes the schema if it is not already present.
func Open(opts Options) (*Store, error) {
	if opts.ReadPoolSize <= 0 {
		opts.ReadPoolSize = 4
	}
	if opts.BusyTimeoutMs <= 0 {
		opts.BusyTimeoutMs = 5000
	}
	if opts.Clock == nil {
		opts.Clock = coretypes.SystemClock{}
	}

	log.Info("opening storage", "path", opts.Path)

	dir := filepath.Dir(opts.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, coretypes.NewSqliteError("create database directory", err)
	}

	writeDSN := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL&_txlock=immediate",
		opts.Path, opts.BusyTimeoutMs)
	writeDB, err := sql.Open("sqlite3", writeDSN)
	if err != nil {
		return nil, coretypes.NewSqliteError("open write connection", err)
	}
	writeDB.SetMaxOpenConns(1)
	writeDB.SetMaxIdleConns(1)
	writeDB.SetConnMaxLifetime(time.Hour)

	if err := writeDB.Ping(); err != nil {
		writeDB.Close()
		return nil, coretypes.NewSqliteError("ping write connection", err)
	}

	if err := applyPragmas(writeDB, opts); err != nil {
		writeDB.Close()
		return nil, err
	}

	readDSN := fmt.Sprintf("file:%s?mode=ro&_journal_mode=WAL&_busy_timeout=%d", opts.Path, opts.BusyTimeoutMs)
	readDB, err := sql.Open("sqlite3", readDSN)
	if err != nil {
		writeDB.Close()
		return nil, coretypes.NewSqliteError("open read pool", err)
	}
	readDB.SetMaxOpenConns(opts.ReadPoolSize)
	readDB.SetMaxIdleConns(opts.ReadPoolSize)
	readDB.SetConnMaxLifetime(time.Hour)

	s := &Store{
		writeDB: writeDB,
		readDB:  readDB,
		path:    opts.Path,
		clock:   opts.Clock,
	}

	if err := s.initSchema(); err != nil {
		s.Close()
		return nil, err
	}
	if err := s.RunMigrations(); err != nil {
		s.Close()
		return nil, err
	}

	log.Info("storage ready", "path", opts.Path, "schema_version", SchemaVersion)
	return s, nil
}

func applyPragmas(db *sql.DB, opts Options) error {
	pragmas := []string{
		fmt.Sprintf("PRAGMA mmap_size = %d", defaultInt64(opts.MmapSizeBytes, 268435456)),
		fmt.Sprintf("PRAGMA cache_size = %d", defaultInt(opts.CacheSizeKB, -64000)),
		"PRAGMA auto_vacuum = INCREMENTAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return coretypes.NewSqliteError(fmt.Sprintf("apply pragma %q", p), err)
		}
	}
	return nil
}

func defaultInt64(v, fallback int64) int64 {
	if v == 0 {
		return fallback
	}
	return v
}

func defaultInt(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}

// initSchema creates every table if the memories table does not yet
// exist. Grounded on the teacher's Database.InitSchema (check-then-create
// inside one transaction; FTS5 failure is logged, not fatal).
func (s *Store) initSchema() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var name string
	err := s.writeDB.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='memories' LIMIT 1`).Scan(&name)
	if err == nil && name != "" {
		log.Debug("schema already initialized")
		return nil
	}

	tx, err := s.writeDB.Begin()
	if err != nil {
		return coretypes.NewSqliteError("begin schema init", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(CoreSchema); err != nil {
		return coretypes.NewSqliteError("create core schema", err)
	}
	if _, err := tx.Exec(FTS5Schema); err != nil {
		log.Warn("fts5 schema creation failed, continuing without full-text search", "error", err)
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO schema_version (version, applied_at) VALUES (?, CURRENT_TIMESTAMP)`, SchemaVersion); err != nil {
		return coretypes.NewSqliteError("record schema version", err)
	}

	if err := tx.Commit(); err != nil {
		return coretypes.NewSqliteError("commit schema init", err)
	}
	return nil
}

// Close closes both connection pools.
func (s *Store) Close() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var firstErr error
	if s.readDB != nil {
		if err := s.readDB.Close(); err != nil {
			firstErr = err
		}
	}
	if s.writeDB != nil {
		if err := s.writeDB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// beginWrite starts a write transaction, acquired under the write mutex
// so concurrent callers serialize at the Go level too (belt-and-suspenders
// alongside SetMaxOpenConns(1)). The DSN's _txlock=immediate makes every
// db.Begin() acquire an IMMEDIATE-mode transaction at BEGIN, per spec.md
// §4.1: "acquired at BEGIN to avoid contention retries."
func (s *Store) beginWrite() (*sql.Tx, func(), error) {
	s.writeMu.Lock()
	unlock := func() { s.writeMu.Unlock() }

	tx, err := s.writeDB.Begin()
	if err != nil {
		unlock()
		return nil, nil, coretypes.NewSqliteError("begin write transaction", err)
	}
	return tx, unlock, nil
}

// queryRead runs fn against the read pool, retrying SQLITE_BUSY with
// cenkalti/backoff since read-only queries are always safe to retry
// (spec.md §7: "Retries are applied only where they are side-effect
// safe (read-only SQLite busy errors)").
func (s *Store) queryRead(fn func() error) error {
	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)
	return backoff.Retry(func() error {
		err := fn()
		if err != nil && isBusyErr(err) {
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}, policy)
}

func isBusyErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return contains(msg, "database is locked") || contains(msg, "SQLITE_BUSY")
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && indexOf(s, substr) >= 0
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}

// Vacuum runs a full VACUUM. Callers should prefer IncrementalVacuum for
// the routine weekly pass (spec.md §4.1: "weekly incremental, quarterly
// full only when fragmentation > 30%").
func (s *Store) Vacuum() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err := s.writeDB.Exec("VACUUM")
	if err != nil {
		return coretypes.NewSqliteError("vacuum", err)
	}
	return nil
}

// IncrementalVacuum reclaims pages via the incremental auto-vacuum
// machinery instead of rewriting the whole file.
func (s *Store) IncrementalVacuum(pages int) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err := s.writeDB.Exec(fmt.Sprintf("PRAGMA incremental_vacuum(%d)", pages))
	if err != nil {
		return coretypes.NewSqliteError("incremental vacuum", err)
	}
	return nil
}

// Checkpoint forces a WAL checkpoint, truncating the WAL file.
func (s *Store) Checkpoint() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err := s.writeDB.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	if err != nil {
		return coretypes.NewSqliteError("checkpoint", err)
	}
	return nil
}

// Backup copies the live database to destPath using sqlite's online
// backup mechanism (VACUUM INTO, which the bundled mattn/go-sqlite3
// driver supports and which is safe to run against a live WAL database).
func (s *Store) Backup(destPath string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err := s.writeDB.Exec("VACUUM INTO ?", destPath)
	if err != nil {
		return coretypes.NewSqliteError("backup", err)
	}
	return nil
}

// IntegrityCheck runs PRAGMA integrity_check, surfaced through
// Engine.Health() as a storage health probe.
func (s *Store) IntegrityCheck() (string, error) {
	var result string
	err := s.readDB.QueryRow("PRAGMA integrity_check").Scan(&result)
	if err != nil {
		return "", coretypes.NewSqliteError("integrity check", err)
	}
	return result, nil
}

// Health reports this store's health for Engine.Health() (spec.md §7:
// degradation events are surfaced via a health interface, not treated as
// failures).
func (s *Store) Health() coretypes.ComponentHealth {
	now := s.clock.Now()
	result, err := s.IntegrityCheck()
	if err != nil {
		return coretypes.ComponentHealth{Component: "storage", Status: coretypes.HealthDown, Detail: err.Error(), CheckedAt: now}
	}
	if result != "ok" {
		return coretypes.ComponentHealth{Component: "storage", Status: coretypes.HealthDegraded, Detail: result, CheckedAt: now}
	}
	return coretypes.ComponentHealth{Component: "storage", Status: coretypes.HealthOK, Detail: "ok", CheckedAt: now}
}

// Stats summarizes table cardinalities, used by health/diagnostics.
type Stats struct {
	Path             string
	SchemaVersion    int
	MemoryCount      int
	RelationCount    int
	CausalEdgeCount  int
	ArchivedCount    int
	FileSizeBytes    int64
}

// GetStats returns a point-in-time snapshot of store cardinalities.
func (s *Store) GetStats() (*Stats, error) {
	stats := &Stats{Path: s.path}

	_ = s.readDB.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&stats.SchemaVersion)
	_ = s.readDB.QueryRow(`SELECT COUNT(*) FROM memories`).Scan(&stats.MemoryCount)
	_ = s.readDB.QueryRow(`SELECT COUNT(*) FROM memory_relationships`).Scan(&stats.RelationCount)
	_ = s.readDB.QueryRow(`SELECT COUNT(*) FROM causal_edges`).Scan(&stats.CausalEdgeCount)
	_ = s.readDB.QueryRow(`SELECT COUNT(*) FROM memories WHERE archived = 1`).Scan(&stats.ArchivedCount)

	if info, err := os.Stat(s.path); err == nil {
		stats.FileSizeBytes = info.Size()
	}
	return stats, nil
}
