package storage

import (
	"database/sql"
	"fmt"

	"github.com/mattepiu/cortex/internal/coretypes"
)

// migration is one numbered, idempotent schema step. Grounded on the
// teacher's MigrationV1ToV2 (ALTER-if-absent, log-and-continue on
// already-applied statements, single enclosing transaction), generalized
// from one hardcoded function into an ordered, registered list so gaps
// in the version sequence can carry an explicit no-op rather than being
// silently skipped.
type migration struct {
	Version int
	Name    string
	Apply   func(tx *sql.Tx) error
}

// migrations is the ordered, numbered migration path from schema version
// 1 (CoreSchema's baseline, applied directly by initSchema for brand-new
// databases) up to SchemaVersion. There is currently no migration beyond
// the baseline; new entries append here as the schema evolves, each
// gap-filled rather than renumbered if a planned version turns out to
// need no changes.
var migrations = []migration{}

// GetSchemaVersion reads the highest applied version, treating a missing
// schema_version table as version 0 (pre-initialization).
func (s *Store) GetSchemaVersion() (int, error) {
	var version int
	err := s.writeDB.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0, nil
	}
	return version, nil
}

// RunMigrations applies every migration whose version exceeds the
// currently-recorded schema version, in order, each in its own
// transaction, bumping schema_version after each step. A fresh database
// is created directly at SchemaVersion by initSchema, so this is a no-op
// immediately after Open on a new file; it only does work when opening a
// database written by an older build.
func (s *Store) RunMigrations() error {
	current, err := s.GetSchemaVersion()
	if err != nil {
		return coretypes.NewSqliteError("read schema version", err)
	}

	log.Info("checking migrations", "current_version", current, "target_version", SchemaVersion)

	if current >= SchemaVersion {
		log.Debug("schema is up to date")
		return nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		tx, err := s.writeDB.Begin()
		if err != nil {
			return coretypes.NewSqliteError(fmt.Sprintf("begin migration %d (%s)", m.Version, m.Name), err)
		}

		if err := m.Apply(tx); err != nil {
			tx.Rollback()
			return coretypes.NewMigrationFailed(m.Version, err.Error())
		}

		if _, err := tx.Exec(`INSERT OR REPLACE INTO schema_version (version, applied_at) VALUES (?, CURRENT_TIMESTAMP)`, m.Version); err != nil {
			tx.Rollback()
			return coretypes.NewMigrationFailed(m.Version, "record schema_version: "+err.Error())
		}

		if err := tx.Commit(); err != nil {
			return coretypes.NewMigrationFailed(m.Version, "commit: "+err.Error())
		}

		log.Info("migration applied", "version", m.Version, "name", m.Name)
		current = m.Version
	}

	return nil
}
