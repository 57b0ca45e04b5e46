package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS documents (
					id TEXT PRIMARY KEY,
					source_name TEXT NOT NULL,
					source_kind TEXT NOT NULL,
					template TEXT NOT NULL,
					recognized INTEGER NOT NULL DEFAULT 0,
					transaction_date TEXT,
					total_amount TEXT NOT NULL,
					total_strategy TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS records (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					document_id TEXT NOT NULL,
					position INTEGER NOT NULL,
					name TEXT NOT NULL,
					amount TEXT NOT NULL,
					quantity INTEGER NOT NULL DEFAULT 1,
					category TEXT NOT NULL,
					confidence REAL NOT NULL DEFAULT 0,
					source_kind TEXT NOT NULL,
					direction TEXT NOT NULL,
					date TEXT,
					FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
				)`,
				`CREATE INDEX idx_records_document ON records(document_id, position)`,
				`CREATE INDEX idx_documents_date ON documents(transaction_date)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Track categorization layer and statement row hashes",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`ALTER TABLE records ADD COLUMN layer TEXT NOT NULL DEFAULT ''`,
				`ALTER TABLE records ADD COLUMN hash TEXT NOT NULL DEFAULT ''`,
				`CREATE INDEX idx_records_training ON records(direction, category)`,
				`CREATE INDEX idx_records_hash ON records(hash)`,
			)
		},
	},
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// Migrate brings the schema up to ExpectedSchemaVersion.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		s.logger.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion returns the applied migration version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
