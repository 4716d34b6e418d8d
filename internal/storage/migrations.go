package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a fatal
// error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema: transactions, scans, anomaly groups",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					hash TEXT NOT NULL,
					date DATETIME NOT NULL,
					amount REAL NOT NULL,
					currency TEXT NOT NULL DEFAULT 'USD',
					type TEXT NOT NULL,
					entity_name TEXT NOT NULL,
					account TEXT,
					memo TEXT,
					status TEXT NOT NULL DEFAULT 'pending',
					recorded_by TEXT,
					timestamp DATETIME,
					source_url TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_transactions_date ON transactions(date)`,
				`CREATE INDEX idx_transactions_entity ON transactions(entity_name)`,
				`CREATE INDEX idx_transactions_hash ON transactions(hash)`,

				`CREATE TABLE IF NOT EXISTS scans (
					id TEXT PRIMARY KEY,
					date DATETIME NOT NULL,
					anomalies_found INTEGER NOT NULL DEFAULT 0,
					total_risk_exposure REAL NOT NULL DEFAULT 0,
					status TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_scans_date ON scans(date)`,

				`CREATE TABLE IF NOT EXISTS anomaly_groups (
					scan_id TEXT NOT NULL,
					id TEXT NOT NULL,
					reason TEXT NOT NULL,
					explanation TEXT,
					risk_score INTEGER NOT NULL,
					risk_level TEXT NOT NULL,
					category TEXT NOT NULL,
					investigation_status TEXT NOT NULL DEFAULT 'open',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					PRIMARY KEY (scan_id, id),
					FOREIGN KEY (scan_id) REFERENCES scans(id)
				)`,
				`CREATE INDEX idx_anomaly_groups_category ON anomaly_groups(category)`,

				`CREATE TABLE IF NOT EXISTS anomaly_transactions (
					scan_id TEXT NOT NULL,
					group_id TEXT NOT NULL,
					transaction_id TEXT NOT NULL,
					position INTEGER NOT NULL DEFAULT 0,
					PRIMARY KEY (scan_id, group_id, transaction_id),
					FOREIGN KEY (scan_id, group_id) REFERENCES anomaly_groups(scan_id, id),
					FOREIGN KEY (transaction_id) REFERENCES transactions(id)
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Detection rules",
		Up: func(tx *sql.Tx) error {
			query := `CREATE TABLE IF NOT EXISTS detection_rules (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				type TEXT NOT NULL,
				value TEXT NOT NULL,
				is_active INTEGER NOT NULL DEFAULT 1,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`
			if _, err := tx.Exec(query); err != nil {
				return fmt.Errorf("failed to create detection_rules: %w", err)
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Audit log",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS audit_log (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					time DATETIME NOT NULL,
					user TEXT NOT NULL DEFAULT 'system',
					action TEXT NOT NULL,
					details TEXT,
					type TEXT NOT NULL DEFAULT 'info'
				)`,
				`CREATE INDEX idx_audit_log_time ON audit_log(time)`,
			}
			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
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

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
