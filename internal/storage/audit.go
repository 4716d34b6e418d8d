package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fraudradar/fraud-radar/internal/model"
)

// AppendAuditLog adds an entry to the audit trail and fills in its ID.
func (s *SQLiteStorage) AppendAuditLog(ctx context.Context, entry *model.AuditLogEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAuditEntry(entry); err != nil {
		return err
	}

	if entry.Time.IsZero() {
		entry.Time = time.Now()
	}
	if entry.User == "" {
		entry.User = "system"
	}
	if entry.Type == "" {
		entry.Type = model.AuditInfo
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (time, user, action, details, type)
		VALUES (?, ?, ?, ?, ?)`,
		entry.Time, entry.User, entry.Action, entry.Details, entry.Type)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get audit entry ID: %w", err)
	}
	entry.ID = id
	return nil
}

// GetAuditLog returns the most recent audit entries, newest first.
// A limit of 0 returns everything.
func (s *SQLiteStorage) GetAuditLog(ctx context.Context, limit int) ([]model.AuditLogEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT id, time, user, action, details, type FROM audit_log ORDER BY time DESC, id DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.AuditLogEntry
	for rows.Next() {
		var e model.AuditLogEntry
		var details sql.NullString
		if err := rows.Scan(&e.ID, &e.Time, &e.User, &e.Action, &details, &e.Type); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		e.Details = details.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
