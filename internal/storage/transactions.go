package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fraudradar/fraud-radar/internal/common"
	"github.com/fraudradar/fraud-radar/internal/model"
	"github.com/fraudradar/fraud-radar/internal/service"
)

// SaveTransactions stores transactions, upserting on ID so re-importing the
// same ledger export is safe.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (id, hash, date, amount, currency, type, entity_name, account, memo, status, recorded_by, timestamp, source_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			hash = excluded.hash,
			date = excluded.date,
			amount = excluded.amount,
			currency = excluded.currency,
			type = excluded.type,
			entity_name = excluded.entity_name,
			account = excluded.account,
			memo = excluded.memo,
			status = excluded.status,
			recorded_by = excluded.recorded_by,
			timestamp = excluded.timestamp,
			source_url = excluded.source_url`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range transactions {
		t := &transactions[i]
		hash := t.Hash
		if hash == "" {
			hash = t.GenerateHash()
		}
		var timestamp sql.NullTime
		if t.Timestamp != nil {
			timestamp = sql.NullTime{Time: *t.Timestamp, Valid: true}
		}
		status := t.Status
		if status == "" {
			status = model.TxnStatusPending
		}
		if _, err := stmt.ExecContext(ctx,
			t.ID, hash, t.Date, t.Amount, t.Currency, t.Type,
			t.EntityName, t.Account, t.Memo, status, t.RecordedBy,
			timestamp, t.SourceURL); err != nil {
			return fmt.Errorf("failed to save transaction %s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

// GetTransactions returns transactions matching the filter, ordered by date
// then ID for a stable detection input order.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT id, hash, date, amount, currency, type, entity_name, account, memo, status, recorded_by, timestamp, source_url
		FROM transactions`
	var conditions []string
	var args []any

	if filter.StartDate != nil {
		conditions = append(conditions, "date >= ?")
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "date <= ?")
		args = append(args, *filter.EndDate)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		t, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// GetTransactionByID returns a single transaction or common.ErrNotFound.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, hash, date, amount, currency, type, entity_name, account, memo, status, recorded_by, timestamp, source_url
		FROM transactions WHERE id = ?`, id)

	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTransactionStatus moves a transaction through the review workflow.
func (s *SQLiteStorage) UpdateTransactionStatus(ctx context.Context, id string, status model.TransactionStatus) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `UPDATE transactions SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// GetTransactionCount returns the number of stored transactions.
func (s *SQLiteStorage) GetTransactionCount(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// rowScanner lets scanTransaction work for both QueryRow and Query results.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var t model.Transaction
	var account, memo, recordedBy, sourceURL sql.NullString
	var timestamp sql.NullTime

	err := row.Scan(&t.ID, &t.Hash, &t.Date, &t.Amount, &t.Currency, &t.Type,
		&t.EntityName, &account, &memo, &t.Status, &recordedBy, &timestamp, &sourceURL)
	if err != nil {
		return model.Transaction{}, err
	}

	t.Account = account.String
	t.Memo = memo.String
	t.RecordedBy = recordedBy.String
	t.SourceURL = sourceURL.String
	if timestamp.Valid {
		ts := timestamp.Time
		t.Timestamp = &ts
	}
	return t, nil
}
