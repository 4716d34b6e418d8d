package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fraudradar/fraud-radar/internal/common"
	"github.com/fraudradar/fraud-radar/internal/model"
)

// SaveAnomalyGroups persists the groups produced by one scan, together with
// the implicated-transaction join rows.
func (s *SQLiteStorage) SaveAnomalyGroups(ctx context.Context, scanID string, groups []model.AnomalyGroup) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(scanID, "scanID"); err != nil {
		return err
	}
	for i := range groups {
		if err := groups[i].Validate(); err != nil {
			return fmt.Errorf("%w: group %d: %v", ErrInvalidValue, i, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	groupStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO anomaly_groups (scan_id, id, reason, explanation, risk_score, risk_level, category, investigation_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare group statement: %w", err)
	}
	defer func() { _ = groupStmt.Close() }()

	joinStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO anomaly_transactions (scan_id, group_id, transaction_id, position)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare join statement: %w", err)
	}
	defer func() { _ = joinStmt.Close() }()

	for i := range groups {
		g := &groups[i]
		status := g.InvestigationStatus
		if status == "" {
			status = model.InvestigationOpen
		}
		if _, err := groupStmt.ExecContext(ctx,
			scanID, g.ID, g.Reason, g.Explanation, g.RiskScore, g.RiskLevel, g.Category, status); err != nil {
			return fmt.Errorf("failed to save anomaly group %s: %w", g.ID, err)
		}
		for pos, t := range g.Transactions {
			if _, err := joinStmt.ExecContext(ctx, scanID, g.ID, t.ID, pos); err != nil {
				return fmt.Errorf("failed to link transaction %s to group %s: %w", t.ID, g.ID, err)
			}
		}
	}

	return tx.Commit()
}

// GetAnomalyGroups returns the groups recorded for a scan, in detection order.
// An empty scanID returns the groups of the most recent scan.
func (s *SQLiteStorage) GetAnomalyGroups(ctx context.Context, scanID string) ([]model.AnomalyGroup, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	if scanID == "" {
		latest, err := s.GetLatestScan(ctx)
		if err != nil {
			return nil, err
		}
		if latest == nil {
			return nil, nil
		}
		scanID = latest.ID
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, reason, explanation, risk_score, risk_level, category, investigation_status, created_at
		FROM anomaly_groups WHERE scan_id = ? ORDER BY rowid`, scanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query anomaly groups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var groups []model.AnomalyGroup
	for rows.Next() {
		var g model.AnomalyGroup
		var explanation sql.NullString
		if err := rows.Scan(&g.ID, &g.Reason, &explanation, &g.RiskScore, &g.RiskLevel,
			&g.Category, &g.InvestigationStatus, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan anomaly group: %w", err)
		}
		g.Explanation = explanation.String
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range groups {
		txns, txnErr := s.getGroupTransactions(ctx, scanID, groups[i].ID)
		if txnErr != nil {
			return nil, txnErr
		}
		groups[i].Transactions = txns
	}
	return groups, nil
}

// GetAnomalyGroupByID returns one group from a scan, or common.ErrNotFound.
// An empty scanID searches the most recent scan.
func (s *SQLiteStorage) GetAnomalyGroupByID(ctx context.Context, scanID, groupID string) (*model.AnomalyGroup, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(groupID, "groupID"); err != nil {
		return nil, err
	}

	groups, err := s.GetAnomalyGroups(ctx, scanID)
	if err != nil {
		return nil, err
	}
	for i := range groups {
		if groups[i].ID == groupID {
			return &groups[i], nil
		}
	}
	return nil, fmt.Errorf("anomaly group %s: %w", groupID, common.ErrNotFound)
}

// UpdateInvestigationStatus advances a group through the review state machine,
// rejecting transitions the workflow does not permit. An empty scanID targets
// the most recent scan.
func (s *SQLiteStorage) UpdateInvestigationStatus(ctx context.Context, scanID, groupID string, status model.InvestigationStatus) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(groupID, "groupID"); err != nil {
		return err
	}

	if scanID == "" {
		latest, err := s.GetLatestScan(ctx)
		if err != nil {
			return err
		}
		if latest == nil {
			return fmt.Errorf("anomaly group %s: %w", groupID, common.ErrNotFound)
		}
		scanID = latest.ID
	}

	var current model.InvestigationStatus
	err := s.db.QueryRowContext(ctx, `
		SELECT investigation_status FROM anomaly_groups WHERE scan_id = ? AND id = ?`,
		scanID, groupID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("anomaly group %s: %w", groupID, common.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to load investigation status: %w", err)
	}

	if !current.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s -> %s", common.ErrInvalidTransition, current, status)
	}

	if _, err := s.db.ExecContext(ctx, `
		UPDATE anomaly_groups SET investigation_status = ? WHERE scan_id = ? AND id = ?`,
		status, scanID, groupID); err != nil {
		return fmt.Errorf("failed to update investigation status: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) getGroupTransactions(ctx context.Context, scanID, groupID string) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.hash, t.date, t.amount, t.currency, t.type, t.entity_name, t.account, t.memo, t.status, t.recorded_by, t.timestamp, t.source_url
		FROM anomaly_transactions at
		JOIN transactions t ON t.id = at.transaction_id
		WHERE at.scan_id = ? AND at.group_id = ?
		ORDER BY at.position`, scanID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query group transactions: %w", err)
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
