package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/fraudradar/fraud-radar/internal/common"
	"github.com/fraudradar/fraud-radar/internal/model"
)

// CreateDetectionRule stores a new rule and fills in its generated ID.
func (s *SQLiteStorage) CreateDetectionRule(ctx context.Context, rule *model.DetectionRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}

	var existing int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM detection_rules WHERE type = ? AND value = ?`,
		rule.Type, rule.Value).Scan(&existing)
	if err != nil {
		return fmt.Errorf("failed to check for existing rule: %w", err)
	}
	if existing > 0 {
		return fmt.Errorf("rule %s %q: %w", rule.Type, rule.Value, common.ErrDuplicateEntry)
	}

	now := time.Now()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO detection_rules (type, value, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		rule.Type, rule.Value, rule.IsActive, now, now)
	if err != nil {
		return fmt.Errorf("failed to create detection rule: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get rule ID: %w", err)
	}
	rule.ID = id
	rule.CreatedAt = now
	rule.UpdatedAt = now
	return nil
}

// GetDetectionRules returns all rules, active or not.
func (s *SQLiteStorage) GetDetectionRules(ctx context.Context) ([]model.DetectionRule, error) {
	return s.queryRules(ctx, `
		SELECT id, type, value, is_active, created_at, updated_at
		FROM detection_rules ORDER BY id`)
}

// GetActiveDetectionRules returns only the rules the detector should consult.
func (s *SQLiteStorage) GetActiveDetectionRules(ctx context.Context) ([]model.DetectionRule, error) {
	return s.queryRules(ctx, `
		SELECT id, type, value, is_active, created_at, updated_at
		FROM detection_rules WHERE is_active = 1 ORDER BY id`)
}

// SetDetectionRuleActive toggles a rule without deleting its history.
func (s *SQLiteStorage) SetDetectionRuleActive(ctx context.Context, id int64, active bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE detection_rules SET is_active = ?, updated_at = ? WHERE id = ?`,
		active, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to toggle detection rule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("detection rule %d: %w", id, common.ErrNotFound)
	}
	return nil
}

// DeleteDetectionRule removes a rule permanently.
func (s *SQLiteStorage) DeleteDetectionRule(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM detection_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete detection rule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("detection rule %d: %w", id, common.ErrNotFound)
	}
	return nil
}

func (s *SQLiteStorage) queryRules(ctx context.Context, query string) ([]model.DetectionRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query detection rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.DetectionRule
	for rows.Next() {
		var r model.DetectionRule
		if err := rows.Scan(&r.ID, &r.Type, &r.Value, &r.IsActive, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan detection rule: %w", err)
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}
