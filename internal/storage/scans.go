package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fraudradar/fraud-radar/internal/model"
	"github.com/fraudradar/fraud-radar/internal/service"
)

// SaveScanResult records a detection run, upserting on ID so a scan's status
// can move from Running or Completed to Failed.
func (s *SQLiteStorage) SaveScanResult(ctx context.Context, scan *model.ScanResult) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateScanResult(scan); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scans (id, date, anomalies_found, total_risk_exposure, status)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			anomalies_found = excluded.anomalies_found,
			total_risk_exposure = excluded.total_risk_exposure,
			status = excluded.status`,
		scan.ID, scan.Date, scan.AnomaliesFound, scan.TotalRiskExposure, scan.Status)
	if err != nil {
		return fmt.Errorf("failed to save scan result: %w", err)
	}
	return nil
}

// GetScanHistory returns all recorded scans, most recent first.
func (s *SQLiteStorage) GetScanHistory(ctx context.Context) ([]model.ScanResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, anomalies_found, total_risk_exposure, status
		FROM scans ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []model.ScanResult
	for rows.Next() {
		var r model.ScanResult
		if err := rows.Scan(&r.ID, &r.Date, &r.AnomaliesFound, &r.TotalRiskExposure, &r.Status); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// GetLatestScan returns the most recent scan, or nil when none exist.
func (s *SQLiteStorage) GetLatestScan(ctx context.Context) (*model.ScanResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var r model.ScanResult
	err := s.db.QueryRowContext(ctx, `
		SELECT id, date, anomalies_found, total_risk_exposure, status
		FROM scans ORDER BY date DESC, id DESC LIMIT 1`).
		Scan(&r.ID, &r.Date, &r.AnomaliesFound, &r.TotalRiskExposure, &r.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest scan: %w", err)
	}
	return &r, nil
}

// GetScanSummary computes the dashboard totals across the whole scan history.
// An empty history yields zeroes.
func (s *SQLiteStorage) GetScanSummary(ctx context.Context) (*service.ScanSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var summary service.ScanSummary
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(anomalies_found), 0), COALESCE(SUM(total_risk_exposure), 0)
		FROM scans`).
		Scan(&summary.ScanCount, &summary.TotalAnomalies, &summary.TotalExposure)
	if err != nil {
		return nil, fmt.Errorf("failed to compute scan summary: %w", err)
	}
	return &summary, nil
}
