package detect

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fraudradar/fraud-radar/internal/common"
	"github.com/fraudradar/fraud-radar/internal/model"
	"github.com/fraudradar/fraud-radar/internal/service"
	"github.com/google/uuid"
)

// Scanner orchestrates a full detection run: it loads the stored transaction
// set and active rules, runs the detector, and records the anomaly groups and
// the scan result.
type Scanner struct {
	storage    service.Storage
	thresholds Thresholds
}

// NewScanner creates a scanner backed by the given storage.
func NewScanner(storage service.Storage, thresholds Thresholds) *Scanner {
	return &Scanner{storage: storage, thresholds: thresholds}
}

// Run executes one scan and returns the recorded result with its groups.
func (s *Scanner) Run(ctx context.Context) (*model.ScanResult, []model.AnomalyGroup, error) {
	transactions, err := s.storage.GetTransactions(ctx, service.TransactionFilter{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	detector := NewWithThresholds(s.thresholds)
	if s.thresholds.EnforceRules {
		rules, rulesErr := s.storage.GetActiveDetectionRules(ctx)
		if rulesErr != nil {
			return nil, nil, fmt.Errorf("failed to load detection rules: %w", rulesErr)
		}
		detector.SetRules(rules)
	}

	groups := detector.Detect(transactions)

	scan := &model.ScanResult{
		ID:                fmt.Sprintf("SC-%s", uuid.New().String()[:8]),
		Date:              time.Now(),
		AnomaliesFound:    len(groups),
		TotalRiskExposure: RiskExposure(groups),
		Status:            model.ScanCompleted,
	}

	if err := s.storage.SaveScanResult(ctx, scan); err != nil {
		return nil, nil, fmt.Errorf("failed to record scan: %w", err)
	}
	if err := s.storage.SaveAnomalyGroups(ctx, scan.ID, groups); err != nil {
		scan.Status = model.ScanFailed
		if saveErr := s.storage.SaveScanResult(ctx, scan); saveErr != nil {
			common.LogError(saveErr, "Failed to mark scan as failed", common.Fields{"scan_id": scan.ID})
		}
		return nil, nil, fmt.Errorf("failed to save anomaly groups: %w", err)
	}

	if err := s.storage.AppendAuditLog(ctx, &model.AuditLogEntry{
		Time:    scan.Date,
		User:    "system",
		Action:  "scan.completed",
		Details: fmt.Sprintf("Scan %s found %d anomalies across %d transactions", scan.ID, len(groups), len(transactions)),
		Type:    model.AuditInfo,
	}); err != nil {
		slog.Warn("Failed to append audit entry", "scan_id", scan.ID, "error", err)
	}

	slog.Info("Scan completed",
		"scan_id", scan.ID,
		"transactions", len(transactions),
		"anomalies", len(groups),
		"exposure", scan.TotalRiskExposure)

	return scan, groups, nil
}
