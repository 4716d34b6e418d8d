package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/fraudradar/fraud-radar/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("value cannot be empty")
	ErrNilValue     = errors.New("value cannot be nil")
	ErrInvalidValue = errors.New("invalid value")
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

func validateString(value, name string) error {
	if value == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, name)
	}
	return nil
}

func validateTransactions(transactions []model.Transaction) error {
	for i := range transactions {
		if err := transactions[i].Validate(); err != nil {
			return fmt.Errorf("%w: transaction %d: %v", ErrInvalidValue, i, err)
		}
	}
	return nil
}

func validateScanResult(scan *model.ScanResult) error {
	if scan == nil {
		return fmt.Errorf("%w: scan", ErrNilValue)
	}
	if scan.ID == "" {
		return fmt.Errorf("%w: scan.ID", ErrEmptyString)
	}
	if scan.AnomaliesFound < 0 {
		return fmt.Errorf("%w: anomalies found cannot be negative", ErrInvalidValue)
	}
	if scan.TotalRiskExposure < 0 {
		return fmt.Errorf("%w: risk exposure cannot be negative", ErrInvalidValue)
	}
	return nil
}

func validateRule(rule *model.DetectionRule) error {
	if rule == nil {
		return fmt.Errorf("%w: rule", ErrNilValue)
	}
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return nil
}

func validateAuditEntry(entry *model.AuditLogEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: audit entry", ErrNilValue)
	}
	if entry.Action == "" {
		return fmt.Errorf("%w: entry.Action", ErrEmptyString)
	}
	return nil
}
