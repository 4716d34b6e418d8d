// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/fraudradar/fraud-radar/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// ScanSummary contains the dashboard aggregates over the scan history.
type ScanSummary struct {
	TotalAnomalies int
	TotalExposure  float64
	ScanCount      int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, id string, status model.TransactionStatus) error
	GetTransactionCount(ctx context.Context) (int, error)

	// Anomaly group operations
	SaveAnomalyGroups(ctx context.Context, scanID string, groups []model.AnomalyGroup) error
	GetAnomalyGroups(ctx context.Context, scanID string) ([]model.AnomalyGroup, error)
	GetAnomalyGroupByID(ctx context.Context, scanID, groupID string) (*model.AnomalyGroup, error)
	UpdateInvestigationStatus(ctx context.Context, scanID, groupID string, status model.InvestigationStatus) error

	// Scan history operations
	SaveScanResult(ctx context.Context, scan *model.ScanResult) error
	GetScanHistory(ctx context.Context) ([]model.ScanResult, error)
	GetLatestScan(ctx context.Context) (*model.ScanResult, error)
	GetScanSummary(ctx context.Context) (*ScanSummary, error)

	// Detection rule operations
	CreateDetectionRule(ctx context.Context, rule *model.DetectionRule) error
	GetDetectionRules(ctx context.Context) ([]model.DetectionRule, error)
	GetActiveDetectionRules(ctx context.Context) ([]model.DetectionRule, error)
	SetDetectionRuleActive(ctx context.Context, id int64, active bool) error
	DeleteDetectionRule(ctx context.Context, id int64) error

	// Audit log operations
	AppendAuditLog(ctx context.Context, entry *model.AuditLogEntry) error
	GetAuditLog(ctx context.Context, limit int) ([]model.AuditLogEntry, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// Detector evaluates the anomaly heuristics over an ordered transaction set.
type Detector interface {
	Detect(transactions []model.Transaction) []model.AnomalyGroup
}

// Assistant is the boundary to the external language-model service. It takes
// the prior conversation plus a new message and returns the assistant's reply.
type Assistant interface {
	Chat(ctx context.Context, history []model.ChatMessage, message string) (string, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
