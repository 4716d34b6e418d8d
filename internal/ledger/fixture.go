package ledger

import (
	"context"
	"time"

	"github.com/fraudradar/fraud-radar/internal/model"
)

// FixtureSource serves the embedded sample ledger, useful for demos and tests.
type FixtureSource struct{}

// NewFixtureSource creates a fixture-backed source.
func NewFixtureSource() *FixtureSource {
	return &FixtureSource{}
}

// Name identifies the source.
func (s *FixtureSource) Name() string {
	return "sample-fixture"
}

// FetchTransactions returns the sample ledger.
func (s *FixtureSource) FetchTransactions(_ context.Context) ([]model.Transaction, error) {
	return SampleTransactions(), nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func stamp(y int, m time.Month, d, hh, mm int) *time.Time {
	t := time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
	return &t
}

// SampleTransactions returns a small ledger exercising every heuristic:
// a same-day splitting pattern, an off-hours bill, a round high-value
// payment, and one unremarkable purchase.
func SampleTransactions() []model.Transaction {
	return []model.Transaction{
		{
			ID: "TXN-S1", Date: date(2023, time.November, 20), Amount: 450.00, Currency: "USD",
			Type: model.TypePurchase, EntityName: "Office Max", Account: "Supplies",
			RecordedBy: "John Smith", Timestamp: stamp(2023, time.November, 20, 10, 0),
			Status:    model.TxnStatusPending,
			SourceURL: "https://app.qbo.intuit.com/app/expense?txnId=10234",
		},
		{
			ID: "TXN-S2", Date: date(2023, time.November, 20), Amount: 480.00, Currency: "USD",
			Type: model.TypePurchase, EntityName: "Office Max", Account: "Supplies",
			RecordedBy: "John Smith", Timestamp: stamp(2023, time.November, 20, 10, 5),
			Status:    model.TxnStatusPending,
			SourceURL: "https://app.qbo.intuit.com/app/expense?txnId=10235",
		},
		{
			ID: "TXN-S3", Date: date(2023, time.November, 20), Amount: 420.00, Currency: "USD",
			Type: model.TypePurchase, EntityName: "Office Max", Account: "Supplies",
			RecordedBy: "John Smith", Timestamp: stamp(2023, time.November, 20, 10, 10),
			Status:    model.TxnStatusPending,
			SourceURL: "https://app.qbo.intuit.com/app/expense?txnId=10236",
		},
		{
			ID: "TXN-T1", Date: date(2023, time.November, 19), Amount: 2500.00, Currency: "USD",
			Type: model.TypeBill, EntityName: "IT Services Ltd", Account: "Professional Fees",
			RecordedBy: "Admin", Timestamp: stamp(2023, time.November, 19, 23, 45),
			Status:    model.TxnStatusPending,
			SourceURL: "https://app.qbo.intuit.com/app/bill?txnId=9928",
		},
		{
			ID: "TXN-N1", Date: date(2023, time.November, 15), Amount: 5000.00, Currency: "USD",
			Type: model.TypeBill, EntityName: "New Consulting Group", Account: "Legal",
			RecordedBy: "Anna White", Timestamp: stamp(2023, time.November, 15, 14, 0),
			Status:    model.TxnStatusPending,
			SourceURL: "https://app.qbo.intuit.com/app/bill?txnId=8841",
		},
		{
			ID: "TXN-OK1", Date: date(2023, time.November, 10), Amount: 120.00, Currency: "USD",
			Type: model.TypePurchase, EntityName: "Starbucks", Account: "Travel",
			RecordedBy: "John Smith", Timestamp: stamp(2023, time.November, 10, 8, 30),
			Status:    model.TxnStatusPending,
			SourceURL: "https://app.qbo.intuit.com/app/expense?txnId=7712",
		},
	}
}

// SampleScanHistory returns example scan results matching the sample ledger,
// used to seed a demo database.
func SampleScanHistory() []model.ScanResult {
	return []model.ScanResult{
		{ID: "SC-1001", Date: date(2023, time.November, 20), AnomaliesFound: 3, TotalRiskExposure: 1350, Status: model.ScanCompleted},
		{ID: "SC-1002", Date: date(2023, time.November, 19), AnomaliesFound: 1, TotalRiskExposure: 2500, Status: model.ScanCompleted},
		{ID: "SC-1003", Date: date(2023, time.November, 15), AnomaliesFound: 1, TotalRiskExposure: 5000, Status: model.ScanCompleted},
	}
}
