// Package ledger provides transaction sources for the detector. There is no
// live QuickBooks/Xero integration; input comes from the embedded sample
// ledger or from a JSON export file.
package ledger

import (
	"context"

	"github.com/fraudradar/fraud-radar/internal/model"
)

// Source supplies transactions for import.
type Source interface {
	// Name identifies the source for logging and audit entries.
	Name() string
	// FetchTransactions returns the source's transactions in ledger order.
	FetchTransactions(ctx context.Context) ([]model.Transaction, error)
}
