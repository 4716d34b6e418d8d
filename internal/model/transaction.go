// Package model defines the core domain records used throughout the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// TransactionType identifies the kind of ledger entry.
type TransactionType string

// Transaction type constants, matching the names used by QuickBooks/Xero exports.
const (
	TypeInvoice  TransactionType = "Invoice"
	TypeBill     TransactionType = "Bill"
	TypePayment  TransactionType = "Payment"
	TypeJournal  TransactionType = "JournalEntry"
	TypePurchase TransactionType = "Purchase"
)

// TransactionStatus tracks where a transaction sits in the review workflow.
type TransactionStatus string

// Transaction status constants.
const (
	TxnStatusPending  TransactionStatus = "pending"
	TxnStatusReviewed TransactionStatus = "reviewed"
	TxnStatusFlagged  TransactionStatus = "flagged"
	TxnStatusCleared  TransactionStatus = "cleared"
)

// Transaction represents a single ledger entry synced from the accounting system.
// It is read-only to the detector; only Status is mutated by the review workflow.
type Transaction struct {
	Date       time.Time         `json:"date"`
	Timestamp  *time.Time        `json:"timestamp,omitempty"` // creation time including time-of-day, when the ledger records it
	ID         string            `json:"id"`
	Hash       string            `json:"-"`
	Currency   string            `json:"currency"`
	EntityName string            `json:"entityName"`
	Account    string            `json:"account"`
	Memo       string            `json:"memo,omitempty"`
	RecordedBy string            `json:"recordedBy,omitempty"`
	SourceURL  string            `json:"sourceUrl,omitempty"` // deep link back to QuickBooks or Xero
	Type       TransactionType   `json:"type"`
	Status     TransactionStatus `json:"status"`
	Amount     float64           `json:"amount"`
}

// GenerateHash creates a content hash used for duplicate detection across imports.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.EntityName,
		t.Account)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// Validate ensures the transaction satisfies the domain invariants.
func (t *Transaction) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("transaction ID is required")
	}
	if t.Date.IsZero() {
		return fmt.Errorf("transaction date is required")
	}
	if t.Amount < 0 {
		return fmt.Errorf("transaction amount must be non-negative, got %.2f", t.Amount)
	}
	if t.Timestamp != nil {
		ty, tm, td := t.Timestamp.Date()
		dy, dm, dd := t.Date.Date()
		if ty != dy || tm != dm || td != dd {
			return fmt.Errorf("timestamp date %s disagrees with transaction date %s",
				t.Timestamp.Format("2006-01-02"), t.Date.Format("2006-01-02"))
		}
	}
	return nil
}
