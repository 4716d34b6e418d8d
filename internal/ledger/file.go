package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fraudradar/fraud-radar/internal/model"
)

// FileSource reads transactions from a JSON export of the accounting system.
type FileSource struct {
	path string
}

// NewFileSource creates a source backed by a JSON file.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name identifies the source.
func (s *FileSource) Name() string {
	return s.path
}

// fileTransaction is the JSON wire form of a ledger export row. Dates are
// "2006-01-02"; timestamps, when present, are "2006-01-02 15:04".
type fileTransaction struct {
	ID         string  `json:"id"`
	Date       string  `json:"date"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	Type       string  `json:"type"`
	EntityName string  `json:"entityName"`
	Account    string  `json:"account"`
	Memo       string  `json:"memo,omitempty"`
	Status     string  `json:"status,omitempty"`
	RecordedBy string  `json:"recordedBy,omitempty"`
	Timestamp  string  `json:"timestamp,omitempty"`
	SourceURL  string  `json:"sourceUrl,omitempty"`
}

// FetchTransactions parses the export. A row with an unparsable date is an
// error; an unparsable timestamp only disables the time heuristic for that
// row, so it is dropped with a warning rather than failing the import.
func (s *FileSource) FetchTransactions(_ context.Context) ([]model.Transaction, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger export: %w", err)
	}

	var rows []fileTransaction
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse ledger export: %w", err)
	}

	transactions := make([]model.Transaction, 0, len(rows))
	for i, row := range rows {
		date, err := time.Parse("2006-01-02", row.Date)
		if err != nil {
			return nil, fmt.Errorf("row %d (%s): invalid date %q: %w", i, row.ID, row.Date, err)
		}

		t := model.Transaction{
			ID:         row.ID,
			Date:       date,
			Amount:     row.Amount,
			Currency:   row.Currency,
			Type:       model.TransactionType(row.Type),
			EntityName: row.EntityName,
			Account:    row.Account,
			Memo:       row.Memo,
			Status:     model.TransactionStatus(row.Status),
			RecordedBy: row.RecordedBy,
			SourceURL:  row.SourceURL,
		}
		if t.Status == "" {
			t.Status = model.TxnStatusPending
		}
		if row.Timestamp != "" {
			ts, tsErr := time.Parse("2006-01-02 15:04", row.Timestamp)
			if tsErr != nil {
				slog.Warn("Ignoring malformed timestamp",
					"transaction_id", row.ID,
					"timestamp", row.Timestamp)
			} else {
				t.Timestamp = &ts
			}
		}
		transactions = append(transactions, t)
	}

	return transactions, nil
}
