package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransactionGenerateHash(t *testing.T) {
	base := Transaction{
		ID:         "TXN-1",
		Date:       time.Date(2023, time.November, 20, 0, 0, 0, 0, time.UTC),
		Amount:     450.00,
		EntityName: "Office Max",
		Account:    "Supplies",
	}

	same := base
	same.ID = "TXN-2" // the ID is not part of the content hash
	assert.Equal(t, base.GenerateHash(), same.GenerateHash())

	differentAmount := base
	differentAmount.Amount = 451.00
	assert.NotEqual(t, base.GenerateHash(), differentAmount.GenerateHash())

	differentDay := base
	differentDay.Date = base.Date.AddDate(0, 0, 1)
	assert.NotEqual(t, base.GenerateHash(), differentDay.GenerateHash())

	differentVendor := base
	differentVendor.EntityName = "Acme"
	assert.NotEqual(t, base.GenerateHash(), differentVendor.GenerateHash())
}

func TestTransactionValidate(t *testing.T) {
	date := time.Date(2023, time.November, 20, 0, 0, 0, 0, time.UTC)
	goodStamp := time.Date(2023, time.November, 20, 10, 0, 0, 0, time.UTC)
	badStamp := time.Date(2023, time.November, 21, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		txn     Transaction
		wantErr bool
	}{
		{
			name: "valid transaction",
			txn:  Transaction{ID: "t1", Date: date, Amount: 100, Timestamp: &goodStamp},
		},
		{
			name: "valid without timestamp",
			txn:  Transaction{ID: "t1", Date: date, Amount: 100},
		},
		{
			name:    "missing ID",
			txn:     Transaction{Date: date, Amount: 100},
			wantErr: true,
		},
		{
			name:    "missing date",
			txn:     Transaction{ID: "t1", Amount: 100},
			wantErr: true,
		},
		{
			name:    "negative amount",
			txn:     Transaction{ID: "t1", Date: date, Amount: -1},
			wantErr: true,
		},
		{
			name:    "timestamp on a different day",
			txn:     Transaction{ID: "t1", Date: date, Amount: 100, Timestamp: &badStamp},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.txn.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
