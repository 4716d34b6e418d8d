package detect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fraudradar/fraud-radar/internal/model"
)

func txn(id, entity string, date time.Time, amount float64) model.Transaction {
	return model.Transaction{
		ID:         id,
		Date:       date,
		Amount:     amount,
		Currency:   "USD",
		Type:       model.TypePurchase,
		EntityName: entity,
		Status:     model.TxnStatusPending,
	}
}

func txnAt(id, entity string, date time.Time, amount float64, hour, minute int) model.Transaction {
	t := txn(id, entity, date, amount)
	ts := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, time.UTC)
	t.Timestamp = &ts
	return t
}

// A Monday, so time anomalies depend only on the hour.
var monday = time.Date(2023, time.November, 20, 0, 0, 0, 0, time.UTC)

func TestDetectSplitting(t *testing.T) {
	tests := []struct {
		name       string
		txns       []model.Transaction
		wantGroups int
	}{
		{
			name: "three same-day same-vendor transactions form one group",
			txns: []model.Transaction{
				txn("t1", "Office Max", monday, 450),
				txn("t2", "Office Max", monday, 480),
				txn("t3", "Office Max", monday, 420),
			},
			wantGroups: 1,
		},
		{
			name: "two transactions are below the split minimum",
			txns: []model.Transaction{
				txn("t1", "Office Max", monday, 450),
				txn("t2", "Office Max", monday, 480),
			},
			wantGroups: 0,
		},
		{
			name: "same vendor on different days does not group",
			txns: []model.Transaction{
				txn("t1", "Office Max", monday, 450),
				txn("t2", "Office Max", monday.AddDate(0, 0, 1), 480),
				txn("t3", "Office Max", monday.AddDate(0, 0, 2), 420),
			},
			wantGroups: 0,
		},
		{
			name: "two qualifying partitions produce two groups",
			txns: []model.Transaction{
				txn("a1", "Office Max", monday, 100),
				txn("a2", "Office Max", monday, 100),
				txn("a3", "Office Max", monday, 100),
				txn("b1", "Acme", monday, 100),
				txn("b2", "Acme", monday, 100),
				txn("b3", "Acme", monday, 100),
				txn("b4", "Acme", monday, 100),
			},
			wantGroups: 2,
		},
		{
			name:       "empty input yields no groups",
			txns:       nil,
			wantGroups: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups := New().detectSplitting(tt.txns)
			assert.Len(t, groups, tt.wantGroups)
		})
	}
}

func TestDetectSplittingVendorNamesWithSeparators(t *testing.T) {
	// Vendor names are arbitrary text; punctuation in the name must not merge
	// or split partitions.
	txns := []model.Transaction{
		txn("t1", "Smith|Jones & Co", monday, 450),
		txn("t2", "Smith|Jones & Co", monday, 480),
		txn("t3", "Smith|Jones & Co", monday, 420),
		txn("u1", "Smith", monday, 100),
		txn("u2", "Jones & Co", monday, 100),
	}

	groups := New().detectSplitting(txns)
	require.Len(t, groups, 1)
	for _, gt := range groups[0].Transactions {
		assert.Equal(t, "Smith|Jones & Co", gt.EntityName)
	}
}

func TestDetectSplittingGroupContents(t *testing.T) {
	txns := []model.Transaction{
		txn("t1", "Office Max", monday, 450),
		txn("t2", "Office Max", monday, 480),
		txn("t3", "Office Max", monday, 420),
	}

	groups := New().Detect(txns)
	require.Len(t, groups, 1)

	g := groups[0]
	assert.Equal(t, model.CategorySplitting, g.Category)
	assert.Equal(t, "Suspicious Transaction Splitting", g.Reason)
	assert.Equal(t, 85, g.RiskScore)
	assert.Equal(t, model.RiskHigh, g.RiskLevel)
	assert.Equal(t, model.InvestigationOpen, g.InvestigationStatus)
	require.Len(t, g.Transactions, 3)

	var total float64
	for _, txn := range g.Transactions {
		total += txn.Amount
	}
	assert.InDelta(t, 1350.0, total, 0.001)
}

func TestDetectTimeAnomalies(t *testing.T) {
	saturday := time.Date(2023, time.November, 18, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		txn  model.Transaction
		want bool
	}{
		{
			name: "late night weekday posting is flagged",
			txn:  txnAt("t1", "IT Services Ltd", monday, 2500, 23, 45),
			want: true,
		},
		{
			name: "early morning posting is flagged",
			txn:  txnAt("t1", "IT Services Ltd", monday, 2500, 4, 30),
			want: true,
		},
		{
			name: "business hours weekday posting is not flagged",
			txn:  txnAt("t1", "IT Services Ltd", monday, 2500, 14, 0),
			want: false,
		},
		{
			name: "hour five is within business hours",
			txn:  txnAt("t1", "IT Services Ltd", monday, 2500, 5, 0),
			want: false,
		},
		{
			name: "hour twenty-two is within business hours",
			txn:  txnAt("t1", "IT Services Ltd", monday, 2500, 22, 59),
			want: false,
		},
		{
			name: "weekend posting is flagged regardless of hour",
			txn:  txnAt("t1", "IT Services Ltd", saturday, 2500, 14, 0),
			want: true,
		},
		{
			name: "transaction without timestamp is not applicable",
			txn:  txn("t1", "IT Services Ltd", saturday, 2500),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups := New().detectTimeAnomalies([]model.Transaction{tt.txn})
			if !tt.want {
				assert.Empty(t, groups)
				return
			}
			require.Len(t, groups, 1)
			g := groups[0]
			assert.Equal(t, model.CategoryTimeAnomaly, g.Category)
			assert.Equal(t, "Unusual Processing Time", g.Reason)
			assert.Equal(t, 60, g.RiskScore)
			assert.Equal(t, model.RiskMedium, g.RiskLevel)
			require.Len(t, g.Transactions, 1)
			assert.Contains(t, g.Explanation, tt.txn.Timestamp.Format("2006-01-02 15:04"))
		})
	}
}

func TestDetectRoundAmounts(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   bool
	}{
		{"exactly at the floor", 5000.00, true},
		{"round multiple above the floor", 10000.00, true},
		{"not a round multiple", 5500.00, false},
		{"round multiple below the floor", 4000.00, false},
		{"non-round cents", 5000.01, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups := New().detectRoundAmounts([]model.Transaction{
				txn("t1", "New Consulting Group", monday, tt.amount),
			})
			if !tt.want {
				assert.Empty(t, groups)
				return
			}
			require.Len(t, groups, 1)
			g := groups[0]
			assert.Equal(t, model.CategoryUnusualAmount, g.Category)
			assert.Equal(t, "High-Risk Payment Pattern", g.Reason)
			assert.Equal(t, 90, g.RiskScore)
			assert.Equal(t, model.RiskCritical, g.RiskLevel)
		})
	}
}

func TestDetectHeuristicsAreIndependent(t *testing.T) {
	// A round high-value payment posted at midnight trips both individual
	// heuristics; the groups are not merged or deduplicated.
	txns := []model.Transaction{
		txnAt("t1", "New Consulting Group", monday, 5000, 23, 59),
	}

	groups := New().Detect(txns)
	require.Len(t, groups, 2)
	assert.Equal(t, model.CategoryTimeAnomaly, groups[0].Category)
	assert.Equal(t, model.CategoryUnusualAmount, groups[1].Category)
}

func TestDetectIsDeterministic(t *testing.T) {
	txns := []model.Transaction{
		txn("t1", "Office Max", monday, 450),
		txn("t2", "Office Max", monday, 480),
		txn("t3", "Office Max", monday, 420),
		txnAt("t4", "IT Services Ltd", monday, 2500, 23, 45),
		txn("t5", "New Consulting Group", monday, 5000),
	}

	first := New().Detect(txns)
	second := New().Detect(txns)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Category, second[i].Category)
		assert.Equal(t, first[i].RiskLevel, second[i].RiskLevel)
		assert.Equal(t, len(first[i].Transactions), len(second[i].Transactions))
	}
}

func TestDetectEmptyInput(t *testing.T) {
	groups := New().Detect(nil)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestRuleEnforcement(t *testing.T) {
	txns := []model.Transaction{
		txn("t1", "Office Max", monday, 450),
		txn("t2", "Office Max", monday, 480),
		txn("t3", "Office Max", monday, 420),
		txn("t4", "New Consulting Group", monday, 5000),
	}
	rules := []model.DetectionRule{
		{ID: 1, Type: model.RuleExcludeVendor, Value: "Office Max", IsActive: true},
		{ID: 2, Type: model.RuleAmountThreshold, Value: "6000", IsActive: true},
	}

	t.Run("rules are ignored by default", func(t *testing.T) {
		d := New()
		d.SetRules(rules)
		groups := d.Detect(txns)
		assert.Len(t, groups, 2)
	})

	t.Run("enforced rules suppress matching heuristics", func(t *testing.T) {
		thresholds := DefaultThresholds()
		thresholds.EnforceRules = true
		d := NewWithThresholds(thresholds)
		d.SetRules(rules)
		groups := d.Detect(txns)
		assert.Empty(t, groups)
	})

	t.Run("inactive rules are never applied", func(t *testing.T) {
		thresholds := DefaultThresholds()
		thresholds.EnforceRules = true
		d := NewWithThresholds(thresholds)
		d.SetRules([]model.DetectionRule{
			{ID: 1, Type: model.RuleExcludeVendor, Value: "Office Max", IsActive: false},
		})
		groups := d.Detect(txns)
		assert.Len(t, groups, 2)
	})

	t.Run("whitelisted account is exempt from all heuristics", func(t *testing.T) {
		thresholds := DefaultThresholds()
		thresholds.EnforceRules = true
		d := NewWithThresholds(thresholds)
		d.SetRules([]model.DetectionRule{
			{ID: 1, Type: model.RuleAccountWhiteList, Value: "Payroll", IsActive: true},
		})

		payroll := txn("t5", "Payroll Co", monday, 8000)
		payroll.Account = "Payroll"
		groups := d.Detect(append(txns, payroll))
		// Splitting and round-amount groups survive; the payroll payment does not.
		require.Len(t, groups, 2)
		for _, g := range groups {
			for _, gt := range g.Transactions {
				assert.NotEqual(t, "t5", gt.ID)
			}
		}
	})
}
