// Package detect implements the anomaly detection engine for ledger transactions.
package detect

import (
	"crypto/sha256"
	"fmt"
	"math"
	"time"

	"github.com/fraudradar/fraud-radar/internal/model"
)

// Thresholds holds the tunable constants for every detection heuristic.
type Thresholds struct {
	// SplitMinCount is the minimum number of same-day, same-vendor
	// transactions that constitutes a splitting pattern.
	SplitMinCount int
	// NightStartHour: transactions recorded strictly after this hour are
	// flagged as off-hours.
	NightStartHour int
	// NightEndHour: transactions recorded strictly before this hour are
	// flagged as off-hours.
	NightEndHour int
	// RoundAmountFloor is the minimum amount for the round-payment heuristic.
	RoundAmountFloor float64
	// RoundAmountMultiple: amounts that are an exact multiple of this value
	// count as suspiciously round.
	RoundAmountMultiple float64

	SplitRiskScore       int
	TimeRiskScore        int
	RoundAmountRiskScore int

	// EnforceRules controls whether active detection rules (vendor
	// exclusions, amount thresholds, account whitelists) are consulted.
	// Off by default; see the rules documentation before enabling.
	EnforceRules bool
}

// DefaultThresholds returns the standard detection thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SplitMinCount:        3,
		NightStartHour:       22,
		NightEndHour:         5,
		RoundAmountFloor:     5000,
		RoundAmountMultiple:  1000,
		SplitRiskScore:       85,
		TimeRiskScore:        60,
		RoundAmountRiskScore: 90,
	}
}

// Detector applies the detection heuristics to an ordered transaction set.
// A Detector is stateless apart from its configuration: Detect is pure,
// deterministic, and safe to call concurrently for different inputs.
type Detector struct {
	thresholds Thresholds
	rules      []model.DetectionRule
}

// New creates a detector with the default thresholds.
func New() *Detector {
	return NewWithThresholds(DefaultThresholds())
}

// NewWithThresholds creates a detector with custom thresholds.
func NewWithThresholds(t Thresholds) *Detector {
	return &Detector{thresholds: t}
}

// SetRules provides the active detection rules. They are consulted only when
// EnforceRules is set on the thresholds.
func (d *Detector) SetRules(rules []model.DetectionRule) {
	d.rules = rules
}

// Detect runs all heuristics in fixed order and concatenates their groups.
// The heuristics are independent: a transaction may appear in multiple groups
// across categories. Empty input yields an empty result, never an error.
func (d *Detector) Detect(transactions []model.Transaction) []model.AnomalyGroup {
	txns := d.applicable(transactions)

	groups := make([]model.AnomalyGroup, 0)
	groups = append(groups, d.detectSplitting(txns)...)
	groups = append(groups, d.detectTimeAnomalies(txns)...)
	groups = append(groups, d.detectRoundAmounts(txns)...)
	return groups
}

// applicable filters out transactions exempted by an account whitelist rule.
func (d *Detector) applicable(transactions []model.Transaction) []model.Transaction {
	if !d.thresholds.EnforceRules {
		return transactions
	}
	kept := make([]model.Transaction, 0, len(transactions))
	for i := range transactions {
		t := &transactions[i]
		exempt := false
		for j := range d.rules {
			r := &d.rules[j]
			if r.IsActive && r.Type == model.RuleAccountWhiteList && r.Matches(t) {
				exempt = true
				break
			}
		}
		if !exempt {
			kept = append(kept, *t)
		}
	}
	return kept
}

// detectSplitting partitions transactions by (vendor, calendar day) and flags
// partitions at or above the split minimum. Repeated same-day payments to one
// vendor commonly evade a per-transaction approval threshold.
func (d *Detector) detectSplitting(transactions []model.Transaction) []model.AnomalyGroup {
	partitions := make(map[string][]model.Transaction)
	var order []string
	for _, t := range transactions {
		if d.thresholds.EnforceRules && d.vendorExcluded(&t) {
			continue
		}
		key := t.EntityName + "\x00" + t.Date.Format("2006-01-02")
		if _, seen := partitions[key]; !seen {
			order = append(order, key)
		}
		partitions[key] = append(partitions[key], t)
	}

	var groups []model.AnomalyGroup
	for _, key := range order {
		partition := partitions[key]
		if len(partition) < d.thresholds.SplitMinCount {
			continue
		}
		groups = append(groups, model.AnomalyGroup{
			ID:     groupID("SPLIT", key),
			Reason: "Suspicious Transaction Splitting",
			Explanation: "Multiple small transactions for the same vendor on the same day. " +
				"This pattern is often used to circumvent internal approval limits.",
			RiskScore:           d.thresholds.SplitRiskScore,
			RiskLevel:           model.RiskLevelFromScore(d.thresholds.SplitRiskScore),
			Transactions:        partition,
			Category:            model.CategorySplitting,
			InvestigationStatus: model.InvestigationOpen,
		})
	}
	return groups
}

func (d *Detector) vendorExcluded(t *model.Transaction) bool {
	for i := range d.rules {
		r := &d.rules[i]
		if r.IsActive && r.Type == model.RuleExcludeVendor && r.Matches(t) {
			return true
		}
	}
	return false
}

// detectTimeAnomalies flags individual transactions recorded outside business
// hours or on a weekend. Transactions without a recorded timestamp are not
// applicable and are skipped rather than treated as errors.
func (d *Detector) detectTimeAnomalies(transactions []model.Transaction) []model.AnomalyGroup {
	var groups []model.AnomalyGroup
	for _, t := range transactions {
		if t.Timestamp == nil {
			continue
		}
		hour := t.Timestamp.Hour()
		weekend := t.Date.Weekday() == time.Saturday || t.Date.Weekday() == time.Sunday
		if hour <= d.thresholds.NightStartHour && hour >= d.thresholds.NightEndHour && !weekend {
			continue
		}
		stamp := t.Timestamp.Format("2006-01-02 15:04")
		groups = append(groups, model.AnomalyGroup{
			ID:     groupID("TIME", t.ID),
			Reason: "Unusual Processing Time",
			Explanation: fmt.Sprintf("This record was created at an unusual time (%s), "+
				"falling outside normal business hours. User permissions should be verified.", stamp),
			RiskScore:           d.thresholds.TimeRiskScore,
			RiskLevel:           model.RiskLevelFromScore(d.thresholds.TimeRiskScore),
			Transactions:        []model.Transaction{t},
			Category:            model.CategoryTimeAnomaly,
			InvestigationStatus: model.InvestigationOpen,
		})
	}
	return groups
}

// detectRoundAmounts flags individual high-value payments that land on an
// exact round multiple, a common pattern in fictitious invoicing schemes.
func (d *Detector) detectRoundAmounts(transactions []model.Transaction) []model.AnomalyGroup {
	floor := d.thresholds.RoundAmountFloor
	if d.thresholds.EnforceRules {
		for _, r := range d.rules {
			if !r.IsActive || r.Type != model.RuleAmountThreshold {
				continue
			}
			if v, err := r.Threshold(); err == nil && v > floor {
				floor = v
			}
		}
	}

	var groups []model.AnomalyGroup
	for _, t := range transactions {
		if t.Amount < floor || math.Mod(t.Amount, d.thresholds.RoundAmountMultiple) != 0 {
			continue
		}
		groups = append(groups, model.AnomalyGroup{
			ID:     groupID("VAL", t.ID),
			Reason: "High-Risk Payment Pattern",
			Explanation: "Large, rounded payment to a non-regular vendor. " +
				"Common pattern in fictitious invoicing schemes.",
			RiskScore:           d.thresholds.RoundAmountRiskScore,
			RiskLevel:           model.RiskLevelFromScore(d.thresholds.RoundAmountRiskScore),
			Transactions:        []model.Transaction{t},
			Category:            model.CategoryUnusualAmount,
			InvestigationStatus: model.InvestigationOpen,
		})
	}
	return groups
}

// groupID derives a deterministic identifier from the grouping key, so that
// identical input always produces identical group IDs across runs.
func groupID(tag, key string) string {
	sum := sha256.Sum256([]byte(tag + ":" + key))
	return fmt.Sprintf("ANOM-%s-%x", tag, sum[:6])
}
