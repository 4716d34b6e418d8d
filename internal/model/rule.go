package model

import (
	"fmt"
	"strconv"
	"time"
)

// RuleType identifies what a detection rule excludes or adjusts.
type RuleType string

// Rule type constants.
const (
	RuleExcludeVendor    RuleType = "ExcludeVendor"
	RuleAmountThreshold  RuleType = "AmountThreshold"
	RuleAccountWhiteList RuleType = "AccountWhiteList"
)

// DetectionRule is an exclusion/whitelist configuration entry. Rules are
// persisted and toggleable; the detector consults them only when rule
// enforcement is enabled.
type DetectionRule struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Type      RuleType  `json:"type"`
	Value     string    `json:"value"`
	ID        int64     `json:"id"`
	IsActive  bool      `json:"isActive"`
}

// Matches reports whether this rule applies to the given transaction.
// AmountThreshold rules adjust a detection floor rather than matching
// individual transactions, so they never match here.
func (r *DetectionRule) Matches(t *Transaction) bool {
	switch r.Type {
	case RuleExcludeVendor:
		return t.EntityName == r.Value
	case RuleAccountWhiteList:
		return t.Account == r.Value
	default:
		return false
	}
}

// Threshold parses the rule value as a monetary amount. Only meaningful for
// AmountThreshold rules.
func (r *DetectionRule) Threshold() (float64, error) {
	if r.Type != RuleAmountThreshold {
		return 0, fmt.Errorf("rule %d is %s, not an amount threshold", r.ID, r.Type)
	}
	v, err := strconv.ParseFloat(r.Value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid threshold value %q: %w", r.Value, err)
	}
	return v, nil
}

// Validate ensures the rule is well formed.
func (r *DetectionRule) Validate() error {
	switch r.Type {
	case RuleExcludeVendor, RuleAccountWhiteList:
		if r.Value == "" {
			return fmt.Errorf("rule value is required for %s rules", r.Type)
		}
	case RuleAmountThreshold:
		v, err := strconv.ParseFloat(r.Value, 64)
		if err != nil {
			return fmt.Errorf("amount threshold must be numeric, got %q", r.Value)
		}
		if v <= 0 {
			return fmt.Errorf("amount threshold must be positive, got %v", v)
		}
	default:
		return fmt.Errorf("unknown rule type: %s", r.Type)
	}
	return nil
}
