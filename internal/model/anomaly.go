package model

import (
	"fmt"
	"time"
)

// RiskLevel is the four-point ordinal classification derived from a risk score.
type RiskLevel string

// Risk level constants, ordered from least to most severe.
const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
)

// RiskLevelFromScore quantizes a 0-100 risk score into a RiskLevel.
func RiskLevelFromScore(score int) RiskLevel {
	switch {
	case score >= 90:
		return RiskCritical
	case score >= 70:
		return RiskHigh
	case score >= 40:
		return RiskMedium
	default:
		return RiskLow
	}
}

// AnomalyCategory identifies which detection heuristic produced a group.
type AnomalyCategory string

// Anomaly category constants.
const (
	CategorySplitting     AnomalyCategory = "Splitting"
	CategoryUnusualAmount AnomalyCategory = "Unusual Amount"
	CategoryNewVendor     AnomalyCategory = "New Vendor"
	CategoryTimeAnomaly   AnomalyCategory = "Time Anomaly"
	CategoryDuplicate     AnomalyCategory = "Duplicate"
)

// InvestigationStatus tracks an anomaly group through the review workflow.
type InvestigationStatus string

// Investigation status constants.
const (
	InvestigationOpen          InvestigationStatus = "open"
	InvestigationInvestigating InvestigationStatus = "investigating"
	InvestigationDismissed     InvestigationStatus = "dismissed"
	InvestigationResolved      InvestigationStatus = "resolved"
)

// IsTerminal reports whether no further transitions are allowed from s.
func (s InvestigationStatus) IsTerminal() bool {
	return s == InvestigationResolved || s == InvestigationDismissed
}

// CanTransitionTo reports whether the review workflow permits moving from s to next.
// Allowed: open -> investigating, open -> dismissed,
// investigating -> resolved, investigating -> dismissed.
func (s InvestigationStatus) CanTransitionTo(next InvestigationStatus) bool {
	switch s {
	case InvestigationOpen:
		return next == InvestigationInvestigating || next == InvestigationDismissed
	case InvestigationInvestigating:
		return next == InvestigationResolved || next == InvestigationDismissed
	default:
		return false
	}
}

// AnomalyGroup is the output unit of a detection run: one or more implicated
// transactions with a risk classification and an explanation.
type AnomalyGroup struct {
	CreatedAt           time.Time           `json:"createdAt,omitempty"`
	ID                  string              `json:"id"`
	Reason              string              `json:"reason"`
	Explanation         string              `json:"explanation"`
	Category            AnomalyCategory     `json:"category"`
	InvestigationStatus InvestigationStatus `json:"investigationStatus"`
	Transactions        []Transaction       `json:"transactions"`
	RiskScore           int                 `json:"riskScore"`
	RiskLevel           RiskLevel           `json:"riskLevel"`
}

// Validate ensures the group satisfies the domain invariants.
func (g *AnomalyGroup) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("anomaly group ID is required")
	}
	if len(g.Transactions) == 0 {
		return fmt.Errorf("anomaly group must implicate at least one transaction")
	}
	if g.RiskScore < 0 || g.RiskScore > 100 {
		return fmt.Errorf("risk score must be between 0 and 100, got %d", g.RiskScore)
	}
	return nil
}
