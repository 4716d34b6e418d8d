package model

import "time"

// ScanStatus indicates the outcome of a detection run.
type ScanStatus string

// Scan status constants.
const (
	ScanCompleted ScanStatus = "Completed"
	ScanFailed    ScanStatus = "Failed"
	ScanRunning   ScanStatus = "Running"
)

// ScanResult records one invocation of the detector over the current
// transaction set, for the dashboard's scan history.
type ScanResult struct {
	Date              time.Time  `json:"date"`
	ID                string     `json:"id"`
	Status            ScanStatus `json:"status"`
	AnomaliesFound    int        `json:"anomaliesFound"`
	TotalRiskExposure float64    `json:"totalRiskExposure"`
}
