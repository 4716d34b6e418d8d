package detect

import "github.com/fraudradar/fraud-radar/internal/model"

// SummarizeScans reduces a scan history to the dashboard totals. An empty
// history yields zeroes.
func SummarizeScans(results []model.ScanResult) (totalAnomalies int, totalExposure float64) {
	for _, r := range results {
		totalAnomalies += r.AnomaliesFound
		totalExposure += r.TotalRiskExposure
	}
	return totalAnomalies, totalExposure
}

// RiskExposure sums the amounts of all transactions implicated by the given
// groups. A transaction flagged by more than one heuristic is counted once.
func RiskExposure(groups []model.AnomalyGroup) float64 {
	seen := make(map[string]bool)
	var total float64
	for _, g := range groups {
		for _, t := range g.Transactions {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			total += t.Amount
		}
	}
	return total
}
