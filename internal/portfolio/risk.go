package portfolio

import (
	"fmt"
	"sort"

	"portfolio-rebalancer-go/internal/models"
)

// Risk levels of a RiskReport.
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// RiskShare is the share of portfolio value carrying one risk rating.
type RiskShare struct {
	Rating  string  `json:"rating"`
	Percent float64 `json:"percent"`
}

// RiskReport summarises the risk profile of a set of holdings.
type RiskReport struct {
	TotalValue      float64     `json:"total_value"`
	Score           float64     `json:"risk_score"`
	Level           string      `json:"risk_level"`
	Distribution    []RiskShare `json:"risk_distribution"`
	HighRiskCount   int         `json:"high_risk_count"`
	VolatileCount   int         `json:"volatile_count"`
	StressLoss      float64     `json:"stress_loss"`
	Recommendations []string    `json:"recommendations"`
}

// RiskAlert flags a single risk finding.
type RiskAlert struct {
	Level            string   `json:"level"`
	Type             string   `json:"type"`
	Message          string   `json:"message"`
	Recommendations  []string `json:"recommendations"`
	AffectedHoldings []string `json:"affected_holdings"`
}

// AnalyzeRisk scores holdings by the value share of each risk rating plus a
// penalty of 5 points per holding down more than 15%. A 20% market drop is
// modelled as a 15% loss of total value.
func AnalyzeRisk(holdings []models.Holding) RiskReport {
	report := RiskReport{Distribution: []RiskShare{}, Recommendations: []string{}}
	for _, h := range holdings {
		report.TotalValue += h.CurrentValue
	}

	shares := make(map[string]float64)
	var order []string
	for _, h := range holdings {
		if h.RiskRating == "High" || h.RiskRating == "Very High" {
			report.HighRiskCount++
		}
		if h.ReturnPercent < -15 {
			report.VolatileCount++
		}
		if report.TotalValue <= 0 {
			continue
		}
		if _, ok := shares[h.RiskRating]; !ok {
			order = append(order, h.RiskRating)
		}
		shares[h.RiskRating] += h.CurrentValue / report.TotalValue * 100
	}
	for _, r := range order {
		report.Distribution = append(report.Distribution, RiskShare{Rating: r, Percent: shares[r]})
	}
	sort.SliceStable(report.Distribution, func(i, j int) bool {
		return report.Distribution[i].Percent > report.Distribution[j].Percent
	})

	report.Score = shares["Very High"]*2 + shares["High"]*1.5 + shares["Medium"] + float64(report.VolatileCount)*5
	switch {
	case report.Score < 30:
		report.Level = RiskLow
	case report.Score < 60:
		report.Level = RiskMedium
	default:
		report.Level = RiskHigh
	}

	if report.Score > 70 {
		report.Recommendations = append(report.Recommendations, "Consider reducing exposure to high-risk assets")
	}
	if report.VolatileCount > 2 {
		report.Recommendations = append(report.Recommendations, "Review holdings with significant losses")
	}
	if shares["Very Low"] < 20 {
		report.Recommendations = append(report.Recommendations, "Add some stable, low-risk holdings for balance")
	}

	report.StressLoss = report.TotalValue * 0.15
	return report
}

// ConcentrationAlerts flags every holding worth more than thresholdPct of the
// portfolio.
func ConcentrationAlerts(holdings []models.Holding, thresholdPct float64) []RiskAlert {
	total := 0.0
	for _, h := range holdings {
		total += h.CurrentValue
	}
	alerts := []RiskAlert{}
	if total <= 0 {
		return alerts
	}
	for _, h := range holdings {
		pct := h.CurrentValue / total * 100
		if pct <= thresholdPct {
			continue
		}
		alerts = append(alerts, RiskAlert{
			Level:            "medium",
			Type:             "concentration_risk",
			Message:          fmt.Sprintf("%s represents %.1f%% of your portfolio", h.Name, pct),
			Recommendations:  []string{"Consider reducing position size", "Diversify into other assets"},
			AffectedHoldings: []string{h.Name},
		})
	}
	return alerts
}
