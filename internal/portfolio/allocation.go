// Package portfolio holds the pure computations behind the rebalancing
// endpoints: allocation drift, option ranking, scenario composition and the
// risk, planning and monitoring summaries used by the advisor.
package portfolio

import (
	"math"

	"portfolio-rebalancer-go/internal/models"
)

// Priority tiers for allocation drift.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Allocation maps an asset class to a percentage of the portfolio.
type Allocation map[models.AssetClass]float64

// DriftResult compares the current and target share of one asset class.
type DriftResult struct {
	AssetClass models.AssetClass `json:"asset_class"`
	CurrentPct float64           `json:"current_pct"`
	TargetPct  float64           `json:"target_pct"`
	Drift      float64           `json:"drift"`
	Priority   Priority          `json:"priority"`
}

// CurrentAllocation returns the share of total value held in each asset class
// together with the total. Every class is present in the result. A portfolio
// worth nothing yields 0 for every class.
func CurrentAllocation(holdings []models.Holding) (Allocation, float64) {
	byClass := make(map[models.AssetClass]float64, len(models.AssetClasses))
	total := 0.0
	for _, h := range holdings {
		byClass[h.AssetClass] += h.CurrentValue
		total += h.CurrentValue
	}

	alloc := make(Allocation, len(models.AssetClasses))
	for _, c := range models.AssetClasses {
		alloc[c] = 0
	}
	if total <= 0 {
		return alloc, total
	}
	for c, v := range byClass {
		alloc[c] = v / total * 100
	}
	return alloc, total
}

// Drift computes |current − target| for one class and its priority tier.
func Drift(current, target Allocation, class models.AssetClass) DriftResult {
	d := math.Abs(current[class] - target[class])
	return DriftResult{
		AssetClass: class,
		CurrentPct: current[class],
		TargetPct:  target[class],
		Drift:      d,
		Priority:   PriorityFor(d),
	}
}

// PriorityFor tiers a drift magnitude: above 10 is High, above 5 Medium.
func PriorityFor(drift float64) Priority {
	switch {
	case drift > 10:
		return PriorityHigh
	case drift > 5:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// TargetAllocation resolves the target percentages of an investor. The
// assigned master model wins when there is one.
func TargetAllocation(p models.InvestorProfile, model *models.AllocationModel) Allocation {
	if model != nil {
		return Allocation{
			models.Equity:      model.Equities,
			models.Bond:        model.Bonds,
			models.Cash:        model.Cash,
			models.Alternative: model.Alternatives,
		}
	}
	return Allocation{
		models.Equity:      p.EquitiesPercent,
		models.Bond:        p.BondsPercent,
		models.Cash:        p.CashPercent,
		models.Alternative: p.AlternativesPercent,
	}
}

// Rounded returns a copy with every share rounded to one decimal.
func (a Allocation) Rounded() Allocation {
	out := make(Allocation, len(a))
	for c, v := range a {
		out[c] = RoundPct(v)
	}
	return out
}

// RoundPct rounds a percentage to one decimal place.
func RoundPct(v float64) float64 {
	return math.Round(v*10) / 10
}

// PerformanceCategory buckets a holding by its return for display.
func PerformanceCategory(returnPct float64) string {
	switch {
	case returnPct < -10:
		return "poor"
	case returnPct < 0:
		return "below_average"
	case returnPct < 10:
		return "average"
	default:
		return "excellent"
	}
}
