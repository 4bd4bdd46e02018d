package portfolio

import (
	"math"

	"portfolio-rebalancer-go/internal/models"
)

// RetirementAge is the age every plan targets.
const RetirementAge = 65

// RetirementPlan is a rule-of-thumb savings plan for one investor.
type RetirementPlan struct {
	Age               int     `json:"age"`
	RiskCapacity      string  `json:"risk_capacity"`
	YearsToRetirement int     `json:"years_to_retirement"`
	PortfolioValue    float64 `json:"portfolio_value"`
	TargetFund        float64 `json:"target_retirement_fund"`
	MonthlySavings    float64 `json:"monthly_savings_needed"`
	StockPct          int     `json:"stock_pct"`
	BondPct           int     `json:"bond_pct"`
	EmergencyMonths   int     `json:"emergency_fund_months"`
	Progress          float64 `json:"progress_pct"`
}

// PlanRetirement targets ten times annual income by age 65 and spreads the
// shortfall evenly over the remaining months.
func PlanRetirement(p models.InvestorProfile, portfolioValue float64) RetirementPlan {
	years := max(0, RetirementAge-p.Age)
	target := p.AnnualIncome * 10

	plan := RetirementPlan{
		Age:               p.Age,
		RiskCapacity:      p.RiskCapacity,
		YearsToRetirement: years,
		PortfolioValue:    portfolioValue,
		TargetFund:        target,
		StockPct:          70 - p.Age,
		BondPct:           p.Age - 10,
		EmergencyMonths:   6,
	}
	if years > 0 {
		plan.MonthlySavings = math.Max(0, (target-portfolioValue)/float64(years*12))
	}
	if p.RiskCapacity == "Low" {
		plan.EmergencyMonths = 3
	}
	if target > 0 {
		plan.Progress = math.Min(100, portfolioValue/target*100)
	}
	return plan
}
