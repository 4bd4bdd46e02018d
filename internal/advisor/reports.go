package advisor

import (
	"context"
	"fmt"
	"math"

	"portfolio-rebalancer-go/internal/models"
	"portfolio-rebalancer-go/internal/portfolio"

	"go.uber.org/zap"
)

// ConcentrationThreshold is the share of a portfolio above which a single
// holding is flagged.
const ConcentrationThreshold = 30

// Customer is one row of the advisor's customer overview.
type Customer struct {
	UserID         string             `json:"user_id"`
	FullName       string             `json:"full_name"`
	Age            int                `json:"age"`
	City           string             `json:"city"`
	Category       string             `json:"investor_category"`
	AnnualIncome   float64            `json:"annual_income"`
	RiskCapacity   string             `json:"risk_capacity"`
	PortfolioValue float64            `json:"portfolio_value"`
	HoldingsCount  int                `json:"holdings_count"`
	AvgReturn      float64            `json:"avg_return"`
	CurrentEquity  float64            `json:"current_equity"`
	CurrentBond    float64            `json:"current_bond"`
	CurrentAlt     float64            `json:"current_alternative"`
	TargetEquity   float64            `json:"target_equity"`
	EquityDrift    float64            `json:"equity_drift"`
	Priority       portfolio.Priority `json:"rebalancing_priority"`

	equityPct float64
}

// PersonalizedScenario is a rule-generated recommendation for one customer.
type PersonalizedScenario struct {
	ID             string   `json:"scenario_id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Recommendation string   `json:"recommendation"`
	ActionItems    []string `json:"action_items"`
	ImpactLevel    string   `json:"impact_level"`
	Urgency        string   `json:"urgency"`
}

// MaxPersonalized caps the number of personalized scenarios per customer.
const MaxPersonalized = 3

// Customers summarises every investor: value, returns and equity drift.
func (a *Advisor) Customers(ctx context.Context) ([]Customer, error) {
	profiles, err := a.store.Investors(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Customer, 0, len(profiles))
	for _, p := range profiles {
		c, err := a.customer(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (a *Advisor) customer(ctx context.Context, p models.InvestorProfile) (Customer, error) {
	model, err := a.store.AllocationModel(ctx, p.AllocationModel)
	if err != nil {
		return Customer{}, err
	}
	holdings, err := a.store.Holdings(ctx, p.UserID)
	if err != nil {
		return Customer{}, err
	}

	current, total := portfolio.CurrentAllocation(holdings)
	target := portfolio.TargetAllocation(p, model)
	drift := portfolio.Drift(current, target, models.Equity)

	avg := 0.0
	for _, h := range holdings {
		avg += h.ReturnPercent
	}
	if len(holdings) > 0 {
		avg /= float64(len(holdings))
	}

	return Customer{
		UserID:         p.UserID,
		FullName:       p.FullName,
		Age:            p.Age,
		City:           p.City,
		Category:       p.InvestorCategory,
		AnnualIncome:   p.AnnualIncome,
		RiskCapacity:   p.RiskCapacity,
		PortfolioValue: total,
		HoldingsCount:  len(holdings),
		AvgReturn:      avg,
		CurrentEquity:  portfolio.RoundPct(current[models.Equity]),
		CurrentBond:    portfolio.RoundPct(current[models.Bond]),
		CurrentAlt:     portfolio.RoundPct(current[models.Alternative]),
		TargetEquity:   target[models.Equity],
		EquityDrift:    portfolio.RoundPct(drift.Drift),
		Priority:       drift.Priority,
		equityPct:      current[models.Equity],
	}, nil
}

// PersonalizedScenarios derives up to three recommendations for one customer
// from equity drift, average return, age and investor category.
func (a *Advisor) PersonalizedScenarios(ctx context.Context, userID string) ([]PersonalizedScenario, error) {
	p, err := a.store.Investor(ctx, userID)
	if err != nil {
		return nil, err
	}
	c, err := a.customer(ctx, *p)
	if err != nil {
		return nil, err
	}
	return personalize(c), nil
}

func personalize(c Customer) []PersonalizedScenario {
	id := func(n int) string { return fmt.Sprintf("PERS_%s_%03d", c.UserID, n) }
	out := []PersonalizedScenario{}

	switch c.Priority {
	case portfolio.PriorityHigh:
		out = append(out, PersonalizedScenario{
			ID:             id(1),
			Title:          "Critical Allocation Rebalancing for " + c.FullName,
			Description:    fmt.Sprintf("Portfolio shows %.1f%% equity drift from target. Current equity allocation at %.1f%% vs %.0f%% target.", c.EquityDrift, c.CurrentEquity, c.TargetEquity),
			Recommendation: "Immediate rebalancing required to align with investment objectives",
			ActionItems:    driftActions(c),
			ImpactLevel:    "High",
			Urgency:        "Immediate",
		})
	case portfolio.PriorityMedium:
		out = append(out, PersonalizedScenario{
			ID:             id(1),
			Title:          "Moderate Rebalancing for " + c.FullName,
			Description:    fmt.Sprintf("Portfolio showing %.1f%% allocation drift. Gradual rebalancing recommended.", c.EquityDrift),
			Recommendation: "Schedule rebalancing within next quarter",
			ActionItems:    driftActions(c),
			ImpactLevel:    "Medium",
			Urgency:        "Medium",
		})
	}

	switch {
	case c.AvgReturn < 0:
		out = append(out, PersonalizedScenario{
			ID:             id(2),
			Title:          "Performance Recovery Plan for " + c.FullName,
			Description:    fmt.Sprintf("Portfolio showing %.1f%% average return. Underperforming holdings need attention.", c.AvgReturn),
			Recommendation: "Review and replace underperforming assets",
			ActionItems: []string{
				"Identify worst performing funds (bottom 20%)",
				"Research replacement options with better track records",
				"Gradually exit poor performers to avoid tax impact",
				"Reinvest in quality index funds or sector leaders",
			},
			ImpactLevel: "High",
			Urgency:     "High",
		})
	case c.AvgReturn > 15:
		out = append(out, PersonalizedScenario{
			ID:             id(2),
			Title:          "Profit Taking Strategy for " + c.FullName,
			Description:    fmt.Sprintf("Excellent portfolio performance at %.1f%% return. Consider profit-taking opportunities.", c.AvgReturn),
			Recommendation: "Lock in gains from top performers while maintaining growth exposure",
			ActionItems: []string{
				"Identify top 20% performers for partial profit-taking",
				"Rebalance gains into underweight sectors",
				"Consider tax-loss harvesting opportunities",
				"Maintain core growth positions",
			},
			ImpactLevel: "Medium",
			Urgency:     "Low",
		})
	}

	switch {
	case c.Age >= 50:
		out = append(out, PersonalizedScenario{
			ID:             id(3),
			Title:          "Pre-Retirement Strategy for " + c.FullName,
			Description:    fmt.Sprintf("At age %d, consider shifting to more conservative allocation for capital preservation.", c.Age),
			Recommendation: "Gradually reduce equity exposure and increase bond allocation",
			ActionItems: []string{
				fmt.Sprintf("Target equity allocation of %d%% (current: %.1f%%)", 100-c.Age, c.CurrentEquity),
				"Increase bond allocation by 5-10%",
				"Add inflation-protected securities (TIPS)",
				"Consider dividend-focused equity funds",
			},
			ImpactLevel: "Medium",
			Urgency:     "Low",
		})
	case c.Age <= 35:
		out = append(out, PersonalizedScenario{
			ID:             id(3),
			Title:          "Growth Acceleration for " + c.FullName,
			Description:    fmt.Sprintf("At age %d, you can afford higher risk for potentially higher returns.", c.Age),
			Recommendation: "Consider increasing growth allocation for long-term wealth building",
			ActionItems: []string{
				"Increase equity allocation to 80-90%",
				"Add emerging market exposure for diversification",
				"Consider small-cap and growth funds",
				"Minimize bond allocation to 10-15%",
			},
			ImpactLevel: "Medium",
			Urgency:     "Low",
		})
	}

	switch {
	case c.Category == "Conservative" && c.CurrentEquity > 40:
		out = append(out, PersonalizedScenario{
			ID:             id(4),
			Title:          "Conservative Alignment for " + c.FullName,
			Description:    fmt.Sprintf("Conservative investor with %.1f%% equity exposure may be taking too much risk.", c.CurrentEquity),
			Recommendation: "Align portfolio with conservative risk tolerance",
			ActionItems: []string{
				"Reduce equity allocation to 30-35%",
				"Increase high-grade bond allocation",
				"Add cash equivalents for stability",
				"Focus on dividend-paying blue-chip stocks",
			},
			ImpactLevel: "Medium",
			Urgency:     "Medium",
		})
	case c.Category == "Aggressive" && c.CurrentEquity < 70:
		out = append(out, PersonalizedScenario{
			ID:             id(4),
			Title:          "Aggressive Growth Boost for " + c.FullName,
			Description:    fmt.Sprintf("Aggressive investor with only %.1f%% equity allocation missing growth opportunities.", c.CurrentEquity),
			Recommendation: "Increase equity exposure to match aggressive risk profile",
			ActionItems: []string{
				"Target 75-85% equity allocation",
				"Add growth and small-cap exposure",
				"Consider sector-specific ETFs",
				"Reduce bond allocation to minimum",
			},
			ImpactLevel: "High",
			Urgency:     "Medium",
		})
	}

	if len(out) > MaxPersonalized {
		out = out[:MaxPersonalized]
	}
	return out
}

func driftActions(c Customer) []string {
	gap := c.equityPct - c.TargetEquity
	amount := usd(math.Abs(gap) / 100 * c.PortfolioValue)
	if gap > 0 {
		return []string{
			fmt.Sprintf("Sell approximately %s from equity positions", amount),
			"Target overweight funds with highest gains for tax efficiency",
			"Reinvest proceeds in bond funds to reach target allocation",
			"Consider tax-loss harvesting opportunities",
		}
	}
	return []string{
		fmt.Sprintf("Add approximately %s to equity positions", amount),
		"Source funds from bond positions or new contributions",
		"Focus on underweight sectors or index funds",
		"Dollar-cost average over 30-60 days",
	}
}

// RiskAlerts lists the concentration alerts of one portfolio.
func (a *Advisor) RiskAlerts(ctx context.Context, userID string) ([]portfolio.RiskAlert, error) {
	if _, err := a.store.Investor(ctx, userID); err != nil {
		return nil, err
	}
	holdings, err := a.store.Holdings(ctx, userID)
	if err != nil {
		return nil, err
	}
	return portfolio.ConcentrationAlerts(holdings, ConcentrationThreshold), nil
}

// Goals builds the retirement plan of one investor.
func (a *Advisor) Goals(ctx context.Context, userID string) (*portfolio.RetirementPlan, error) {
	p, err := a.store.Investor(ctx, userID)
	if err != nil {
		return nil, err
	}
	holdings, err := a.store.Holdings(ctx, userID)
	if err != nil {
		return nil, err
	}
	_, total := portfolio.CurrentAllocation(holdings)
	plan := portfolio.PlanRetirement(*p, total)
	return &plan, nil
}

// MonitorPortfolios checks every holder and returns the portfolios that need
// rebalancing.
func (a *Advisor) MonitorPortfolios(ctx context.Context) ([]portfolio.MonitorAlert, error) {
	ids, err := a.store.HolderIDs(ctx)
	if err != nil {
		return nil, err
	}
	alerts := []portfolio.MonitorAlert{}
	for _, id := range ids {
		holdings, err := a.store.Holdings(ctx, id)
		if err != nil {
			return nil, err
		}
		if alert := portfolio.CheckPortfolio(id, holdings); alert != nil {
			alerts = append(alerts, *alert)
		}
	}
	return alerts, nil
}

// MonitorJob runs MonitorPortfolios on a schedule and logs what it finds.
type MonitorJob struct {
	Advisor *Advisor
}

func (j MonitorJob) Name() string { return "portfolio-monitor" }

func (j MonitorJob) Run(ctx context.Context) error {
	alerts, err := j.Advisor.MonitorPortfolios(ctx)
	if err != nil {
		return err
	}
	for _, al := range alerts {
		j.Advisor.logger.Warn("Portfolio needs rebalancing",
			zap.String("user", al.UserID),
			zap.String("priority", al.Priority),
			zap.String("message", al.Message))
	}
	j.Advisor.logger.Info("Portfolio monitor finished", zap.Int("alerts", len(alerts)))
	return nil
}
