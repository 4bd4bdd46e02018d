package portfolio

import (
	"fmt"
	"math"

	"portfolio-rebalancer-go/internal/models"
)

// Action is one leg of a rebalancing scenario.
type Action struct {
	Type               string  `json:"type"`
	Symbol             string  `json:"fund_symbol"`
	Name               string  `json:"fund_name"`
	Amount             float64 `json:"amount"`
	Units              float64 `json:"units"`
	Reason             string  `json:"reason"`
	CurrentPerformance float64 `json:"current_performance"`
}

// AllocationChange is the indicative shift in allocation a scenario aims for.
type AllocationChange struct {
	Equity float64 `json:"equity_change"`
	Bond   float64 `json:"bond_change"`
	Cash   float64 `json:"cash_change"`
}

// Scenario is one preset rebalancing plan.
type Scenario struct {
	ID               int              `json:"id"`
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	RiskLevel        string           `json:"risk_level"`
	ExpectedReturn   string           `json:"expected_return"`
	Timeframe        string           `json:"timeframe"`
	Cost             string           `json:"cost"`
	Actions          []Action         `json:"actions"`
	TotalSell        float64          `json:"total_sell"`
	TotalBuy         float64          `json:"total_buy"`
	AllocationChange AllocationChange `json:"allocation_change"`
}

// Per-scenario ceilings on a single sell leg.
const (
	ConservativeSellCeiling = 3000
	ModerateSellCeiling     = 5000
	AggressiveSellCeiling   = 8000
)

// buyPlan describes how a scenario spends the proceeds of its sales.
type buyPlan struct {
	minBudget  float64 // proceeds below this are replaced by fallback
	fallback   float64
	funds      int
	minLeg     float64
	reasonText func(f models.Fund) string
}

// ComposeScenarios builds the Conservative, Moderate and Aggressive plans for
// one asset class. recommended must already be ordered best first.
func ComposeScenarios(class models.AssetClass, holdings []models.Holding, recommended []models.Fund) []Scenario {
	return []Scenario{
		conservative(class, holdings, recommended),
		moderate(class, holdings, recommended),
		aggressive(class, holdings, recommended),
	}
}

func conservative(class models.AssetClass, holdings []models.Holding, recommended []models.Fund) Scenario {
	var actions []Action
	for _, h := range holdings {
		if h.PerformanceRating.Underperforming() && h.CurrentValue > 1000 {
			actions = append(actions, sellLeg(h, 0.3, ConservativeSellCeiling,
				fmt.Sprintf("Underperforming with %.1f%% return", h.ReturnPercent)))
		}
	}
	if len(actions) < 2 {
		for _, h := range holdings {
			if h.PerformanceRating == models.Average && h.CurrentValue > 1500 {
				actions = append(actions, sellLeg(h, 0.2, 2000,
					fmt.Sprintf("Rebalancing average performer (%.1f%% return)", h.ReturnPercent)))
				if len(actions) >= 3 {
					break
				}
			}
		}
	}
	actions = appendBuys(actions, recommended, buyPlan{
		minBudget: 1000,
		fallback:  2000,
		funds:     3,
		minLeg:    300,
		reasonText: func(f models.Fund) string {
			return fmt.Sprintf("Strong performer: %.1f%% annual return", f.Returns1Y)
		},
	})

	return finish(Scenario{
		ID:             1,
		Name:           "Conservative Rebalancing",
		Description:    "Gradual rebalancing with minimal risk, focusing on reducing underperforming assets",
		RiskLevel:      "Low",
		ExpectedReturn: "+2.5% annually",
		Timeframe:      "6-12 months",
		Cost:           "$25-40",
		Actions:        actions,
	}, class, AllocationChange{Equity: 2, Bond: 1, Cash: -3})
}

func moderate(class models.AssetClass, holdings []models.Holding, recommended []models.Fund) Scenario {
	var actions []Action
	for _, h := range holdings {
		if h.PerformanceRating.Underperforming() && h.CurrentValue > 800 {
			actions = append(actions, sellLeg(h, 0.6, ModerateSellCeiling,
				fmt.Sprintf("Poor performance (%.1f%%), better opportunities available", h.ReturnPercent)))
		}
	}
	for _, h := range holdings {
		if h.PerformanceRating == models.Average && h.CurrentValue > 2000 && len(actions) < 5 {
			actions = append(actions, sellLeg(h, 0.4, 3000,
				"Reallocating from average performer to optimize returns"))
		}
	}
	actions = appendBuys(actions, recommended, buyPlan{
		minBudget: 1500,
		fallback:  3000,
		funds:     4,
		minLeg:    400,
		reasonText: func(f models.Fund) string {
			return fmt.Sprintf("Excellent growth potential: %.1f%% return, %s rated", f.Returns1Y, f.PerformanceRating)
		},
	})

	return finish(Scenario{
		ID:             2,
		Name:           "Moderate Rebalancing",
		Description:    "Balanced approach with strategic reallocation to optimize performance",
		RiskLevel:      "Medium",
		ExpectedReturn: "+4.2% annually",
		Timeframe:      "3-6 months",
		Cost:           "$40-65",
		Actions:        actions,
	}, class, AllocationChange{Equity: 3, Bond: 2, Cash: -5})
}

func aggressive(class models.AssetClass, holdings []models.Holding, recommended []models.Fund) Scenario {
	var actions []Action
	for _, h := range holdings {
		if h.CurrentValue <= 500 {
			continue
		}
		var fraction float64
		switch {
		case h.PerformanceRating.Underperforming():
			fraction = 0.8
		case h.PerformanceRating == models.Average:
			fraction = 0.5
		default:
			continue
		}
		actions = append(actions, sellLeg(h, fraction, AggressiveSellCeiling,
			fmt.Sprintf("Maximizing portfolio optimization (%.1f%% → targeting 15%%+ returns)", h.ReturnPercent)))
	}
	actions = appendBuys(actions, recommended, buyPlan{
		minBudget: 2000,
		fallback:  5000,
		funds:     5,
		minLeg:    500,
		reasonText: func(f models.Fund) string {
			return fmt.Sprintf("Top-tier opportunity: %.1f%% annual returns, %s rating", f.Returns1Y, f.PerformanceRating)
		},
	})

	return finish(Scenario{
		ID:             3,
		Name:           "Aggressive Rebalancing",
		Description:    "Maximum optimization for growth, substantial portfolio restructuring",
		RiskLevel:      "High",
		ExpectedReturn: "+6.8% annually",
		Timeframe:      "1-3 months",
		Cost:           "$65-100",
		Actions:        actions,
	}, class, AllocationChange{Equity: 5, Bond: 3, Cash: -8})
}

func sellLeg(h models.Holding, fraction, ceiling float64, reason string) Action {
	amount := math.Min(h.CurrentValue*fraction, ceiling)
	return Action{
		Type:               models.SideSell,
		Symbol:             h.Symbol,
		Name:               h.Name,
		Amount:             amount,
		Units:              unitsFor(amount, h.CurrentPrice),
		Reason:             reason,
		CurrentPerformance: h.ReturnPercent,
	}
}

func appendBuys(actions []Action, recommended []models.Fund, plan buyPlan) []Action {
	if len(recommended) == 0 {
		return actions
	}
	budget := sumSide(actions, models.SideSell)
	if budget < plan.minBudget {
		budget = plan.fallback
	}
	leg := budget / float64(plan.funds)
	if leg <= plan.minLeg {
		return actions
	}
	for i, f := range recommended {
		if i == plan.funds {
			break
		}
		actions = append(actions, Action{
			Type:               models.SideBuy,
			Symbol:             f.Symbol,
			Name:               f.Name,
			Amount:             leg,
			Units:              unitsFor(leg, f.CurrentPrice),
			Reason:             plan.reasonText(f),
			CurrentPerformance: f.Returns1Y,
		})
	}
	return actions
}

// finish fills the totals and keeps only the allocation shift of the
// requested class.
func finish(s Scenario, class models.AssetClass, change AllocationChange) Scenario {
	if s.Actions == nil {
		s.Actions = []Action{}
	}
	s.TotalSell = sumSide(s.Actions, models.SideSell)
	s.TotalBuy = sumSide(s.Actions, models.SideBuy)
	switch class {
	case models.Equity:
		s.AllocationChange.Equity = change.Equity
	case models.Bond:
		s.AllocationChange.Bond = change.Bond
	case models.Cash:
		s.AllocationChange.Cash = change.Cash
	}
	return s
}

func sumSide(actions []Action, side string) float64 {
	total := 0.0
	for _, a := range actions {
		if a.Type == side {
			total += a.Amount
		}
	}
	return total
}

func unitsFor(amount, price float64) float64 {
	if price <= 0 {
		return 0
	}
	return amount / price
}
