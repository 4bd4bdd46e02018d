package coach

import (
	"math"

	"portfolio-rebalancer-go/internal/apperr"
	"portfolio-rebalancer-go/internal/portfolio"
)

// Asset names used by coach allocations.
const (
	AssetStocks       = "stocks"
	AssetBonds        = "bonds"
	AssetAlternatives = "alternatives"
	AssetCash         = "cash"
)

var assets = []string{AssetStocks, AssetBonds, AssetAlternatives, AssetCash}

// Allocation maps an asset name to its percentage of the portfolio.
type Allocation map[string]float64

func (a Allocation) clone() Allocation {
	out := make(Allocation, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// EmotionalState describes how the investor feels about investing right now.
type EmotionalState struct {
	Level           string   `json:"level"`
	Description     string   `json:"description"`
	Recommendations []string `json:"recommendations"`
}

// DecisionPattern lists the traits of a decision-making style.
type DecisionPattern struct {
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
}

// RiskTolerance is the risk level a life event suggests.
type RiskTolerance struct {
	SuggestedLevel string   `json:"suggested_level"`
	Reasoning      string   `json:"reasoning"`
	Adjustments    []string `json:"adjustments"`
}

// BiasWarning flags a behavioral bias seen in recent behavior.
type BiasWarning struct {
	Type       string `json:"type"`
	Warning    string `json:"warning"`
	Mitigation string `json:"mitigation"`
}

// Insights is the behavioral half of an analysis.
type Insights struct {
	EmotionalState  EmotionalState  `json:"emotional_state"`
	DecisionPattern DecisionPattern `json:"decision_pattern"`
	RiskTolerance   RiskTolerance   `json:"risk_tolerance"`
	BiasWarnings    []BiasWarning   `json:"bias_warnings"`
}

// TimelineStrategy adjusts the plan to how soon the life event happens.
type TimelineStrategy struct {
	Priority string   `json:"priority"`
	Actions  []string `json:"actions"`
}

// Recommendations is the portfolio half of an analysis.
type Recommendations struct {
	ImmediateActions  []string          `json:"immediate_actions"`
	AllocationChanges Allocation        `json:"allocation_changes"`
	TimelineStrategy  *TimelineStrategy `json:"timeline_strategy,omitempty"`
	EmergencyFund     int               `json:"emergency_fund"` // months of expenses
}

func analyzeEmotion(b Behavior) EmotionalState {
	switch {
	case b.CurrentEmotion == "very_anxious" || b.CurrentEmotion == "overwhelmed":
		return EmotionalState{
			Level:       "high_stress",
			Description: "High investment anxiety detected - proceed with caution",
			Recommendations: []string{
				"Implement gradual changes to reduce emotional impact",
				"Focus on capital preservation during this period",
				"Consider automatic investing to reduce decision fatigue",
			},
		}
	case b.CurrentEmotion == "very_confident" && b.MarketOutlook == "very_optimistic":
		return EmotionalState{
			Level:       "overconfident",
			Description: "Potential overconfidence bias - maintain balanced approach",
			Recommendations: []string{
				"Review risk tolerance objectively",
				"Maintain diversification principles",
				"Avoid concentration in high-risk assets",
			},
		}
	default:
		return EmotionalState{
			Level:       "balanced",
			Description: "Healthy emotional state for investment decisions",
			Recommendations: []string{
				"Good time for strategic portfolio adjustments",
				"Consider long-term investment goals",
				"Implement systematic rebalancing approach",
			},
		}
	}
}

func analyzeDecisionStyle(style string) DecisionPattern {
	switch style {
	case "analytical":
		return DecisionPattern{
			Strengths:       []string{"Thorough research", "Data-driven decisions"},
			Weaknesses:      []string{"Analysis paralysis", "Overthinking timing"},
			Recommendations: []string{"Set decision deadlines", "Use systematic approaches"},
		}
	case "intuitive":
		return DecisionPattern{
			Strengths:       []string{"Quick adaptation", "Pattern recognition"},
			Weaknesses:      []string{"Emotional bias", "Inconsistent strategy"},
			Recommendations: []string{"Validate decisions with data", "Document rationale"},
		}
	default:
		return DecisionPattern{
			Strengths:       []string{"Risk awareness", "Capital preservation"},
			Weaknesses:      []string{"Missing opportunities", "Inflation risk"},
			Recommendations: []string{"Gradual risk adjustment", "Inflation protection"},
		}
	}
}

func analyzeRiskTolerance(event string) RiskTolerance {
	switch event {
	case "job_loss", "health_expenses", "divorce", "new_baby":
		return RiskTolerance{
			SuggestedLevel: "conservative",
			Reasoning:      "Life event suggests need for stability and liquidity",
			Adjustments:    []string{"Increase emergency fund", "Reduce volatility exposure"},
		}
	case "inheritance", "job_change", "debt_payoff":
		return RiskTolerance{
			SuggestedLevel: "moderate_aggressive",
			Reasoning:      "Improved financial situation allows for growth focus",
			Adjustments:    []string{"Consider growth investments", "Utilize tax-advantaged accounts"},
		}
	default:
		return RiskTolerance{
			SuggestedLevel: "moderate",
			Reasoning:      "Maintain balanced approach",
			Adjustments:    []string{"Regular rebalancing", "Diversified allocation"},
		}
	}
}

func biasWarnings(recent string) []BiasWarning {
	switch recent {
	case "panic_selling":
		return []BiasWarning{{
			Type:       "Loss Aversion",
			Warning:    "Tendency to sell during downturns",
			Mitigation: "Implement automatic rebalancing rules",
		}}
	case "fomo_buying":
		return []BiasWarning{{
			Type:       "Herd Mentality",
			Warning:    "Following market trends without analysis",
			Mitigation: "Stick to long-term allocation strategy",
		}}
	}
	return []BiasWarning{}
}

// AnalyzeBehavior derives behavioral insights from the questionnaire answers.
func AnalyzeBehavior(event LifeEvent, b Behavior) Insights {
	return Insights{
		EmotionalState:  analyzeEmotion(b),
		DecisionPattern: analyzeDecisionStyle(b.DecisionStyle),
		RiskTolerance:   analyzeRiskTolerance(event.PrimaryLifeEvent),
		BiasWarnings:    biasWarnings(b.RecentBehavior),
	}
}

type eventStrategy struct {
	actions       []string
	allocation    Allocation
	emergencyFund int
}

var eventStrategies = map[string]eventStrategy{
	"marriage": {
		actions:       []string{"Review joint financial goals", "Update beneficiaries", "Consider joint accounts"},
		allocation:    Allocation{AssetCash: 5, AssetBonds: 25, AssetStocks: 65, AssetAlternatives: 5},
		emergencyFund: 3,
	},
	"new_baby": {
		actions:       []string{"Start education savings", "Increase life insurance", "Build emergency fund"},
		allocation:    Allocation{AssetCash: 10, AssetBonds: 35, AssetStocks: 50, AssetAlternatives: 5},
		emergencyFund: 6,
	},
	"home_purchase": {
		actions:       []string{"Save for down payment", "Reduce portfolio risk", "Consider real estate exposure"},
		allocation:    Allocation{AssetCash: 15, AssetBonds: 40, AssetStocks: 40, AssetAlternatives: 5},
		emergencyFund: 4,
	},
	"job_loss": {
		actions:       []string{"Preserve capital", "Increase liquidity", "Avoid major changes"},
		allocation:    Allocation{AssetCash: 20, AssetBonds: 50, AssetStocks: 25, AssetAlternatives: 5},
		emergencyFund: 12,
	},
	"retirement_planning": {
		actions:       []string{"Maximize retirement contributions", "Tax-advantaged investments", "Review withdrawal strategies"},
		allocation:    Allocation{AssetCash: 5, AssetBonds: 40, AssetStocks: 50, AssetAlternatives: 5},
		emergencyFund: 6,
	},
}

var defaultStrategy = eventStrategy{
	actions:       []string{"Review current allocation", "Maintain diversification"},
	allocation:    Allocation{AssetCash: 5, AssetBonds: 30, AssetStocks: 60, AssetAlternatives: 5},
	emergencyFund: 3,
}

// Recommend builds the portfolio recommendations for a life event. Events
// happening within six months shift five points from stocks to cash.
func Recommend(event LifeEvent) Recommendations {
	strategy, ok := eventStrategies[event.PrimaryLifeEvent]
	if !ok {
		strategy = defaultStrategy
	}
	rec := Recommendations{
		ImmediateActions:  append([]string(nil), strategy.actions...),
		AllocationChanges: strategy.allocation.clone(),
		EmergencyFund:     strategy.emergencyFund,
	}

	switch event.EventTimeline {
	case "happening_now", "next_6_months":
		rec.TimelineStrategy = &TimelineStrategy{
			Priority: "liquidity",
			Actions:  []string{"Increase cash reserves", "Reduce volatility", "Short-term focus"},
		}
		rec.AllocationChanges[AssetCash] += 5
		rec.AllocationChanges[AssetStocks] -= 5
	case "5_plus_years":
		rec.TimelineStrategy = &TimelineStrategy{
			Priority: "growth",
			Actions:  []string{"Focus on equity growth", "Long-term perspective", "Tax efficiency"},
		}
	}
	return rec
}

// Rebalancing scenarios.
const (
	ScenarioImmediate = "immediate"
	ScenarioGradual   = "gradual"
	ScenarioSelective = "selective"
)

// gradualStep is the share of the gap a gradual rebalance closes.
const gradualStep = 0.33

// selectiveThreshold is the gap in points above which a selective rebalance
// moves an asset.
const selectiveThreshold = 10

// Transition moves current toward target according to scenario. Assets the
// target leaves out keep their current value.
func Transition(current, target Allocation, scenario string) (Allocation, error) {
	switch scenario {
	case ScenarioImmediate, ScenarioGradual, ScenarioSelective:
	default:
		return nil, apperr.InvalidInput("unknown scenario %q", scenario)
	}

	out := current.clone()
	for _, asset := range assets {
		want, ok := target[asset]
		if !ok {
			continue
		}
		cur := current[asset]
		switch scenario {
		case ScenarioImmediate:
			out[asset] = want
		case ScenarioGradual:
			out[asset] = portfolio.RoundPct(cur + (want-cur)*gradualStep)
		case ScenarioSelective:
			if math.Abs(want-cur) > selectiveThreshold {
				out[asset] = want
			}
		}
	}
	return out, nil
}

// EmotionalImpact describes how disruptive a scenario feels to the investor.
func EmotionalImpact(scenario string) string {
	switch scenario {
	case ScenarioImmediate:
		return "Medium - Quick changes may cause anxiety"
	case ScenarioGradual:
		return "Low - Gradual changes reduce emotional stress"
	case ScenarioSelective:
		return "Very Low - Minimal disruption to existing positions"
	}
	return "Unknown"
}
