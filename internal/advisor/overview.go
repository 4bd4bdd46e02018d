package advisor

import (
	"context"
	"time"

	"portfolio-rebalancer-go/internal/portfolio"
)

// summaryLength caps the quick insight summary, in runes.
const summaryLength = 200

// PortfolioAnalysis bundles the general, risk and rebalancing replies.
type PortfolioAnalysis struct {
	Portfolio   string    `json:"portfolio_analysis"`
	Risk        string    `json:"risk_analysis"`
	Rebalancing string    `json:"rebalancing_suggestions"`
	Timestamp   time.Time `json:"timestamp"`
}

// QuickInsights is the condensed view shown on the dashboard widget.
type QuickInsights struct {
	Summary        string `json:"summary"`
	Recommendation string `json:"recommendation"`
	RiskLevel      string `json:"risk_level"`
	NextAction     string `json:"next_action"`
}

// AgentStatus reports the reply handlers and how much they have been used.
type AgentStatus struct {
	Agents        map[Agent]string `json:"agents"`
	TotalInsights int              `json:"total_insights"`
	ChatMessages  int64            `json:"chat_sessions"`
	LastUpdate    time.Time        `json:"last_update"`
}

// PortfolioAnalysis runs the general, risk and rebalancing handlers for one
// investor.
func (a *Advisor) PortfolioAnalysis(ctx context.Context, userID string) (*PortfolioAnalysis, error) {
	if _, err := a.store.Investor(ctx, userID); err != nil {
		return nil, err
	}
	general, err := a.generalReply(ctx, userID)
	if err != nil {
		return nil, err
	}
	risk, err := a.riskReply(ctx, userID)
	if err != nil {
		return nil, err
	}
	rebalancing, err := a.rebalancingReply(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &PortfolioAnalysis{
		Portfolio:   general,
		Risk:        risk,
		Rebalancing: rebalancing,
		Timestamp:   a.now(),
	}, nil
}

// QuickInsights condenses the general reply and the risk and drift state of
// one investor.
func (a *Advisor) QuickInsights(ctx context.Context, userID string) (*QuickInsights, error) {
	p, err := a.store.Investor(ctx, userID)
	if err != nil {
		return nil, err
	}
	general, err := a.generalReply(ctx, userID)
	if err != nil {
		return nil, err
	}
	c, err := a.customer(ctx, *p)
	if err != nil {
		return nil, err
	}
	holdings, err := a.store.Holdings(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &QuickInsights{
		Summary:        truncate(general, summaryLength),
		Recommendation: "Consider reviewing your portfolio allocation",
		RiskLevel:      portfolio.AnalyzeRisk(holdings).Level,
		NextAction:     "Check rebalancing opportunities",
	}
	switch c.Priority {
	case portfolio.PriorityHigh:
		out.Recommendation = "Rebalance now: equity allocation is far from target"
		out.NextAction = "Review rebalancing scenarios"
	case portfolio.PriorityMedium:
		out.Recommendation = "Plan a gradual rebalance this quarter"
	}
	return out, nil
}

// AgentStatus reports every reply handler as active, with insight and chat
// counts.
func (a *Advisor) AgentStatus(ctx context.Context) (*AgentStatus, error) {
	stats, err := a.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	agents := make(map[Agent]string, len(rules)+1)
	for _, r := range rules {
		agents[r.agent] = "active"
	}
	agents[fallback.agent] = "active"
	agents[AgentRebalancing] = "monitoring"

	return &AgentStatus{
		Agents:        agents,
		TotalInsights: len(insights),
		ChatMessages:  stats.ChatMessages,
		LastUpdate:    a.now(),
	}, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
