package advisor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"portfolio-rebalancer-go/internal/models"
	"portfolio-rebalancer-go/internal/portfolio"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// usd renders an amount as US dollars, e.g. "$1,234.50".
func usd(amount float64) string {
	cents := decimal.NewFromFloat(amount).Shift(2).Round(0).IntPart()
	return money.New(cents, money.USD).Display()
}

func bullets(lines []string) string {
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("• ")
		b.WriteString(l)
	}
	return b.String()
}

func (a *Advisor) generalReply(ctx context.Context, userID string) (string, error) {
	holdings, err := a.store.Holdings(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(holdings) == 0 {
		return "I don't see any holdings for your portfolio yet. Would you like help getting started with investing?", nil
	}

	total, sumReturn := 0.0, 0.0
	profitable := 0
	top, worst := holdings[0], holdings[0]
	for _, h := range holdings {
		total += h.CurrentValue
		sumReturn += h.ReturnPercent
		if h.ReturnPercent > 0 {
			profitable++
		}
		if h.ReturnPercent > top.ReturnPercent {
			top = h
		}
		if h.ReturnPercent < worst.ReturnPercent {
			worst = h
		}
	}
	avg := sumReturn / float64(len(holdings))

	return fmt.Sprintf(`**Portfolio Overview**

**Portfolio Value:** %s
**Average Return:** %.1f%%
**Total Holdings:** %d funds

**Top Performer:** %s (%.1f%%)
**Needs Attention:** %s (%.1f%%)

**Quick Insights:**
%s

What would you like to explore further?`,
		usd(total), avg, len(holdings),
		top.Name, top.ReturnPercent,
		worst.Name, worst.ReturnPercent,
		bullets([]string{
			fmt.Sprintf("Your portfolio has %d profitable positions", profitable),
			"Consider rebalancing if you haven't done so in the last quarter",
			"I can help you analyze specific holdings or suggest improvements",
		})), nil
}

func (a *Advisor) rebalancingReply(ctx context.Context, userID string) (string, error) {
	holdings, err := a.store.Holdings(ctx, userID)
	if err != nil {
		return "", err
	}
	var losers []models.Holding
	for _, h := range holdings {
		if h.PerformanceRating.Underperforming() {
			losers = append(losers, h)
		}
	}
	sort.SliceStable(losers, func(i, j int) bool { return losers[i].ReturnPercent < losers[j].ReturnPercent })
	if len(losers) > 3 {
		losers = losers[:3]
	}

	funds, err := a.store.TopFunds(ctx, models.Excellent, 3)
	if err != nil {
		return "", err
	}

	sellLines := []string{"Your holdings are performing well!"}
	if len(losers) > 0 {
		sellLines = sellLines[:0]
		for _, h := range losers {
			sellLines = append(sellLines, fmt.Sprintf("**%s** (%.1f%% return) - %s", h.Name, h.ReturnPercent, h.PerformanceRating))
		}
	}
	buyLines := []string{"I'll need to analyze more options for you"}
	if len(funds) > 0 {
		buyLines = buyLines[:0]
		for _, f := range funds {
			buyLines = append(buyLines, fmt.Sprintf("**%s** (%.1f%% annual return)", f.Name, f.Returns1Y))
		}
	}

	return fmt.Sprintf(`**Rebalancing Analysis**

**Consider Selling:**
%s

**Consider Buying:**
%s

**Recommendation:**
Based on your current holdings, I suggest a gradual rebalancing approach. You can use the 'Custom Selection' feature on the rebalancing page to implement these suggestions.

Would you like me to explain why these changes would benefit your portfolio?`,
		bullets(sellLines), bullets(buyLines)), nil
}

func (a *Advisor) riskReply(ctx context.Context, userID string) (string, error) {
	holdings, err := a.store.Holdings(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(holdings) == 0 {
		return "I need your portfolio data to perform a risk analysis.", nil
	}
	report := portfolio.AnalyzeRisk(holdings)

	dist := make([]string, 0, len(report.Distribution))
	for _, s := range report.Distribution {
		dist = append(dist, fmt.Sprintf("%s: %.1f%%", s.Rating, s.Percent))
	}
	recs := report.Recommendations
	if len(recs) == 0 {
		recs = []string{"Your risk levels appear well-balanced"}
	}

	return fmt.Sprintf(`**Risk Analysis Report**

**Overall Risk Level:** %s (%.0f/100)

**Risk Distribution:**
%s

**Recommendations:**
%s

**Stress Test Results:**
%s

Would you like specific suggestions to optimize your risk profile?`,
		report.Level, report.Score,
		bullets(dist),
		bullets(recs),
		bullets([]string{
			fmt.Sprintf("In a 20%% market downturn, your portfolio could lose approximately %s", usd(report.StressLoss)),
			fmt.Sprintf("High-risk holdings (%d) may see 30-40%% volatility", report.HighRiskCount),
		})), nil
}

func (a *Advisor) planningReply(ctx context.Context, userID string) (string, error) {
	plan, err := a.Goals(ctx, userID)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`**Financial Planning Analysis**

**Your Profile:**
%s

**Current Status:**
%s

**Recommendations:**
%s

**Next Steps:**
1. Set up automatic monthly investments
2. Review and adjust allocation annually
3. Consider tax-advantaged accounts

Would you like me to help you set specific investment goals?`,
		bullets([]string{
			fmt.Sprintf("Age: %d years", plan.Age),
			fmt.Sprintf("Risk Capacity: %s", plan.RiskCapacity),
			fmt.Sprintf("Years to Retirement: %d", plan.YearsToRetirement),
		}),
		bullets([]string{
			fmt.Sprintf("Portfolio Value: %s", usd(plan.PortfolioValue)),
			fmt.Sprintf("Target Retirement Fund: %s", usd(plan.TargetFund)),
		}),
		bullets([]string{
			fmt.Sprintf("Monthly Savings Goal: %s", usd(plan.MonthlySavings)),
			fmt.Sprintf("Asset Allocation: %d%% stocks, %d%% bonds (age-based rule)", plan.StockPct, plan.BondPct),
			fmt.Sprintf("Emergency Fund: %d months of expenses", plan.EmergencyMonths),
		})), nil
}

func (a *Advisor) marketReply(_ context.Context, _ string) (string, error) {
	var b strings.Builder
	for _, in := range TopInsights(3) {
		fmt.Fprintf(&b, "\n**%s** (%s)\n%s\n", in.Title, in.Impact, in.Content)
	}
	return fmt.Sprintf(`**Market Intelligence Update**
%s
Would you like me to analyze how these trends specifically affect your holdings?`, b.String()), nil
}
