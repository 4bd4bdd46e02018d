package advisor

import "sort"

// Insight is a curated market commentary item.
type Insight struct {
	Type      string  `json:"type"`
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	Impact    string  `json:"impact"`
	Relevance float64 `json:"relevance_score"`
}

// insights is a fixed editorial catalog, not live data.
var insights = []Insight{
	{
		Type:      "trend",
		Title:     "AI Revolution Driving Tech Giants",
		Content:   "NVIDIA, Microsoft, and Google leading the AI transformation. Portfolio exposure to AI stocks showing exceptional returns. Recommend maintaining tech allocation.",
		Impact:    "positive",
		Relevance: 0.95,
	},
	{
		Type:      "alert",
		Title:     "Growth Stock Correction in ARK Funds",
		Content:   "ARK Innovation (ARKK) and ARK Genomics (ARKG) down 66% and 31% respectively. High-risk growth portfolios need immediate rebalancing to limit further losses.",
		Impact:    "negative",
		Relevance: 0.90,
	},
	{
		Type:      "news",
		Title:     "Federal Reserve Interest Rate Policy",
		Content:   "Fed maintaining current rates but signals potential cuts. Bond funds like BND and VTEB positioned well for rate environment. Consider increasing bond allocation.",
		Impact:    "neutral",
		Relevance: 0.85,
	},
	{
		Type:      "opportunity",
		Title:     "Value Opportunity in Healthcare",
		Content:   "Healthcare sector undervalued after a recent selloff. Healthcare ETFs showing strong fundamentals. Consider accumulating positions.",
		Impact:    "positive",
		Relevance: 0.80,
	},
	{
		Type:      "warning",
		Title:     "Speculative Stock Risk Alert",
		Content:   "Speculative names showing high volatility and deep drawdowns. Recommend reducing speculative positions to protect capital.",
		Impact:    "negative",
		Relevance: 0.85,
	},
	{
		Type:      "trend",
		Title:     "Total Market Index Strength",
		Content:   "Total market and S&P 500 funds (VTI, VFIAX, SPY) showing consistent gains. Core equity positions performing well across all risk profiles.",
		Impact:    "positive",
		Relevance: 0.88,
	},
	{
		Type:      "strategy",
		Title:     "Rebalancing Opportunity Window",
		Content:   "Current market conditions present optimal rebalancing opportunities. High performers can be trimmed while quality stocks are available at discounts.",
		Impact:    "neutral",
		Relevance: 0.92,
	},
	{
		Type:      "outlook",
		Title:     "International Markets Lagging",
		Content:   "International funds (VTIAX, EFA) underperforming US markets by 10-15%. Consider reducing international exposure until global economic uncertainty resolves.",
		Impact:    "negative",
		Relevance: 0.75,
	},
}

// MarketInsights returns the whole catalog, most relevant first.
func MarketInsights() []Insight {
	out := append([]Insight(nil), insights...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Relevance > out[j].Relevance })
	return out
}

// TopInsights returns up to n catalog items with relevance above 0.7, in
// catalog order.
func TopInsights(n int) []Insight {
	var out []Insight
	for _, in := range insights {
		if in.Relevance > 0.7 {
			out = append(out, in)
		}
		if len(out) == n {
			break
		}
	}
	return out
}
