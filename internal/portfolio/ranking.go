package portfolio

import (
	"fmt"
	"math"
	"sort"

	"portfolio-rebalancer-go/internal/config"
	"portfolio-rebalancer-go/internal/models"
)

// sellWeights favour selling the worst rated holdings first.
var sellWeights = map[models.Rating]float64{
	models.Poor:         10,
	models.BelowAverage: 8,
	models.Average:      5,
	models.Good:         3,
	models.Excellent:    1,
}

// buyWeights favour buying the best rated funds first.
var buyWeights = map[models.Rating]float64{
	models.Excellent:    10,
	models.Good:         8,
	models.Average:      5,
	models.BelowAverage: 3,
	models.Poor:         1,
}

// Unknown ratings score as Average on both sides.
const unratedWeight = 5

// SellOption is a holding proposed for (partial) sale.
type SellOption struct {
	ID                string        `json:"id"`
	Side              string        `json:"side"`
	Symbol            string        `json:"fund_symbol"`
	Name              string        `json:"fund_name"`
	CurrentValue      float64       `json:"current_value"`
	Units             float64       `json:"units_held"`
	ReturnPercent     float64       `json:"return_percent"`
	PerformanceRating models.Rating `json:"performance_rating"`
	RiskRating        string        `json:"risk_rating"`
	Amount            float64       `json:"suggested_sell_amount"`
	Reason            string        `json:"reason"`
	Score             float64       `json:"priority_score"`
}

// BuyOption is a fund proposed for purchase.
type BuyOption struct {
	ID                string        `json:"id"`
	Side              string        `json:"side"`
	Symbol            string        `json:"fund_symbol"`
	Name              string        `json:"fund_name"`
	CurrentPrice      float64       `json:"current_price"`
	Returns1Y         float64       `json:"returns_1year"`
	Returns3Y         float64       `json:"returns_3year"`
	PerformanceRating models.Rating `json:"performance_rating"`
	RiskRating        string        `json:"risk_rating"`
	ExpenseRatio      float64       `json:"expense_ratio"`
	Amount            float64       `json:"suggested_buy_amount"`
	Reason            string        `json:"reason"`
	Score             float64       `json:"priority_score"`
}

// SellScore ranks a holding for sale: the rating weight plus half of any loss.
func SellScore(h models.Holding) float64 {
	w, ok := sellWeights[h.PerformanceRating]
	if !ok {
		w = unratedWeight
	}
	return w + math.Max(0, -h.ReturnPercent)*0.5
}

// BuyScore ranks a fund for purchase: the rating weight plus a fifth of its
// one-year return.
func BuyScore(f models.Fund) float64 {
	w, ok := buyWeights[f.PerformanceRating]
	if !ok {
		w = unratedWeight
	}
	return w + f.Returns1Y*0.2
}

// RankSellOptions proposes sales among holdings worth more than the
// configured floor, highest score first. Equal scores keep input order.
func RankSellOptions(holdings []models.Holding, cfg config.Rebalance) []SellOption {
	out := make([]SellOption, 0, len(holdings))
	for _, h := range holdings {
		if h.CurrentValue <= cfg.MinSellValue {
			continue
		}
		out = append(out, SellOption{
			ID:                "sell_" + h.Symbol,
			Side:              models.SideSell,
			Symbol:            h.Symbol,
			Name:              h.Name,
			CurrentValue:      h.CurrentValue,
			Units:             h.Units,
			ReturnPercent:     h.ReturnPercent,
			PerformanceRating: h.PerformanceRating,
			RiskRating:        h.RiskRating,
			Amount:            math.Min(h.CurrentValue*cfg.SellFraction, cfg.MaxSellAmount),
			Reason:            sellReason(h),
			Score:             SellScore(h),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return truncate(out, cfg.MaxOptions)
}

// RankBuyOptions proposes purchases among Excellent and Good funds, highest
// score first. Every option suggests the same flat amount.
func RankBuyOptions(funds []models.Fund, cfg config.Rebalance) []BuyOption {
	out := make([]BuyOption, 0, len(funds))
	for _, f := range funds {
		if f.PerformanceRating != models.Excellent && f.PerformanceRating != models.Good {
			continue
		}
		out = append(out, BuyOption{
			ID:                "buy_" + f.Symbol,
			Side:              models.SideBuy,
			Symbol:            f.Symbol,
			Name:              f.Name,
			CurrentPrice:      f.CurrentPrice,
			Returns1Y:         f.Returns1Y,
			Returns3Y:         f.Returns3Y,
			PerformanceRating: f.PerformanceRating,
			RiskRating:        f.RiskRating,
			ExpenseRatio:      f.ExpenseRatio,
			Amount:            cfg.DefaultBuyAmount,
			Reason:            buyReason(f),
			Score:             BuyScore(f),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return truncate(out, cfg.MaxOptions)
}

func truncate[T any](s []T, n int) []T {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}

func sellReason(h models.Holding) string {
	switch h.PerformanceRating {
	case models.Poor:
		return fmt.Sprintf("Poor performance: %.1f%% return, dragging portfolio down", h.ReturnPercent)
	case models.BelowAverage:
		return fmt.Sprintf("Underperforming: %.1f%% return, better alternatives available", h.ReturnPercent)
	case models.Average:
		return fmt.Sprintf("Average performance: %.1f%% return, room for optimization", h.ReturnPercent)
	default:
		return fmt.Sprintf("Rebalancing opportunity: %.1f%% return, consider taking profits", h.ReturnPercent)
	}
}

func buyReason(f models.Fund) string {
	switch f.PerformanceRating {
	case models.Excellent:
		return fmt.Sprintf("Top performer: %.1f%% annual return, excellent track record", f.Returns1Y)
	case models.Good:
		return fmt.Sprintf("Strong performer: %.1f%% annual return, solid growth potential", f.Returns1Y)
	default:
		return fmt.Sprintf("Growth opportunity: %.1f%% annual return, good diversification", f.Returns1Y)
	}
}
