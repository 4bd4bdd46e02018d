package rebalance

import (
	"context"
	"errors"
	"strings"

	"portfolio-rebalancer-go/internal/apperr"
	"portfolio-rebalancer-go/internal/models"
	"portfolio-rebalancer-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	amountPlaces = 2
	unitPlaces   = 8
)

// Positions worth no more than this after a sale are closed.
var dustValue = decimal.RequireFromString("0.005")

// TradeAction is one leg of an executed scenario.
type TradeAction struct {
	Type   string  `json:"type"`
	Symbol string  `json:"fund_symbol"`
	Amount float64 `json:"amount"`
	Units  float64 `json:"units"`
}

// ExecuteRequest applies the actions of a chosen scenario.
type ExecuteRequest struct {
	UserID     string        `json:"user_id"`
	ScenarioID int           `json:"scenario_id"`
	AssetClass string        `json:"asset_class"`
	Actions    []TradeAction `json:"actions"`
}

// CustomOrder is one user-selected sell or buy.
type CustomOrder struct {
	Symbol string  `json:"fund_symbol"`
	Amount float64 `json:"amount"`
}

// CustomRequest applies options the user picked by hand.
type CustomRequest struct {
	UserID        string        `json:"user_id"`
	SelectedSells []CustomOrder `json:"selected_sells"`
	SelectedBuys  []CustomOrder `json:"selected_buys"`
}

// Summary totals an execution.
type Summary struct {
	TotalSell float64 `json:"total_sell_amount"`
	TotalBuy  float64 `json:"total_buy_amount"`
	NetChange float64 `json:"net_change"`
	NumSells  int     `json:"num_sells"`
	NumBuys   int     `json:"num_buys"`
}

// ExecutionResult describes what an execution changed.
type ExecutionResult struct {
	ExecutionID string                `json:"execution_id"`
	UserID      string                `json:"user_id"`
	Summary     Summary               `json:"summary"`
	Entries     []models.ExecutionLog `json:"actions"`
}

// execution is the normalised input shared by both request kinds.
type execution struct {
	userID     string
	kind       string
	scenarioID int
	class      models.AssetClass
	actions    []TradeAction
}

// Execute applies a scenario's actions in a single transaction.
func (s *Service) Execute(ctx context.Context, req ExecuteRequest) (*ExecutionResult, error) {
	ex := execution{
		userID:     strings.TrimSpace(req.UserID),
		kind:       models.ExecutionScenario,
		scenarioID: req.ScenarioID,
		actions:    req.Actions,
	}
	if req.AssetClass != "" {
		class, ok := models.ParseAssetClass(req.AssetClass)
		if !ok {
			return nil, apperr.InvalidInput("unknown asset class %q", req.AssetClass)
		}
		ex.class = class
	}
	return s.execute(ctx, ex)
}

// ExecuteCustom applies hand-picked sells, then buys, in a single transaction.
func (s *Service) ExecuteCustom(ctx context.Context, req CustomRequest) (*ExecutionResult, error) {
	actions := make([]TradeAction, 0, len(req.SelectedSells)+len(req.SelectedBuys))
	for _, o := range req.SelectedSells {
		actions = append(actions, TradeAction{Type: models.SideSell, Symbol: o.Symbol, Amount: o.Amount})
	}
	for _, o := range req.SelectedBuys {
		actions = append(actions, TradeAction{Type: models.SideBuy, Symbol: o.Symbol, Amount: o.Amount})
	}
	return s.execute(ctx, execution{
		userID:  strings.TrimSpace(req.UserID),
		kind:    models.ExecutionCustom,
		actions: actions,
	})
}

func (s *Service) execute(ctx context.Context, ex execution) (*ExecutionResult, error) {
	if err := validate(ex); err != nil {
		return nil, err
	}

	res := &ExecutionResult{ExecutionID: uuid.NewString(), UserID: ex.userID}
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		if _, err := tx.Investor(ctx, ex.userID); err != nil {
			return err
		}
		entries := make([]models.ExecutionLog, 0, len(ex.actions))
		for _, a := range ex.actions {
			var (
				entry models.ExecutionLog
				err   error
			)
			if a.Type == models.SideSell {
				entry, err = sell(ctx, tx, ex.userID, a)
			} else {
				entry, err = buy(ctx, tx, ex.userID, a)
			}
			if err != nil {
				return err
			}
			entry.ExecutionID = res.ExecutionID
			entry.UserID = ex.userID
			entry.Kind = ex.kind
			entry.ScenarioID = ex.scenarioID
			entry.Status = "completed"
			entry.RequestedClass = ex.class
			entries = append(entries, entry)
		}
		if err := tx.AppendExecutions(ctx, entries); err != nil {
			return err
		}
		res.Entries = entries
		return nil
	})
	if err != nil {
		s.logger.Warn("Rebalance execution failed",
			zap.String("user", ex.userID),
			zap.String("kind", ex.kind),
			zap.Error(err))
		return nil, err
	}

	res.Summary = summarize(res.Entries)
	s.logger.Info("Rebalance executed",
		zap.String("execution_id", res.ExecutionID),
		zap.String("user", ex.userID),
		zap.String("kind", ex.kind),
		zap.Float64("sold", res.Summary.TotalSell),
		zap.Float64("bought", res.Summary.TotalBuy))
	return res, nil
}

func validate(ex execution) error {
	if ex.userID == "" {
		return apperr.InvalidInput("user_id is required")
	}
	if len(ex.actions) == 0 {
		return apperr.InvalidInput("at least one action is required")
	}
	for i, a := range ex.actions {
		if a.Type != models.SideSell && a.Type != models.SideBuy {
			return apperr.InvalidInput("action %d: unknown type %q", i, a.Type)
		}
		if strings.TrimSpace(a.Symbol) == "" {
			return apperr.InvalidInput("action %d: fund_symbol is required", i)
		}
		if a.Amount < 0 || a.Units < 0 || (a.Amount == 0 && a.Units == 0) {
			return apperr.InvalidInput("action %d: amount or units must be positive", i)
		}
	}
	return nil
}

// tradeAmount resolves the cash amount of an action, deriving it from units
// when only units were given.
func tradeAmount(a TradeAction, price decimal.Decimal) decimal.Decimal {
	if a.Amount > 0 {
		return decimal.NewFromFloat(a.Amount).Round(amountPlaces)
	}
	return decimal.NewFromFloat(a.Units).Mul(price).Round(amountPlaces)
}

func sell(ctx context.Context, tx *store.Store, userID string, a TradeAction) (models.ExecutionLog, error) {
	h, err := tx.Holding(ctx, userID, a.Symbol)
	if err != nil {
		return models.ExecutionLog{}, err
	}
	price := decimal.NewFromFloat(h.CurrentPrice)
	if !price.IsPositive() {
		return models.ExecutionLog{}, apperr.InvalidInput("holding %s has no price", a.Symbol)
	}

	units := decimal.NewFromFloat(h.Units)
	value := units.Mul(price)
	amount := decimal.Min(tradeAmount(a, price), value.Round(amountPlaces))
	if !amount.IsPositive() {
		return models.ExecutionLog{}, apperr.InvalidInput("sell %s: amount rounds to zero", a.Symbol)
	}

	sold := amount.Div(price).Round(unitPlaces)
	remaining := units.Sub(sold)
	if amount.Equal(value.Round(amountPlaces)) || remaining.IsNegative() {
		sold, remaining = units, decimal.Zero
	}
	invested := decimal.Max(decimal.Zero, decimal.NewFromFloat(h.InvestedAmount).Sub(amount))

	h.Units = remaining.InexactFloat64()
	h.InvestedAmount = invested.Round(amountPlaces).InexactFloat64()
	h.Reconcile()

	if remaining.Mul(price).LessThanOrEqual(dustValue) {
		err = tx.DeleteHolding(ctx, h)
	} else {
		err = tx.UpdateHolding(ctx, h)
	}
	if err != nil {
		return models.ExecutionLog{}, err
	}

	return models.ExecutionLog{
		AssetClass: h.AssetClass,
		Side:       models.SideSell,
		Symbol:     h.Symbol,
		Amount:     amount.InexactFloat64(),
		Units:      sold.InexactFloat64(),
		Price:      h.CurrentPrice,
	}, nil
}

func buy(ctx context.Context, tx *store.Store, userID string, a TradeAction) (models.ExecutionLog, error) {
	f, err := tx.Fund(ctx, a.Symbol)
	if err != nil {
		return models.ExecutionLog{}, err
	}
	price := decimal.NewFromFloat(f.CurrentPrice)
	if !price.IsPositive() {
		return models.ExecutionLog{}, apperr.InvalidInput("fund %s has no price", a.Symbol)
	}
	amount := tradeAmount(a, price)
	if !amount.IsPositive() {
		return models.ExecutionLog{}, apperr.InvalidInput("buy %s: amount rounds to zero", a.Symbol)
	}
	bought := amount.Div(price).Round(unitPlaces)

	h, err := tx.Holding(ctx, userID, f.Symbol)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		h = &models.Holding{
			UserID:            userID,
			Symbol:            f.Symbol,
			Name:              f.Name,
			AssetClass:        f.AssetClass,
			Units:             bought.InexactFloat64(),
			CurrentPrice:      f.CurrentPrice,
			InvestedAmount:    amount.InexactFloat64(),
			PerformanceRating: f.PerformanceRating,
			RiskRating:        f.RiskRating,
			ExpenseRatio:      f.ExpenseRatio,
		}
		h.Reconcile()
		err = tx.CreateHolding(ctx, h)
	case err == nil:
		h.Units = decimal.NewFromFloat(h.Units).Add(bought).InexactFloat64()
		h.InvestedAmount = decimal.NewFromFloat(h.InvestedAmount).Add(amount).Round(amountPlaces).InexactFloat64()
		h.CurrentPrice = f.CurrentPrice
		h.Reconcile()
		err = tx.UpdateHolding(ctx, h)
	}
	if err != nil {
		return models.ExecutionLog{}, err
	}

	return models.ExecutionLog{
		AssetClass: f.AssetClass,
		Side:       models.SideBuy,
		Symbol:     f.Symbol,
		Amount:     amount.InexactFloat64(),
		Units:      bought.InexactFloat64(),
		Price:      f.CurrentPrice,
	}, nil
}

func summarize(entries []models.ExecutionLog) Summary {
	var sold, bought decimal.Decimal
	var sum Summary
	for _, e := range entries {
		if e.Side == models.SideSell {
			sold = sold.Add(decimal.NewFromFloat(e.Amount))
			sum.NumSells++
		} else {
			bought = bought.Add(decimal.NewFromFloat(e.Amount))
			sum.NumBuys++
		}
	}
	sum.TotalSell = sold.InexactFloat64()
	sum.TotalBuy = bought.InexactFloat64()
	sum.NetChange = bought.Sub(sold).InexactFloat64()
	return sum
}
