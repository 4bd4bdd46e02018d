// Package rebalance ranks rebalancing options, composes scenarios and applies
// executed trades to the holdings store.
package rebalance

import (
	"context"

	"portfolio-rebalancer-go/internal/config"
	"portfolio-rebalancer-go/internal/models"
	"portfolio-rebalancer-go/internal/portfolio"
	"portfolio-rebalancer-go/internal/store"

	"go.uber.org/zap"
)

// Service serves the rebalancing use cases over a Store.
type Service struct {
	store  *store.Store
	cfg    config.Rebalance
	logger *zap.Logger
}

// NewService creates a rebalancing service.
func NewService(st *store.Store, cfg config.Rebalance, logger *zap.Logger) *Service {
	return &Service{
		store:  st,
		cfg:    cfg,
		logger: logger.Named("rebalance"),
	}
}

// OptionsResult lists the ranked sell and buy candidates for one asset class.
type OptionsResult struct {
	UserID      string                 `json:"user_id"`
	AssetClass  models.AssetClass      `json:"asset_class"`
	TotalValue  float64                `json:"total_portfolio_value"`
	SellOptions []portfolio.SellOption `json:"sell_options"`
	BuyOptions  []portfolio.BuyOption  `json:"buy_options"`
}

// ScenariosResult carries the three preset plans plus the allocation context
// they were built from.
type ScenariosResult struct {
	UserID            string                `json:"user_id"`
	AssetClass        models.AssetClass     `json:"asset_class"`
	TotalValue        float64               `json:"total_portfolio_value"`
	Scenarios         []portfolio.Scenario  `json:"scenarios"`
	CurrentAllocation portfolio.Allocation  `json:"current_allocation"`
	TargetAllocation  portfolio.Allocation  `json:"target_allocation"`
	Drift             portfolio.DriftResult `json:"drift"`
	EquityDrift       portfolio.DriftResult `json:"equity_drift"`
}

// Options ranks what to sell and what to buy within one asset class.
func (s *Service) Options(ctx context.Context, userID string, class models.AssetClass) (*OptionsResult, error) {
	if _, err := s.store.Investor(ctx, userID); err != nil {
		return nil, err
	}
	holdings, err := s.store.HoldingsByClass(ctx, userID, class)
	if err != nil {
		return nil, err
	}
	funds, err := s.recommended(ctx, class)
	if err != nil {
		return nil, err
	}

	res := &OptionsResult{
		UserID:      userID,
		AssetClass:  class,
		SellOptions: portfolio.RankSellOptions(holdings, s.cfg),
		BuyOptions:  portfolio.RankBuyOptions(funds, s.cfg),
	}
	for _, h := range holdings {
		res.TotalValue += h.CurrentValue
	}
	return res, nil
}

// Scenarios composes the Conservative, Moderate and Aggressive plans for one
// asset class of a user.
func (s *Service) Scenarios(ctx context.Context, userID string, class models.AssetClass) (*ScenariosResult, error) {
	profile, err := s.store.Investor(ctx, userID)
	if err != nil {
		return nil, err
	}
	model, err := s.store.AllocationModel(ctx, profile.AllocationModel)
	if err != nil {
		return nil, err
	}
	all, err := s.store.Holdings(ctx, userID)
	if err != nil {
		return nil, err
	}
	inClass, err := s.store.HoldingsByClass(ctx, userID, class)
	if err != nil {
		return nil, err
	}
	funds, err := s.recommended(ctx, class)
	if err != nil {
		return nil, err
	}

	current, total := portfolio.CurrentAllocation(all)
	target := portfolio.TargetAllocation(*profile, model)

	return &ScenariosResult{
		UserID:            userID,
		AssetClass:        class,
		TotalValue:        total,
		Scenarios:         portfolio.ComposeScenarios(class, inClass, funds),
		CurrentAllocation: current.Rounded(),
		TargetAllocation:  target,
		Drift:             portfolio.Drift(current, target, class),
		EquityDrift:       portfolio.Drift(current, target, models.Equity),
	}, nil
}

// recommended returns the Excellent and Good funds of a class, best first.
func (s *Service) recommended(ctx context.Context, class models.AssetClass) ([]models.Fund, error) {
	funds, err := s.store.FundsByClass(ctx, class, models.Excellent, models.Good)
	if err != nil {
		return nil, err
	}
	if s.cfg.MaxOptions > 0 && len(funds) > s.cfg.MaxOptions {
		funds = funds[:s.cfg.MaxOptions]
	}
	return funds, nil
}
