// Package investor serves read-only views of investor profiles and their
// portfolios.
package investor

import (
	"context"

	"portfolio-rebalancer-go/internal/models"
	"portfolio-rebalancer-go/internal/portfolio"
	"portfolio-rebalancer-go/internal/store"
)

// Service reads investors and holdings from a Store.
type Service struct {
	store *store.Store
}

// NewService creates an investor query service.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// ClassBreakdown is the current and target position of one asset class.
type ClassBreakdown struct {
	CurrentPercent float64 `json:"current_percent"`
	CurrentAmount  float64 `json:"current_amount"`
	TargetPercent  float64 `json:"target_percent"`
}

// Summary is the dashboard view of one investor.
type Summary struct {
	Profile          models.InvestorProfile                      `json:"investor_profile"`
	Model            *models.AllocationModel                     `json:"target_model"`
	TargetAllocation portfolio.Allocation                        `json:"target_allocation"`
	Breakdown        map[models.AssetClass]ClassBreakdown        `json:"allocation_breakdown"`
	TotalValue       float64                                     `json:"total_investment"`
	Drift            map[models.AssetClass]portfolio.DriftResult `json:"drift"`
}

// HoldingView is a holding annotated for display.
type HoldingView struct {
	models.Holding
	PerformanceCategory string `json:"performance_category"`
}

// List returns every investor profile.
func (s *Service) List(ctx context.Context) ([]models.InvestorProfile, error) {
	return s.store.Investors(ctx)
}

// Summary resolves the target allocation of an investor and compares it with
// the current holdings.
func (s *Service) Summary(ctx context.Context, userID string) (*Summary, error) {
	profile, err := s.store.Investor(ctx, userID)
	if err != nil {
		return nil, err
	}
	model, err := s.store.AllocationModel(ctx, profile.AllocationModel)
	if err != nil {
		return nil, err
	}
	holdings, err := s.store.Holdings(ctx, userID)
	if err != nil {
		return nil, err
	}

	current, total := portfolio.CurrentAllocation(holdings)
	target := portfolio.TargetAllocation(*profile, model)

	sum := &Summary{
		Profile:          *profile,
		Model:            model,
		TargetAllocation: target,
		Breakdown:        make(map[models.AssetClass]ClassBreakdown, len(models.AssetClasses)),
		TotalValue:       total,
		Drift:            make(map[models.AssetClass]portfolio.DriftResult, len(models.AssetClasses)),
	}
	for _, c := range models.AssetClasses {
		sum.Breakdown[c] = ClassBreakdown{
			CurrentPercent: portfolio.RoundPct(current[c]),
			CurrentAmount:  total * current[c] / 100,
			TargetPercent:  target[c],
		}
		sum.Drift[c] = portfolio.Drift(current, target, c)
	}
	return sum, nil
}

// Holdings returns the holdings of an investor, largest first.
func (s *Service) Holdings(ctx context.Context, userID string) ([]HoldingView, error) {
	if _, err := s.store.Investor(ctx, userID); err != nil {
		return nil, err
	}
	holdings, err := s.store.Holdings(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]HoldingView, 0, len(holdings))
	for _, h := range holdings {
		out = append(out, HoldingView{Holding: h, PerformanceCategory: portfolio.PerformanceCategory(h.ReturnPercent)})
	}
	return out, nil
}

// Stats counts the rows of every table.
func (s *Service) Stats(ctx context.Context) (store.Stats, error) {
	return s.store.Stats(ctx)
}
