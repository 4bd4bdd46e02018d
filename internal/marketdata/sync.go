package marketdata

import (
	"context"
	"errors"

	"portfolio-rebalancer-go/internal/apperr"
	"portfolio-rebalancer-go/internal/store"

	"go.uber.org/zap"
)

// SyncResult counts what a price sync changed.
type SyncResult struct {
	FundsUpdated     int      `json:"funds_updated"`
	HoldingsRepriced int      `json:"holdings_repriced"`
	Skipped          []string `json:"skipped"`
}

// PriceSyncer copies quotes into the fund universe and reprices every
// holding of a quoted fund.
type PriceSyncer struct {
	store  *store.Store
	source QuoteSource
	logger *zap.Logger
}

// NewPriceSyncer creates a PriceSyncer reading quotes from source.
func NewPriceSyncer(st *store.Store, source QuoteSource, logger *zap.Logger) *PriceSyncer {
	return &PriceSyncer{store: st, source: source, logger: logger.Named("price-sync")}
}

// Sync fetches quotes for every fund. Each fund is updated in its own
// transaction together with the holdings that reference it, so current value
// always equals units times the new price. Missing and non-positive quotes
// are skipped.
func (p *PriceSyncer) Sync(ctx context.Context) (*SyncResult, error) {
	funds, err := p.store.Funds(ctx)
	if err != nil {
		return nil, err
	}
	res := &SyncResult{Skipped: []string{}}
	if len(funds) == 0 {
		return res, nil
	}

	symbols := make([]string, 0, len(funds))
	for _, f := range funds {
		symbols = append(symbols, f.Symbol)
	}
	quotes, err := p.source.GetQuotes(ctx, symbols)
	if err != nil {
		return nil, err
	}
	prices := make(map[string]float64, len(quotes))
	for _, q := range quotes {
		prices[q.Symbol] = q.Price
	}

	for _, f := range funds {
		price, ok := prices[f.Symbol]
		if !ok || price <= 0 {
			p.logger.Warn("Skipping fund without a usable quote",
				zap.String("symbol", f.Symbol),
				zap.Float64("price", price),
			)
			res.Skipped = append(res.Skipped, f.Symbol)
			continue
		}

		repriced := 0
		err := p.store.WithTx(ctx, func(tx *store.Store) error {
			if err := tx.UpdateFundPrice(ctx, f.Symbol, price); err != nil {
				return err
			}
			holdings, err := tx.HoldingsBySymbol(ctx, f.Symbol)
			if err != nil {
				return err
			}
			for i := range holdings {
				h := &holdings[i]
				h.CurrentPrice = price
				h.Reconcile()
				if err := tx.UpdateHolding(ctx, h); err != nil {
					return err
				}
			}
			repriced = len(holdings)
			return nil
		})
		if errors.Is(err, apperr.ErrConflict) {
			// A trade touched the position mid-sync; the next run picks it up.
			p.logger.Warn("Skipping fund modified during sync", zap.String("symbol", f.Symbol), zap.Error(err))
			res.Skipped = append(res.Skipped, f.Symbol)
			continue
		}
		if err != nil {
			return nil, err
		}
		res.FundsUpdated++
		res.HoldingsRepriced += repriced
	}

	p.logger.Info("Price sync finished",
		zap.Int("funds_updated", res.FundsUpdated),
		zap.Int("holdings_repriced", res.HoldingsRepriced),
		zap.Int("skipped", len(res.Skipped)),
	)
	return res, nil
}

// SyncJob runs a PriceSyncer on a schedule.
type SyncJob struct {
	Syncer *PriceSyncer
}

func (j SyncJob) Name() string { return "price-sync" }

func (j SyncJob) Run(ctx context.Context) error {
	_, err := j.Syncer.Sync(ctx)
	return err
}
