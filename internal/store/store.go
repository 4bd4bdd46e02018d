// Package store is the typed data access layer over the portfolio database.
package store

import (
	"context"
	"errors"
	"time"

	"portfolio-rebalancer-go/internal/apperr"
	"portfolio-rebalancer-go/internal/models"

	"gorm.io/gorm"
)

// Store wraps a gorm handle with typed queries for every table.
type Store struct {
	db *gorm.DB
}

// New creates a Store over an open database.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithTx runs fn inside a transaction. fn receives a Store bound to the
// transaction; returning an error rolls everything back.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// Investor returns the profile of one investor.
func (s *Store) Investor(ctx context.Context, userID string) (*models.InvestorProfile, error) {
	var p models.InvestorProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user %s not found", userID)
	}
	if err != nil {
		return nil, apperr.DataAccess(err, "failed to load investor %s", userID)
	}
	return &p, nil
}

// Investors returns every investor profile ordered by user id.
func (s *Store) Investors(ctx context.Context) ([]models.InvestorProfile, error) {
	var out []models.InvestorProfile
	if err := s.db.WithContext(ctx).Order("user_id").Find(&out).Error; err != nil {
		return nil, apperr.DataAccess(err, "failed to list investors")
	}
	return out, nil
}

// AllocationModel returns the master model with the given type, or nil when
// there is none.
func (s *Store) AllocationModel(ctx context.Context, modelType string) (*models.AllocationModel, error) {
	if modelType == "" {
		return nil, nil
	}
	var m models.AllocationModel
	err := s.db.WithContext(ctx).Where("model_type = ?", modelType).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.DataAccess(err, "failed to load allocation model %s", modelType)
	}
	return &m, nil
}

// Holdings returns all holdings of a user, largest position first.
func (s *Store) Holdings(ctx context.Context, userID string) ([]models.Holding, error) {
	var out []models.Holding
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("current_value desc").
		Order("id").
		Find(&out).Error
	if err != nil {
		return nil, apperr.DataAccess(err, "failed to load holdings for %s", userID)
	}
	return out, nil
}

// HoldingsByClass returns the holdings of a user in one asset class, in insertion order.
func (s *Store) HoldingsByClass(ctx context.Context, userID string, class models.AssetClass) ([]models.Holding, error) {
	var out []models.Holding
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND asset_class = ?", userID, class).
		Order("id").
		Find(&out).Error
	if err != nil {
		return nil, apperr.DataAccess(err, "failed to load %s holdings for %s", class, userID)
	}
	return out, nil
}

// Holding returns one position, or NotFound.
func (s *Store) Holding(ctx context.Context, userID, symbol string) (*models.Holding, error) {
	var h models.Holding
	err := s.db.WithContext(ctx).Where("user_id = ? AND symbol = ?", userID, symbol).First(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("holding %s not found for user %s", symbol, userID)
	}
	if err != nil {
		return nil, apperr.DataAccess(err, "failed to load holding %s", symbol)
	}
	return &h, nil
}

// HoldingsBySymbol returns every user's position in one instrument.
func (s *Store) HoldingsBySymbol(ctx context.Context, symbol string) ([]models.Holding, error) {
	var out []models.Holding
	if err := s.db.WithContext(ctx).Where("symbol = ?", symbol).Order("id").Find(&out).Error; err != nil {
		return nil, apperr.DataAccess(err, "failed to load holdings of %s", symbol)
	}
	return out, nil
}

// HolderIDs returns the distinct users that own at least one holding.
func (s *Store) HolderIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&models.Holding{}).
		Distinct("user_id").
		Order("user_id").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, apperr.DataAccess(err, "failed to list holders")
	}
	return ids, nil
}

// CreateHolding inserts a new position.
func (s *Store) CreateHolding(ctx context.Context, h *models.Holding) error {
	if err := s.db.WithContext(ctx).Create(h).Error; err != nil {
		return apperr.DataAccess(err, "failed to create holding %s", h.Symbol)
	}
	return nil
}

// UpdateHolding writes the quantity and price fields of h, provided the row
// still carries the version h was read with. On success h.Version is bumped.
func (s *Store) UpdateHolding(ctx context.Context, h *models.Holding) error {
	res := s.db.WithContext(ctx).
		Model(&models.Holding{}).
		Where("id = ? AND version = ?", h.ID, h.Version).
		Updates(map[string]any{
			"units":           h.Units,
			"current_price":   h.CurrentPrice,
			"invested_amount": h.InvestedAmount,
			"current_value":   h.CurrentValue,
			"return_percent":  h.ReturnPercent,
			"version":         h.Version + 1,
		})
	if res.Error != nil {
		return apperr.DataAccess(res.Error, "failed to update holding %s", h.Symbol)
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("holding %s was modified concurrently", h.Symbol)
	}
	h.Version++
	return nil
}

// DeleteHolding removes a fully sold position, again guarded by version.
func (s *Store) DeleteHolding(ctx context.Context, h *models.Holding) error {
	res := s.db.WithContext(ctx).
		Unscoped().
		Where("id = ? AND version = ?", h.ID, h.Version).
		Delete(&models.Holding{})
	if res.Error != nil {
		return apperr.DataAccess(res.Error, "failed to delete holding %s", h.Symbol)
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("holding %s was modified concurrently", h.Symbol)
	}
	return nil
}

// Funds returns the whole fund universe ordered by symbol.
func (s *Store) Funds(ctx context.Context) ([]models.Fund, error) {
	var out []models.Fund
	if err := s.db.WithContext(ctx).Order("symbol").Find(&out).Error; err != nil {
		return nil, apperr.DataAccess(err, "failed to list funds")
	}
	return out, nil
}

// FundsByClass returns funds of one asset class, optionally restricted to
// the given ratings, best one-year return first.
func (s *Store) FundsByClass(ctx context.Context, class models.AssetClass, ratings ...models.Rating) ([]models.Fund, error) {
	q := s.db.WithContext(ctx).Where("asset_class = ?", class)
	if len(ratings) > 0 {
		q = q.Where("performance_rating IN ?", ratings)
	}
	var out []models.Fund
	if err := q.Order("returns_1y desc").Order("id").Find(&out).Error; err != nil {
		return nil, apperr.DataAccess(err, "failed to list %s funds", class)
	}
	return out, nil
}

// TopFunds returns the best funds of a rating by one-year return.
func (s *Store) TopFunds(ctx context.Context, rating models.Rating, limit int) ([]models.Fund, error) {
	var out []models.Fund
	err := s.db.WithContext(ctx).
		Where("performance_rating = ?", rating).
		Order("returns_1y desc").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, apperr.DataAccess(err, "failed to list %s funds", rating)
	}
	return out, nil
}

// Fund returns one fund by symbol, or NotFound.
func (s *Store) Fund(ctx context.Context, symbol string) (*models.Fund, error) {
	var f models.Fund
	err := s.db.WithContext(ctx).Where("symbol = ?", symbol).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("fund %s not found", symbol)
	}
	if err != nil {
		return nil, apperr.DataAccess(err, "failed to load fund %s", symbol)
	}
	return &f, nil
}

// UpdateFundPrice sets the latest price of a fund.
func (s *Store) UpdateFundPrice(ctx context.Context, symbol string, price float64) error {
	res := s.db.WithContext(ctx).Model(&models.Fund{}).Where("symbol = ?", symbol).Update("current_price", price)
	if res.Error != nil {
		return apperr.DataAccess(res.Error, "failed to update price of %s", symbol)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("fund %s not found", symbol)
	}
	return nil
}

// AppendExecutions records executed actions. The log is never updated.
func (s *Store) AppendExecutions(ctx context.Context, entries []models.ExecutionLog) error {
	if len(entries) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&entries).Error; err != nil {
		return apperr.DataAccess(err, "failed to write execution log")
	}
	return nil
}

// Executions returns the audit log of one execution.
func (s *Store) Executions(ctx context.Context, executionID string) ([]models.ExecutionLog, error) {
	var out []models.ExecutionLog
	if err := s.db.WithContext(ctx).Where("execution_id = ?", executionID).Order("id").Find(&out).Error; err != nil {
		return nil, apperr.DataAccess(err, "failed to load execution %s", executionID)
	}
	return out, nil
}

// AppendChat stores advisor conversation turns.
func (s *Store) AppendChat(ctx context.Context, msgs ...models.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&msgs).Error; err != nil {
		return apperr.DataAccess(err, "failed to store chat messages")
	}
	return nil
}

// ChatHistory returns the latest limit messages of a user, oldest first.
func (s *Store) ChatHistory(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error) {
	var out []models.ChatMessage
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, apperr.DataAccess(err, "failed to load chat history for %s", userID)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// AppendAnalysis stores a coaching analysis and sets its ID.
func (s *Store) AppendAnalysis(ctx context.Context, a *models.CoachingAnalysis) error {
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return apperr.DataAccess(err, "failed to store coaching analysis for %s", a.UserID)
	}
	return nil
}

// Analyses returns the latest limit coaching analyses of a user, newest first.
func (s *Store) Analyses(ctx context.Context, userID string, limit int) ([]models.CoachingAnalysis, error) {
	var out []models.CoachingAnalysis
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("analyzed_at desc, id desc").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, apperr.DataAccess(err, "failed to load coaching analyses for %s", userID)
	}
	return out, nil
}

// UpdateTargetAllocation overwrites the target percentages of an investor
// and stamps the rebalance time.
func (s *Store) UpdateTargetAllocation(ctx context.Context, p *models.InvestorProfile, at time.Time) error {
	res := s.db.WithContext(ctx).
		Model(&models.InvestorProfile{}).
		Where("user_id = ?", p.UserID).
		Updates(map[string]any{
			"equities_percent":     p.EquitiesPercent,
			"bonds_percent":        p.BondsPercent,
			"cash_percent":         p.CashPercent,
			"alternatives_percent": p.AlternativesPercent,
			"last_rebalanced_at":   at,
		})
	if res.Error != nil {
		return apperr.DataAccess(res.Error, "failed to update allocation of %s", p.UserID)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("user %s not found", p.UserID)
	}
	p.LastRebalancedAt = &at
	return nil
}

// AppendAllocationChange stores a coach-driven allocation change and sets its ID.
func (s *Store) AppendAllocationChange(ctx context.Context, c *models.AllocationChange) error {
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return apperr.DataAccess(err, "failed to store allocation change for %s", c.UserID)
	}
	return nil
}

// Stats holds row counts per table.
type Stats struct {
	Investors        int64 `json:"investor_records"`
	Holdings         int64 `json:"holding_records"`
	Funds            int64 `json:"fund_records"`
	AllocationModels int64 `json:"master_allocation_records"`
	Executions       int64 `json:"execution_records"`
	ChatMessages     int64 `json:"chat_message_records"`
}

// Stats counts the rows of every table.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	counts := []struct {
		model any
		dst   *int64
	}{
		{&models.InvestorProfile{}, &st.Investors},
		{&models.Holding{}, &st.Holdings},
		{&models.Fund{}, &st.Funds},
		{&models.AllocationModel{}, &st.AllocationModels},
		{&models.ExecutionLog{}, &st.Executions},
		{&models.ChatMessage{}, &st.ChatMessages},
	}
	for _, c := range counts {
		if err := s.db.WithContext(ctx).Model(c.model).Count(c.dst).Error; err != nil {
			return Stats{}, apperr.DataAccess(err, "failed to count rows")
		}
	}
	return st, nil
}
