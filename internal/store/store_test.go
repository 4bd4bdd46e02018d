package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"portfolio-rebalancer-go/internal/apperr"
	"portfolio-rebalancer-go/internal/config"
	"portfolio-rebalancer-go/internal/database"
	"portfolio-rebalancer-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTest(t *testing.T) *Store {
	db, err := database.NewDatabase(config.Database{DSN: "file::memory:"})
	require.NoError(t, err)
	return New(db)
}

func TestInvestor(t *testing.T) {
	s := setupTest(t)
	ctx := context.Background()
	require.NoError(t, s.db.Create(&models.InvestorProfile{UserID: "U1", FullName: "Ada", EquitiesPercent: 60}).Error)

	p, err := s.Investor(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.FullName)

	_, err = s.Investor(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAllocationModel_MissingIsNil(t *testing.T) {
	s := setupTest(t)
	ctx := context.Background()
	require.NoError(t, s.db.Create(&models.AllocationModel{ModelType: "Balanced-1", Equities: 55}).Error)

	m, err := s.AllocationModel(ctx, "Balanced-1")
	require.NoError(t, err)
	assert.Equal(t, 55.0, m.Equities)

	m, err = s.AllocationModel(ctx, "Unknown")
	assert.NoError(t, err)
	assert.Nil(t, m)

	m, err = s.AllocationModel(ctx, "")
	assert.NoError(t, err)
	assert.Nil(t, m)
}

func TestHoldingQueries(t *testing.T) {
	s := setupTest(t)
	ctx := context.Background()
	for _, h := range []models.Holding{
		{UserID: "U1", Symbol: "VTI", Name: "Total", AssetClass: models.Equity, CurrentValue: 1000},
		{UserID: "U1", Symbol: "BND", Name: "Bond", AssetClass: models.Bond, CurrentValue: 3000},
		{UserID: "U1", Symbol: "QQQ", Name: "Nasdaq", AssetClass: models.Equity, CurrentValue: 2000},
		{UserID: "U2", Symbol: "VTI", Name: "Total", AssetClass: models.Equity, CurrentValue: 500},
	} {
		h := h
		require.NoError(t, s.CreateHolding(ctx, &h))
	}

	all, err := s.Holdings(ctx, "U1")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"BND", "QQQ", "VTI"}, []string{all[0].Symbol, all[1].Symbol, all[2].Symbol})

	equities, err := s.HoldingsByClass(ctx, "U1", models.Equity)
	require.NoError(t, err)
	require.Len(t, equities, 2)
	assert.Equal(t, "VTI", equities[0].Symbol, "class query keeps insertion order")

	bySymbol, err := s.HoldingsBySymbol(ctx, "VTI")
	require.NoError(t, err)
	assert.Len(t, bySymbol, 2)

	ids, err := s.HolderIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"U1", "U2"}, ids)

	_, err = s.Holding(ctx, "U2", "BND")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateHolding_VersionGuard(t *testing.T) {
	s := setupTest(t)
	ctx := context.Background()
	h := models.Holding{UserID: "U1", Symbol: "VTI", Name: "Total", AssetClass: models.Equity, Units: 10, CurrentPrice: 100, CurrentValue: 1000}
	require.NoError(t, s.CreateHolding(ctx, &h))

	first, err := s.Holding(ctx, "U1", "VTI")
	require.NoError(t, err)
	stale := *first

	first.Units = 12
	first.Reconcile()
	require.NoError(t, s.UpdateHolding(ctx, first))
	assert.Equal(t, 1, first.Version)

	stale.Units = 5
	err = s.UpdateHolding(ctx, &stale)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	err = s.DeleteHolding(ctx, &stale)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	reloaded, err := s.Holding(ctx, "U1", "VTI")
	require.NoError(t, err)
	assert.Equal(t, 12.0, reloaded.Units)
	assert.Equal(t, 1200.0, reloaded.CurrentValue)

	require.NoError(t, s.DeleteHolding(ctx, reloaded))
	_, err = s.Holding(ctx, "U1", "VTI")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestFundQueries(t *testing.T) {
	s := setupTest(t)
	ctx := context.Background()
	for _, f := range []models.Fund{
		{Symbol: "VTI", Name: "Total", AssetClass: models.Equity, CurrentPrice: 250, Returns1Y: 15, PerformanceRating: models.Good},
		{Symbol: "QQQ", Name: "Nasdaq", AssetClass: models.Equity, CurrentPrice: 400, Returns1Y: 25, PerformanceRating: models.Excellent},
		{Symbol: "ARKK", Name: "Innovation", AssetClass: models.Equity, CurrentPrice: 40, Returns1Y: -30, PerformanceRating: models.Poor},
		{Symbol: "BND", Name: "Bond", AssetClass: models.Bond, CurrentPrice: 70, Returns1Y: 4, PerformanceRating: models.Excellent},
	} {
		f := f
		require.NoError(t, s.db.Create(&f).Error)
	}

	good, err := s.FundsByClass(ctx, models.Equity, models.Excellent, models.Good)
	require.NoError(t, err)
	require.Len(t, good, 2)
	assert.Equal(t, "QQQ", good[0].Symbol)

	all, err := s.FundsByClass(ctx, models.Equity)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	top, err := s.TopFunds(ctx, models.Excellent, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "QQQ", top[0].Symbol)

	require.NoError(t, s.UpdateFundPrice(ctx, "BND", 72.5))
	f, err := s.Fund(ctx, "BND")
	require.NoError(t, err)
	assert.Equal(t, 72.5, f.CurrentPrice)

	assert.ErrorIs(t, s.UpdateFundPrice(ctx, "NOPE", 1), apperr.ErrNotFound)
	_, err = s.Fund(ctx, "NOPE")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestWithTx_RollsBack(t *testing.T) {
	s := setupTest(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx *Store) error {
		h := models.Holding{UserID: "U1", Symbol: "VTI", Name: "Total", AssetClass: models.Equity}
		if err := tx.CreateHolding(ctx, &h); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	all, err := s.Holdings(ctx, "U1")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestChatHistory_LatestOldestFirst(t *testing.T) {
	s := setupTest(t)
	ctx := context.Background()
	require.NoError(t, s.AppendChat(ctx,
		models.ChatMessage{UserID: "U1", Role: "user", Content: "one"},
		models.ChatMessage{UserID: "U1", Role: "assistant", Content: "two"},
		models.ChatMessage{UserID: "U2", Role: "user", Content: "other"},
		models.ChatMessage{UserID: "U1", Role: "user", Content: "three"},
	))

	history, err := s.ChatHistory(ctx, "U1", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "two", history[0].Content)
	assert.Equal(t, "three", history[1].Content)
}

func TestExecutionsAndStats(t *testing.T) {
	s := setupTest(t)
	ctx := context.Background()
	require.NoError(t, s.AppendExecutions(ctx, []models.ExecutionLog{
		{ExecutionID: "E1", UserID: "U1", Kind: models.ExecutionCustom, Side: models.SideSell, Symbol: "VTI", Amount: 100},
		{ExecutionID: "E1", UserID: "U1", Kind: models.ExecutionCustom, Side: models.SideBuy, Symbol: "BND", Amount: 100},
	}))
	require.NoError(t, s.AppendExecutions(ctx, nil))

	entries, err := s.Executions(ctx, "E1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.SideSell, entries[0].Side)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.Executions)
	assert.Equal(t, int64(0), st.Investors)
}

func TestAnalyses_LatestFirst(t *testing.T) {
	s := setupTest(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		require.NoError(t, s.AppendAnalysis(ctx, &models.CoachingAnalysis{
			UserID:     "U1",
			AnalyzedAt: base.Add(time.Duration(i) * time.Hour),
			LifeEvent:  fmt.Sprintf("event-%d", i),
		}))
	}
	require.NoError(t, s.AppendAnalysis(ctx, &models.CoachingAnalysis{UserID: "U2", AnalyzedAt: base.Add(24 * time.Hour)}))

	out, err := s.Analyses(ctx, "U1", 5)
	require.NoError(t, err)
	require.Len(t, out, 5)
	assert.Equal(t, "event-6", out[0].LifeEvent)
	assert.Equal(t, "event-2", out[4].LifeEvent)
}

func TestUpdateTargetAllocation(t *testing.T) {
	s := setupTest(t)
	ctx := context.Background()
	require.NoError(t, s.db.Create(&models.InvestorProfile{UserID: "U1", FullName: "Ada", EquitiesPercent: 60, BondsPercent: 30, CashPercent: 10}).Error)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	err := s.WithTx(ctx, func(tx *Store) error {
		p := &models.InvestorProfile{UserID: "U1", EquitiesPercent: 50, BondsPercent: 35, CashPercent: 10, AlternativesPercent: 5}
		if err := tx.UpdateTargetAllocation(ctx, p, at); err != nil {
			return err
		}
		return tx.AppendAllocationChange(ctx, &models.AllocationChange{UserID: "U1", ExecutedAt: at, Scenario: "immediate"})
	})
	require.NoError(t, err)

	p, err := s.Investor(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.FullName)
	assert.Equal(t, 50.0, p.EquitiesPercent)
	assert.Equal(t, 5.0, p.AlternativesPercent)
	require.NotNil(t, p.LastRebalancedAt)
	assert.True(t, at.Equal(*p.LastRebalancedAt))

	var changes []models.AllocationChange
	require.NoError(t, s.db.Find(&changes).Error)
	require.Len(t, changes, 1)
	assert.Equal(t, "completed", changes[0].Status)

	err = s.UpdateTargetAllocation(ctx, &models.InvestorProfile{UserID: "ghost"}, at)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
