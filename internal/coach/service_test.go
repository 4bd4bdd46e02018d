package coach

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"portfolio-rebalancer-go/internal/apperr"
	"portfolio-rebalancer-go/internal/config"
	"portfolio-rebalancer-go/internal/database"
	"portfolio-rebalancer-go/internal/models"
	"portfolio-rebalancer-go/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTest(t *testing.T) (*Service, *store.Store, *gorm.DB) {
	db, err := database.NewDatabase(config.Database{DSN: "file::memory:"})
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.InvestorProfile{
		UserID:          "U1",
		FullName:        "Ada Lovelace",
		Age:             40,
		EquitiesPercent: 70,
		BondsPercent:    20,
		CashPercent:     10,
	}).Error)

	st := store.New(db)
	svc := NewService(st, zap.NewNop())
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
	return svc, st, db
}

func TestAnalyze(t *testing.T) {
	svc, _, db := setupTest(t)
	ctx := context.Background()

	res, err := svc.Analyze(ctx, AnalyzeRequest{
		UserID:    "U1",
		LifeEvent: LifeEvent{PrimaryLifeEvent: "new_baby", EventTimeline: "next_6_months", EventDetails: "twins"},
		Behavior:  Behavior{CurrentEmotion: "overwhelmed", DecisionStyle: "conservative"},
	})
	require.NoError(t, err)
	assert.NotZero(t, res.ID)
	assert.Equal(t, "high_stress", res.Insights.EmotionalState.Level)
	assert.Equal(t, "conservative", res.Insights.RiskTolerance.SuggestedLevel)
	assert.Equal(t, Allocation{AssetCash: 15, AssetBonds: 35, AssetStocks: 45, AssetAlternatives: 5}, res.Recommendations.AllocationChanges)

	var row models.CoachingAnalysis
	require.NoError(t, db.First(&row, res.ID).Error)
	assert.Equal(t, "new_baby", row.LifeEvent)
	assert.Equal(t, "twins", row.EventDetails)
	assert.Equal(t, "overwhelmed", row.CurrentEmotion)

	var stored Recommendations
	require.NoError(t, json.Unmarshal([]byte(row.RecommendationsJSON), &stored))
	assert.Equal(t, 6, stored.EmergencyFund)
	assert.Contains(t, row.InsightsJSON, `"level":"high_stress"`)
}

func TestAnalyze_Validation(t *testing.T) {
	svc, _, _ := setupTest(t)
	ctx := context.Background()

	_, err := svc.Analyze(ctx, AnalyzeRequest{UserID: "  "})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = svc.Analyze(ctx, AnalyzeRequest{UserID: "ghost"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRecommendations_LatestFive(t *testing.T) {
	svc, _, _ := setupTest(t)
	ctx := context.Background()

	events := []string{"marriage", "new_baby", "home_purchase", "job_loss", "retirement_planning", "inheritance"}
	for _, e := range events {
		_, err := svc.Analyze(ctx, AnalyzeRequest{UserID: "U1", LifeEvent: LifeEvent{PrimaryLifeEvent: e}})
		require.NoError(t, err)
	}

	list, err := svc.Recommendations(ctx, "U1")
	require.NoError(t, err)
	require.Len(t, list, RecommendationsLimit)
	assert.Equal(t, "inheritance", list[0].LifeEvent)
	assert.Equal(t, "new_baby", list[4].LifeEvent)
	assert.True(t, list[0].AnalyzedAt.After(list[1].AnalyzedAt))

	_, err = svc.Recommendations(ctx, "ghost")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRebalance(t *testing.T) {
	testCases := []struct {
		scenario string
		expected Allocation
		impact   string
	}{
		{ScenarioImmediate, Allocation{AssetStocks: 50, AssetBonds: 35, AssetAlternatives: 0, AssetCash: 15}, "Medium - Quick changes may cause anxiety"},
		{ScenarioGradual, Allocation{AssetStocks: 63.4, AssetBonds: 25, AssetAlternatives: 0, AssetCash: 11.7}, "Low - Gradual changes reduce emotional stress"},
		{ScenarioSelective, Allocation{AssetStocks: 50, AssetBonds: 35, AssetAlternatives: 0, AssetCash: 10}, "Very Low - Minimal disruption to existing positions"},
	}
	for _, tc := range testCases {
		t.Run(tc.scenario, func(t *testing.T) {
			svc, st, db := setupTest(t)
			ctx := context.Background()

			req := RebalanceRequest{UserID: "U1", Scenario: tc.scenario, Recommendations: RebalanceTarget{
				AllocationChanges: Allocation{AssetStocks: 50, AssetBonds: 35, AssetCash: 15},
				LifeEvent:         "home_purchase",
			}}

			res, err := svc.Rebalance(ctx, req)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, res.NewAllocation)
			assert.Equal(t, tc.impact, res.EmotionalImpact)
			assert.Equal(t, "Portfolio rebalanced using "+tc.scenario+" strategy", res.Message)
			assert.NotZero(t, res.ExecutionID)

			p, err := st.Investor(ctx, "U1")
			require.NoError(t, err)
			assert.Equal(t, tc.expected[AssetStocks], p.EquitiesPercent)
			assert.Equal(t, tc.expected[AssetBonds], p.BondsPercent)
			assert.Equal(t, tc.expected[AssetCash], p.CashPercent)
			require.NotNil(t, p.LastRebalancedAt)

			var change models.AllocationChange
			require.NoError(t, db.First(&change, res.ExecutionID).Error)
			assert.Equal(t, tc.scenario, change.Scenario)
			assert.Equal(t, "home_purchase", change.LifeEvent)
			assert.Equal(t, "completed", change.Status)
			assert.JSONEq(t, `{"stocks":70,"bonds":20,"alternatives":0,"cash":10}`, change.OldAllocation)
		})
	}
}

func TestRebalance_Errors(t *testing.T) {
	svc, st, db := setupTest(t)
	ctx := context.Background()

	testCases := []struct {
		name string
		req  RebalanceRequest
		kind error
	}{
		{"Missing user", RebalanceRequest{Scenario: ScenarioGradual}, apperr.ErrInvalidInput},
		{"Missing scenario", RebalanceRequest{UserID: "U1"}, apperr.ErrInvalidInput},
		{"Unknown scenario", RebalanceRequest{UserID: "U1", Scenario: "yolo"}, apperr.ErrInvalidInput},
		{"Unknown user", RebalanceRequest{UserID: "ghost", Scenario: ScenarioGradual}, apperr.ErrNotFound},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Rebalance(ctx, tc.req)
			assert.ErrorIs(t, err, tc.kind)
		})
	}

	p, err := st.Investor(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, 70.0, p.EquitiesPercent)
	assert.Nil(t, p.LastRebalancedAt)

	var count int64
	require.NoError(t, db.Model(&models.AllocationChange{}).Count(&count).Error)
	assert.Zero(t, count)
}
