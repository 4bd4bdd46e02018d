package coach

import (
	"testing"

	"portfolio-rebalancer-go/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeBehavior(t *testing.T) {
	testCases := []struct {
		name      string
		event     LifeEvent
		behavior  Behavior
		emotion   string
		strength  string
		riskLevel string
		biases    []string
	}{
		{
			name:      "Anxious after job loss",
			event:     LifeEvent{PrimaryLifeEvent: "job_loss"},
			behavior:  Behavior{CurrentEmotion: "very_anxious", DecisionStyle: "analytical", RecentBehavior: "panic_selling"},
			emotion:   "high_stress",
			strength:  "Thorough research",
			riskLevel: "conservative",
			biases:    []string{"Loss Aversion"},
		},
		{
			name:      "Overconfident heir",
			event:     LifeEvent{PrimaryLifeEvent: "inheritance"},
			behavior:  Behavior{CurrentEmotion: "very_confident", MarketOutlook: "very_optimistic", DecisionStyle: "intuitive", RecentBehavior: "fomo_buying"},
			emotion:   "overconfident",
			strength:  "Quick adaptation",
			riskLevel: "moderate_aggressive",
			biases:    []string{"Herd Mentality"},
		},
		{
			name:      "Confident but neutral outlook",
			event:     LifeEvent{PrimaryLifeEvent: "marriage"},
			behavior:  Behavior{CurrentEmotion: "very_confident", MarketOutlook: "neutral"},
			emotion:   "balanced",
			strength:  "Risk awareness",
			riskLevel: "moderate",
			biases:    []string{},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := AnalyzeBehavior(tc.event, tc.behavior)
			assert.Equal(t, tc.emotion, got.EmotionalState.Level)
			assert.Len(t, got.EmotionalState.Recommendations, 3)
			assert.Equal(t, tc.strength, got.DecisionPattern.Strengths[0])
			assert.Equal(t, tc.riskLevel, got.RiskTolerance.SuggestedLevel)

			types := make([]string, 0, len(got.BiasWarnings))
			for _, b := range got.BiasWarnings {
				types = append(types, b.Type)
			}
			assert.Equal(t, tc.biases, types)
		})
	}
}

func TestRecommend(t *testing.T) {
	testCases := []struct {
		name       string
		event      LifeEvent
		allocation Allocation
		fund       int
		priority   string
	}{
		{
			name:       "Job loss happening now",
			event:      LifeEvent{PrimaryLifeEvent: "job_loss", EventTimeline: "happening_now"},
			allocation: Allocation{AssetCash: 25, AssetBonds: 50, AssetStocks: 20, AssetAlternatives: 5},
			fund:       12,
			priority:   "liquidity",
		},
		{
			name:       "Retirement far away",
			event:      LifeEvent{PrimaryLifeEvent: "retirement_planning", EventTimeline: "5_plus_years"},
			allocation: Allocation{AssetCash: 5, AssetBonds: 40, AssetStocks: 50, AssetAlternatives: 5},
			fund:       6,
			priority:   "growth",
		},
		{
			name:       "Unknown event",
			event:      LifeEvent{PrimaryLifeEvent: "lottery", EventTimeline: "1_2_years"},
			allocation: Allocation{AssetCash: 5, AssetBonds: 30, AssetStocks: 60, AssetAlternatives: 5},
			fund:       3,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Recommend(tc.event)
			assert.Equal(t, tc.allocation, got.AllocationChanges)
			assert.Equal(t, tc.fund, got.EmergencyFund)
			assert.NotEmpty(t, got.ImmediateActions)
			if tc.priority == "" {
				assert.Nil(t, got.TimelineStrategy)
			} else {
				require.NotNil(t, got.TimelineStrategy)
				assert.Equal(t, tc.priority, got.TimelineStrategy.Priority)
			}
		})
	}

	// The liquidity shift must not leak into the shared strategy table.
	Recommend(LifeEvent{PrimaryLifeEvent: "marriage", EventTimeline: "next_6_months"})
	assert.Equal(t, 65.0, Recommend(LifeEvent{PrimaryLifeEvent: "marriage"}).AllocationChanges[AssetStocks])
}

func TestTransition(t *testing.T) {
	current := Allocation{AssetStocks: 70, AssetBonds: 20, AssetAlternatives: 0, AssetCash: 10}
	target := Allocation{AssetStocks: 50, AssetBonds: 35, AssetCash: 15}

	testCases := []struct {
		scenario string
		expected Allocation
	}{
		{ScenarioImmediate, Allocation{AssetStocks: 50, AssetBonds: 35, AssetAlternatives: 0, AssetCash: 15}},
		{ScenarioGradual, Allocation{AssetStocks: 63.4, AssetBonds: 25, AssetAlternatives: 0, AssetCash: 11.7}},
		{ScenarioSelective, Allocation{AssetStocks: 50, AssetBonds: 35, AssetAlternatives: 0, AssetCash: 10}},
	}
	for _, tc := range testCases {
		t.Run(tc.scenario, func(t *testing.T) {
			got, err := Transition(current, target, tc.scenario)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}

	_, err := Transition(current, target, "yolo")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	assert.Equal(t, 70.0, current[AssetStocks])
}

func TestEmotionalImpact(t *testing.T) {
	assert.Equal(t, "Medium - Quick changes may cause anxiety", EmotionalImpact(ScenarioImmediate))
	assert.Equal(t, "Low - Gradual changes reduce emotional stress", EmotionalImpact(ScenarioGradual))
	assert.Equal(t, "Very Low - Minimal disruption to existing positions", EmotionalImpact(ScenarioSelective))
	assert.Equal(t, "Unknown", EmotionalImpact("other"))
}
