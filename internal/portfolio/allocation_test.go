package portfolio

import (
	"testing"

	"portfolio-rebalancer-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentAllocation(t *testing.T) {
	testCases := []struct {
		name          string
		holdings      []models.Holding
		expectedTotal float64
		expected      Allocation
	}{
		{
			name: "Equity heavy",
			holdings: []models.Holding{
				{AssetClass: models.Equity, CurrentValue: 700},
				{AssetClass: models.Bond, CurrentValue: 300},
			},
			expectedTotal: 1000,
			expected:      Allocation{models.Equity: 70, models.Bond: 30, models.Cash: 0, models.Alternative: 0},
		},
		{
			name:          "Empty portfolio",
			holdings:      nil,
			expectedTotal: 0,
			expected:      Allocation{models.Equity: 0, models.Bond: 0, models.Cash: 0, models.Alternative: 0},
		},
		{
			name: "Worthless holdings",
			holdings: []models.Holding{
				{AssetClass: models.Equity, CurrentValue: 0},
				{AssetClass: models.Cash, CurrentValue: 0},
			},
			expectedTotal: 0,
			expected:      Allocation{models.Equity: 0, models.Bond: 0, models.Cash: 0, models.Alternative: 0},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			alloc, total := CurrentAllocation(tc.holdings)
			assert.Equal(t, tc.expectedTotal, total)
			for class, pct := range tc.expected {
				assert.InDelta(t, pct, alloc[class], 1e-9, "class %s", class)
			}
		})
	}
}

func TestCurrentAllocation_SumsToHundred(t *testing.T) {
	holdings := []models.Holding{
		{AssetClass: models.Equity, CurrentValue: 1234.56},
		{AssetClass: models.Bond, CurrentValue: 789.01},
		{AssetClass: models.Cash, CurrentValue: 33.33},
		{AssetClass: models.Alternative, CurrentValue: 4000},
		{AssetClass: models.Equity, CurrentValue: 0.07},
	}
	alloc, _ := CurrentAllocation(holdings)

	sum := 0.0
	for _, pct := range alloc {
		sum += pct
	}
	assert.InDelta(t, 100, sum, 1e-9)
}

func TestDrift_Example(t *testing.T) {
	current, _ := CurrentAllocation([]models.Holding{
		{AssetClass: models.Equity, CurrentValue: 700},
		{AssetClass: models.Bond, CurrentValue: 300},
	})
	d := Drift(current, Allocation{models.Equity: 50}, models.Equity)

	assert.InDelta(t, 70, d.CurrentPct, 1e-9)
	assert.InDelta(t, 20, d.Drift, 1e-9)
	assert.Equal(t, PriorityHigh, d.Priority)
}

func TestPriorityFor(t *testing.T) {
	testCases := []struct {
		drift    float64
		expected Priority
	}{
		{0, PriorityLow},
		{5, PriorityLow},
		{5.01, PriorityMedium},
		{10, PriorityMedium},
		{10.01, PriorityHigh},
		{42, PriorityHigh},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, PriorityFor(tc.drift), "drift %v", tc.drift)
	}
}

func TestPriorityFor_Monotonic(t *testing.T) {
	rank := map[Priority]int{PriorityLow: 0, PriorityMedium: 1, PriorityHigh: 2}
	prev := rank[PriorityFor(0)]
	for d := 0.0; d <= 30; d += 0.25 {
		cur := rank[PriorityFor(d)]
		require.GreaterOrEqual(t, cur, prev, "drift %v", d)
		prev = cur
	}
}

func TestTargetAllocation(t *testing.T) {
	profile := models.InvestorProfile{EquitiesPercent: 60, BondsPercent: 30, CashPercent: 5, AlternativesPercent: 5}

	own := TargetAllocation(profile, nil)
	assert.Equal(t, 60.0, own[models.Equity])
	assert.Equal(t, 5.0, own[models.Alternative])

	model := &models.AllocationModel{Equities: 40, Bonds: 50, Cash: 10}
	fromModel := TargetAllocation(profile, model)
	assert.Equal(t, 40.0, fromModel[models.Equity])
	assert.Equal(t, 50.0, fromModel[models.Bond])
	assert.Equal(t, 0.0, fromModel[models.Alternative])
}

func TestRoundedAndPerformanceCategory(t *testing.T) {
	r := Allocation{models.Equity: 66.666, models.Bond: 33.333}.Rounded()
	assert.Equal(t, 66.7, r[models.Equity])
	assert.Equal(t, 33.3, r[models.Bond])

	assert.Equal(t, "poor", PerformanceCategory(-12))
	assert.Equal(t, "below_average", PerformanceCategory(-10))
	assert.Equal(t, "average", PerformanceCategory(0))
	assert.Equal(t, "excellent", PerformanceCategory(10))
}
