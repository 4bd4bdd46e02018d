package portfolio

import (
	"fmt"

	"portfolio-rebalancer-go/internal/models"
)

// MonitorAlert reports that a portfolio needs rebalancing.
type MonitorAlert struct {
	UserID          string   `json:"user_id"`
	Type            string   `json:"type"`
	Priority        string   `json:"priority"`
	Message         string   `json:"message"`
	Recommendations []string `json:"recommendations"`
}

// CheckPortfolio looks at the Poor and Below Average holdings of a user and
// returns an alert when there are at least two of them or their average
// return is below -10%. It returns nil otherwise.
func CheckPortfolio(userID string, holdings []models.Holding) *MonitorAlert {
	count := 0
	sum := 0.0
	for _, h := range holdings {
		if h.PerformanceRating.Underperforming() {
			count++
			sum += h.ReturnPercent
		}
	}
	avg := 0.0
	if count > 0 {
		avg = sum / float64(count)
	}
	if count < 2 && avg >= -10 {
		return nil
	}

	priority := "medium"
	if avg < -15 {
		priority = "high"
	}
	return &MonitorAlert{
		UserID:   userID,
		Type:     "rebalancing_needed",
		Priority: priority,
		Message:  fmt.Sprintf("Portfolio has %d underperforming holdings with %.1f%% average return", count, avg),
		Recommendations: []string{
			"Consider selling underperforming assets",
			"Reallocate to top-performing funds",
			"Review risk tolerance",
		},
	}
}
