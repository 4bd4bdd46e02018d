// Package coach turns an investor's life events and investing behavior into
// coaching insights, and applies the resulting target allocation.
package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"portfolio-rebalancer-go/internal/apperr"
	"portfolio-rebalancer-go/internal/models"
	"portfolio-rebalancer-go/internal/store"

	"go.uber.org/zap"
)

// RecommendationsLimit is how many past analyses are listed per user.
const RecommendationsLimit = 5

// LifeEvent holds the life event answers of the coaching questionnaire.
type LifeEvent struct {
	PrimaryLifeEvent string `json:"primaryLifeEvent"`
	EventTimeline    string `json:"eventTimeline"`
	FinancialImpact  string `json:"financialImpact"`
	RiskChange       string `json:"riskChange"`
	EventDetails     string `json:"eventDetails"`
}

// Behavior holds the behavioral answers of the coaching questionnaire.
type Behavior struct {
	CurrentEmotion string `json:"currentEmotion"`
	MarketOutlook  string `json:"marketOutlook"`
	DecisionStyle  string `json:"decisionStyle"`
	RecentBehavior string `json:"recentBehavior"`
}

// AnalyzeRequest asks for a coaching analysis.
type AnalyzeRequest struct {
	UserID    string    `json:"user_id"`
	LifeEvent LifeEvent `json:"life_event_data"`
	Behavior  Behavior  `json:"behavioral_data"`
}

// Analysis is the stored result of one coaching session.
type Analysis struct {
	ID              uint            `json:"analysis_id"`
	Insights        Insights        `json:"insights"`
	Recommendations Recommendations `json:"recommendations"`
}

// RebalanceRequest applies a recommended allocation using a scenario.
type RebalanceRequest struct {
	UserID          string          `json:"user_id"`
	Scenario        string          `json:"scenario"`
	Recommendations RebalanceTarget `json:"recommendations"`
}

// RebalanceTarget is the part of an analysis a rebalance acts on.
type RebalanceTarget struct {
	AllocationChanges Allocation `json:"allocationChanges"`
	LifeEvent         string     `json:"lifeEvent"`
}

// RebalanceResult describes an applied allocation change.
type RebalanceResult struct {
	Message         string     `json:"message"`
	NewAllocation   Allocation `json:"new_allocation"`
	EmotionalImpact string     `json:"emotional_impact"`
	ExecutionID     uint       `json:"execution_id"`
}

// AnalysisSummary is one row of a user's coaching history.
type AnalysisSummary struct {
	ID              uint      `json:"id"`
	AnalyzedAt      time.Time `json:"analysis_date"`
	LifeEvent       string    `json:"life_event"`
	Timeline        string    `json:"timeline"`
	FinancialImpact string    `json:"financial_impact"`
	CurrentEmotion  string    `json:"current_emotion"`
	MarketOutlook   string    `json:"market_outlook"`
	DecisionStyle   string    `json:"decision_style"`
}

// Service runs coaching analyses and coach-driven rebalances.
type Service struct {
	store  *store.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a coach over a Store.
func NewService(st *store.Store, logger *zap.Logger) *Service {
	return &Service{
		store:  st,
		logger: logger.Named("coach"),
		now:    time.Now,
	}
}

// Analyze derives insights and recommendations from the questionnaire and
// stores them.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (*Analysis, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, apperr.InvalidInput("user_id is required")
	}
	if _, err := s.store.Investor(ctx, userID); err != nil {
		return nil, err
	}

	res := &Analysis{
		Insights:        AnalyzeBehavior(req.LifeEvent, req.Behavior),
		Recommendations: Recommend(req.LifeEvent),
	}
	insights, err := json.Marshal(res.Insights)
	if err != nil {
		return nil, fmt.Errorf("failed to encode insights: %w", err)
	}
	recs, err := json.Marshal(res.Recommendations)
	if err != nil {
		return nil, fmt.Errorf("failed to encode recommendations: %w", err)
	}

	row := &models.CoachingAnalysis{
		UserID:              userID,
		AnalyzedAt:          s.now(),
		LifeEvent:           req.LifeEvent.PrimaryLifeEvent,
		Timeline:            req.LifeEvent.EventTimeline,
		FinancialImpact:     req.LifeEvent.FinancialImpact,
		RiskChange:          req.LifeEvent.RiskChange,
		CurrentEmotion:      req.Behavior.CurrentEmotion,
		MarketOutlook:       req.Behavior.MarketOutlook,
		DecisionStyle:       req.Behavior.DecisionStyle,
		RecentBehavior:      req.Behavior.RecentBehavior,
		EventDetails:        req.LifeEvent.EventDetails,
		InsightsJSON:        string(insights),
		RecommendationsJSON: string(recs),
	}
	if err := s.store.AppendAnalysis(ctx, row); err != nil {
		return nil, err
	}
	res.ID = row.ID

	s.logger.Info("Coaching analysis stored",
		zap.String("user", userID),
		zap.String("life_event", row.LifeEvent),
		zap.String("emotional_state", res.Insights.EmotionalState.Level))
	return res, nil
}

// Rebalance moves the investor's target allocation toward the recommended
// one and logs the change.
func (s *Service) Rebalance(ctx context.Context, req RebalanceRequest) (*RebalanceResult, error) {
	userID := strings.TrimSpace(req.UserID)
	scenario := strings.TrimSpace(req.Scenario)
	if userID == "" || scenario == "" {
		return nil, apperr.InvalidInput("user_id and scenario are required")
	}

	res := &RebalanceResult{EmotionalImpact: EmotionalImpact(scenario)}
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		p, err := tx.Investor(ctx, userID)
		if err != nil {
			return err
		}
		current := Allocation{
			AssetStocks:       p.EquitiesPercent,
			AssetBonds:        p.BondsPercent,
			AssetAlternatives: p.AlternativesPercent,
			AssetCash:         p.CashPercent,
		}
		next, err := Transition(current, req.Recommendations.AllocationChanges, scenario)
		if err != nil {
			return err
		}

		p.EquitiesPercent = next[AssetStocks]
		p.BondsPercent = next[AssetBonds]
		p.AlternativesPercent = next[AssetAlternatives]
		p.CashPercent = next[AssetCash]
		at := s.now()
		if err := tx.UpdateTargetAllocation(ctx, p, at); err != nil {
			return err
		}

		oldJSON, err := json.Marshal(current)
		if err != nil {
			return fmt.Errorf("failed to encode allocation: %w", err)
		}
		newJSON, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("failed to encode allocation: %w", err)
		}
		change := &models.AllocationChange{
			UserID:          userID,
			ExecutedAt:      at,
			Scenario:        scenario,
			LifeEvent:       req.Recommendations.LifeEvent,
			OldAllocation:   string(oldJSON),
			NewAllocation:   string(newJSON),
			EmotionalImpact: res.EmotionalImpact,
			Status:          "completed",
		}
		if err := tx.AppendAllocationChange(ctx, change); err != nil {
			return err
		}

		res.NewAllocation = next
		res.ExecutionID = change.ID
		return nil
	})
	if err != nil {
		s.logger.Warn("Coach rebalance failed",
			zap.String("user", userID),
			zap.String("scenario", scenario),
			zap.Error(err))
		return nil, err
	}

	res.Message = fmt.Sprintf("Portfolio rebalanced using %s strategy", scenario)
	s.logger.Info("Coach rebalance applied",
		zap.String("user", userID),
		zap.String("scenario", scenario),
		zap.Uint("execution_id", res.ExecutionID))
	return res, nil
}

// Recommendations lists the latest analyses of a user, newest first.
func (s *Service) Recommendations(ctx context.Context, userID string) ([]AnalysisSummary, error) {
	if _, err := s.store.Investor(ctx, userID); err != nil {
		return nil, err
	}
	rows, err := s.store.Analyses(ctx, userID, RecommendationsLimit)
	if err != nil {
		return nil, err
	}
	out := make([]AnalysisSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, AnalysisSummary{
			ID:              r.ID,
			AnalyzedAt:      r.AnalyzedAt,
			LifeEvent:       r.LifeEvent,
			Timeline:        r.Timeline,
			FinancialImpact: r.FinancialImpact,
			CurrentEmotion:  r.CurrentEmotion,
			MarketOutlook:   r.MarketOutlook,
			DecisionStyle:   r.DecisionStyle,
		})
	}
	return out, nil
}
