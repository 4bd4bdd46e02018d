package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"portfolio-rebalancer-go/internal/advisor"
	"portfolio-rebalancer-go/internal/apperr"
	"portfolio-rebalancer-go/internal/coach"
	"portfolio-rebalancer-go/internal/models"
	"portfolio-rebalancer-go/internal/rebalance"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// response is the body of every JSON reply.
type response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response{Success: true, Data: data}); err != nil {
		s.logger.Error("Failed to write response", zap.Error(err))
	}
}

// writeError maps err to a status. Unexpected failures are logged with their
// cause; the client only sees the classified message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	s.writeFailure(w, status, apperr.Message(err))
}

func (s *Server) writeFailure(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response{Success: false, Error: msg})
}

func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return apperr.InvalidInput("invalid request body: %v", err)
	}
	return nil
}

func assetClassParam(r *http.Request) (models.AssetClass, error) {
	raw := chi.URLParam(r, "assetClass")
	class, ok := models.ParseAssetClass(raw)
	if !ok {
		return "", apperr.InvalidInput("unknown asset class %q", raw)
	}
	return class, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.deps.Investors.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleInvestors(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Investors.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	summary, err := s.deps.Investors.Summary(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleHoldings(w http.ResponseWriter, r *http.Request) {
	holdings, err := s.deps.Investors.Holdings(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, holdings)
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	class, err := assetClassParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.Rebalance.Options(r.Context(), chi.URLParam(r, "userID"), class)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	class, err := assetClassParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.Rebalance.Scenarios(r.Context(), chi.URLParam(r, "userID"), class)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req rebalance.ExecuteRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.Rebalance.Execute(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleExecuteCustom(w http.ResponseWriter, r *http.Request) {
	var req rebalance.CustomRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.Rebalance.ExecuteCustom(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleMarketSync(w http.ResponseWriter, r *http.Request) {
	if s.deps.Syncer == nil {
		s.writeFailure(w, http.StatusServiceUnavailable, "market data is not configured")
		return
	}
	res, err := s.deps.Syncer.Sync(r.Context())
	if err != nil {
		s.logger.Error("Price sync failed", zap.Error(err))
		s.writeFailure(w, http.StatusBadGateway, "price sync failed")
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

type chatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.Advisor.Chat(r.Context(), req.UserID, req.Message)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.deps.Advisor.History(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := s.deps.Advisor.Customers(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, customers)
}

func (s *Server) handlePersonalized(w http.ResponseWriter, r *http.Request) {
	scenarios, err := s.deps.Advisor.PersonalizedScenarios(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, scenarios)
}

func (s *Server) handleRiskAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.deps.Advisor.RiskAlerts(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	plan, err := s.deps.Advisor.Goals(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleMonitoring(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.deps.Advisor.MonitorPortfolios(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleMarketIntelligence(w http.ResponseWriter, r *http.Request) {
	category := strings.ToLower(r.URL.Query().Get("type"))
	insights := advisor.MarketInsights()
	if category != "" {
		filtered := insights[:0]
		for _, in := range insights {
			if in.Type == category {
				filtered = append(filtered, in)
			}
		}
		insights = filtered
	}
	s.writeJSON(w, http.StatusOK, insights)
}

func (s *Server) handlePortfolioAnalysis(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.Advisor.PortfolioAnalysis(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleQuickInsights(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.Advisor.QuickInsights(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAgentStatus(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.Advisor.AgentStatus(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCoachAnalyze(w http.ResponseWriter, r *http.Request) {
	var req coach.AnalyzeRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.Coach.Analyze(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCoachRebalance(w http.ResponseWriter, r *http.Request) {
	var req coach.RebalanceRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.Coach.Rebalance(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCoachRecommendations(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Coach.Recommendations(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}
