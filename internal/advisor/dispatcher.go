// Package advisor answers portfolio questions with rule-based replies and
// produces the risk, monitoring and planning summaries shown in the portal.
package advisor

import (
	"context"
	"strings"
	"time"

	"portfolio-rebalancer-go/internal/apperr"
	"portfolio-rebalancer-go/internal/models"
	"portfolio-rebalancer-go/internal/store"

	"go.uber.org/zap"
)

// Agent names the reply handler a message was routed to.
type Agent string

const (
	AgentRebalancing Agent = "rebalancing"
	AgentRisk        Agent = "risk"
	AgentPlanning    Agent = "planning"
	AgentMarket      Agent = "market"
	AgentGeneral     Agent = "general"
)

// HistoryLimit is how many chat messages are returned per user.
const HistoryLimit = 20

type handler func(a *Advisor, ctx context.Context, userID string) (string, error)

// rule routes messages containing any of its keywords to a handler.
type rule struct {
	agent    Agent
	keywords []string
	handle   handler
}

func (r rule) matches(lower string) bool {
	for _, k := range r.keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// rules are evaluated in order; the first match wins.
var rules = []rule{
	{AgentRebalancing, []string{"rebalance", "buy", "sell", "allocation"}, (*Advisor).rebalancingReply},
	{AgentRisk, []string{"risk", "safe", "protect", "lose"}, (*Advisor).riskReply},
	{AgentPlanning, []string{"goal", "retire", "plan", "future"}, (*Advisor).planningReply},
	{AgentMarket, []string{"market", "news", "trend", "economy"}, (*Advisor).marketReply},
}

var fallback = rule{agent: AgentGeneral, handle: (*Advisor).generalReply}

func route(message string) rule {
	lower := strings.ToLower(message)
	for _, r := range rules {
		if r.matches(lower) {
			return r
		}
	}
	return fallback
}

// Classify returns the agent a message is routed to.
func Classify(message string) Agent {
	return route(message).agent
}

// Advisor holds the dependencies of every reply handler.
type Advisor struct {
	store  *store.Store
	logger *zap.Logger
	now    func() time.Time
}

// New creates an Advisor over a Store.
func New(st *store.Store, logger *zap.Logger) *Advisor {
	return &Advisor{
		store:  st,
		logger: logger.Named("advisor"),
		now:    time.Now,
	}
}

// ChatResponse is the reply to one chat message.
type ChatResponse struct {
	Response    string    `json:"response"`
	AgentType   Agent     `json:"agent_type"`
	Suggestions []string  `json:"suggestions"`
	Timestamp   time.Time `json:"timestamp"`
}

// Chat routes a message to the first matching handler and stores both sides
// of the exchange.
func (a *Advisor) Chat(ctx context.Context, userID, message string) (*ChatResponse, error) {
	userID = strings.TrimSpace(userID)
	message = strings.TrimSpace(message)
	if userID == "" {
		return nil, apperr.InvalidInput("user_id is required")
	}
	if message == "" {
		return nil, apperr.InvalidInput("message is required")
	}

	r := route(message)
	reply, err := r.handle(a, ctx, userID)
	if err != nil {
		return nil, err
	}

	err = a.store.AppendChat(ctx,
		models.ChatMessage{UserID: userID, Role: "user", Content: message, AgentType: string(r.agent)},
		models.ChatMessage{UserID: userID, Role: "assistant", Content: reply, AgentType: string(r.agent)},
	)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("Chat message answered", zap.String("user", userID), zap.String("agent", string(r.agent)))
	return &ChatResponse{
		Response:    reply,
		AgentType:   r.agent,
		Suggestions: Suggestions(r.agent),
		Timestamp:   a.now(),
	}, nil
}

// History returns the latest chat messages of a user, oldest first.
func (a *Advisor) History(ctx context.Context, userID string) ([]models.ChatMessage, error) {
	return a.store.ChatHistory(ctx, userID, HistoryLimit)
}

var suggestions = map[Agent][]string{
	AgentGeneral: {
		"How is my portfolio performing?",
		"What should I do with my investments?",
		"Show me my risk analysis",
	},
	AgentRebalancing: {
		"Should I rebalance my portfolio now?",
		"What stocks should I sell?",
		"Show me top performing funds to buy",
	},
	AgentRisk: {
		"What are my biggest risks?",
		"How can I protect my portfolio?",
		"Run a stress test on my holdings",
	},
	AgentPlanning: {
		"Help me plan for retirement",
		"Set up investment goals",
		"How much should I save monthly?",
	},
	AgentMarket: {
		"What's happening in the market today?",
		"How do market trends affect my portfolio?",
		"Any alerts for my holdings?",
	},
}

// Suggestions returns three follow-up questions for an agent.
func Suggestions(agent Agent) []string {
	s, ok := suggestions[agent]
	if !ok {
		s = suggestions[AgentGeneral]
	}
	return append([]string(nil), s...)
}
