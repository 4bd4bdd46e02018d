// Package api exposes the portal over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"portfolio-rebalancer-go/internal/advisor"
	"portfolio-rebalancer-go/internal/coach"
	"portfolio-rebalancer-go/internal/config"
	"portfolio-rebalancer-go/internal/investor"
	"portfolio-rebalancer-go/internal/marketdata"
	"portfolio-rebalancer-go/internal/rebalance"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Deps are the services behind the routes. Syncer may be nil when no quote
// API is configured.
type Deps struct {
	Investors *investor.Service
	Rebalance *rebalance.Service
	Advisor   *advisor.Advisor
	Coach     *coach.Service
	Syncer    *marketdata.PriceSyncer
}

// Server is the portal HTTP server.
type Server struct {
	router *chi.Mux
	server *http.Server
	logger *zap.Logger
	deps   Deps
	now    func() time.Time
}

// New creates the portal server and registers every route.
func New(cfg config.Server, deps Deps, logger *zap.Logger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		logger: logger.Named("api"),
		deps:   deps,
		now:    time.Now,
	}

	s.setupMiddleware(cfg.AllowedOrigins)
	s.setupRoutes(cfg.StaticDir)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware(origins []string) {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes(staticDir string) {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/stats", s.handleStats)
		r.Get("/investors", s.handleInvestors)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/", s.handleUser)
			r.Get("/holdings", s.handleHoldings)
		})

		r.Get("/rebalance-options/{userID}/{assetClass}", s.handleOptions)
		r.Get("/rebalance/{userID}/{assetClass}", s.handleScenarios)
		r.Post("/rebalance/execute", s.handleExecute)
		r.Post("/execute-custom-rebalance", s.handleExecuteCustom)

		r.Post("/market/sync", s.handleMarketSync)

		r.Route("/ai", func(r chi.Router) {
			r.Post("/chat", s.handleChat)
			r.Get("/chat/history/{userID}", s.handleChatHistory)
			r.Get("/customers", s.handleCustomers)
			r.Get("/scenarios/{userID}", s.handlePersonalized)
			r.Get("/risk-alerts/{userID}", s.handleRiskAlerts)
			r.Get("/goals/{userID}", s.handleGoals)
			r.Get("/monitoring/alerts", s.handleMonitoring)
			r.Get("/market-intelligence", s.handleMarketIntelligence)
			r.Get("/portfolio-analysis/{userID}", s.handlePortfolioAnalysis)
			r.Get("/quick-insights/{userID}", s.handleQuickInsights)
			r.Get("/agent-status", s.handleAgentStatus)
		})

		r.Route("/behavioral-coach", func(r chi.Router) {
			r.Post("/analyze", s.handleCoachAnalyze)
			r.Post("/rebalance", s.handleCoachRebalance)
			r.Get("/recommendations/{userID}", s.handleCoachRecommendations)
		})
	})

	if staticDir != "" {
		s.router.Handle("/*", http.FileServer(http.Dir(staticDir)))
	}
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("address", s.server.Addr))
	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
