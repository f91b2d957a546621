// Package server provides HTTP server initialization and lifecycle management.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"hackboard/src/app/http/handler"
	"hackboard/src/app/middleware"
	"hackboard/src/core/ports"
	"hackboard/src/core/usecase"
	"hackboard/src/infra/collab"
	"hackboard/src/infra/config"
	"hackboard/src/infra/metrics"
	"hackboard/src/infra/notify"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	cfg     *config.Config
	log     *slog.Logger
	router  *gin.Engine
	http    *http.Server
	metrics *metrics.Metrics

	// Handlers
	healthHandler      *handler.HealthHandler
	assignmentHandler  *handler.AssignmentHandler
	evaluationHandler  *handler.EvaluationHandler
	leaderboardHandler *handler.LeaderboardHandler

	authorizer ports.Authorizer
}

// New creates a new Server with all dependencies wired up.
func New(cfg *config.Config, log *slog.Logger, repo ports.CoreRepository) *Server {
	// Set Gin mode based on log level
	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router without default middleware
	router := gin.New()

	m := metrics.New()
	authorizer := collab.NewPoolAuthorizer(repo)
	submissions := collab.NewSubmissionStatus(repo)
	notifier := notify.NewLogNotifier(nil, log)

	// Create services
	healthService := usecase.NewHealthService(repo, log)
	assignmentService := usecase.NewAssignmentService(repo, m, log)
	scoringService := usecase.NewScoringService(repo, notifier, m, log)
	evaluationService := usecase.NewEvaluationService(repo, submissions, notifier, m, log)
	// Final submissions trigger the best-effort background recompute.
	evaluationService.SetAggregator(scoringService)

	s := &Server{
		cfg:                cfg,
		log:                log,
		router:             router,
		metrics:            m,
		healthHandler:      handler.NewHealthHandler(healthService),
		assignmentHandler:  handler.NewAssignmentHandler(assignmentService),
		evaluationHandler:  handler.NewEvaluationHandler(evaluationService),
		leaderboardHandler: handler.NewLeaderboardHandler(scoringService),
		authorizer:         authorizer,
	}

	s.setupMiddleware()
	s.setupRoutes()
	s.setupHTTPServer()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	// Order matters: Recovery should be first to catch all panics
	s.router.Use(middleware.Recovery(s.log))
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.Logging(s.log))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health and metrics endpoints (no auth required)
	s.router.GET("/health", s.healthHandler.Health)
	s.router.GET("/health/detailed", s.healthHandler.DetailedHealth)
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	adminAuth := middleware.AdminAuth(s.cfg.Admin.Token)
	judgeAuth := middleware.JudgeAuth(s.authorizer)

	v1 := s.router.Group("/v1")
	{
		hackathon := v1.Group("/hackathons/:hackathon_id")

		// Admin: assignment matrix
		admin := hackathon.Group("", adminAuth)
		admin.POST("/assignments", s.assignmentHandler.Assign)
		admin.POST("/assignments/reassign", s.assignmentHandler.Reassign)
		admin.POST("/assignments/rebalance", s.assignmentHandler.Rebalance)
		admin.GET("/assignments/matrix", s.assignmentHandler.Matrix)
		admin.DELETE("/teams/:team_id/assignments", s.assignmentHandler.RemoveTeamAssignments)
		admin.DELETE("/judges/:judge_id/assignments", s.assignmentHandler.RemoveJudgeAssignments)

		// Admin: scoring pipeline and lock
		admin.POST("/evaluations/lock", s.evaluationHandler.SetLock)
		admin.POST("/scores/aggregate", s.leaderboardHandler.Aggregate)
		admin.POST("/leaderboard/compute", s.leaderboardHandler.Compute)
		admin.POST("/leaderboard/publish", s.leaderboardHandler.Publish)
		admin.GET("/leaderboard", s.leaderboardHandler.Internal)

		// Judges: evaluation state machine
		judge := hackathon.Group("", judgeAuth)
		judge.PUT("/evaluations/draft", s.evaluationHandler.SaveDraft)
		judge.POST("/evaluations/submit", s.evaluationHandler.Submit)
		judge.PATCH("/evaluations", s.evaluationHandler.Update)
		judge.GET("/teams/:team_id/evaluation", s.evaluationHandler.Get)

		// Public: published leaderboard only
		v1.GET("/public/hackathons/:hackathon_id/leaderboard", s.leaderboardHandler.Public)
	}

	// Handle 404
	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": gin.H{
				"code":       "NOT_FOUND",
				"message":    "The requested resource was not found",
				"request_id": middleware.GetRequestID(c),
			},
		})
	})
}

// setupHTTPServer configures the underlying HTTP server.
func (s *Server) setupHTTPServer() {
	s.http = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}
}

// Run starts the HTTP server and blocks until shutdown.
// It handles graceful shutdown on SIGINT/SIGTERM.
func (s *Server) Run() error {
	// Channel to receive shutdown signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Channel to receive server errors
	errCh := make(chan error, 1)

	// Start server in goroutine
	go func() {
		s.log.Info("starting HTTP server",
			"addr", s.cfg.Server.Addr(),
		)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-quit:
		s.log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		return err
	}

	// Graceful shutdown
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	s.log.Info("shutting down server", "timeout", s.cfg.Server.ShutdownTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.log.Info("server stopped gracefully")
	return nil
}

// Router returns the Gin router for testing.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// WaitForReady waits until the server is ready to accept connections.
// Useful for integration tests.
func (s *Server) WaitForReady(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(fmt.Sprintf("http://%s/health", s.cfg.Server.Addr()))
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	return fmt.Errorf("server not ready after %v", timeout)
}
