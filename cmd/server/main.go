package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/funters/fund-engine/internal/config"
	"github.com/funters/fund-engine/internal/engine"
	"github.com/funters/fund-engine/internal/handler"
	"github.com/funters/fund-engine/internal/repository"
	"github.com/funters/fund-engine/internal/service"
	"github.com/funters/fund-engine/pkg/metrics"
	"github.com/funters/fund-engine/pkg/observability"
	"github.com/funters/fund-engine/pkg/response"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	db, err := initDB(cfg)
	if err != nil {
		logger.Error("initializing database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient := initRedis(cfg)
	defer redisClient.Close()

	collector := metrics.NewCollector()

	loanRepo := repository.NewLoanRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	depositRepo := repository.NewDepositRepository(db)

	loanEngine := engine.New()
	loanService := service.NewLoanService(loanRepo, memberRepo, loanEngine, redisClient, cfg, logger, collector)
	memberService := service.NewMemberService(memberRepo, logger)
	depositService := service.NewDepositService(depositRepo, memberRepo, redisClient, logger, collector)
	dashboardService := service.NewDashboardService(loanRepo, depositRepo, memberRepo, redisClient, cfg, logger)

	router := setupRoutes(
		handler.NewLoanHandler(loanService),
		handler.NewMemberHandler(memberService),
		handler.NewDepositHandler(depositService),
		handler.NewDashboardHandler(dashboardService),
		handler.NewHealthHandler(db, redisClient),
		collector,
		logger,
	)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(
	loanHandler *handler.LoanHandler,
	memberHandler *handler.MemberHandler,
	depositHandler *handler.DepositHandler,
	dashboardHandler *handler.DashboardHandler,
	healthHandler *handler.HealthHandler,
	collector *metrics.Collector,
	logger *slog.Logger,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.CORSMiddleware)
	router.Use(response.LoggingMiddleware(logger))
	router.Use(collector.Middleware)

	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")
	router.Handle("/metrics", collector.Handler()).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/loans", loanHandler.IssueLoan).Methods("POST")
	api.HandleFunc("/loans", loanHandler.ListLoans).Methods("GET")
	api.HandleFunc("/loans/{loanId}", loanHandler.GetLoan).Methods("GET")
	api.HandleFunc("/loans/{loanId}/installments/{installmentId}/pay", loanHandler.PayInstallment).Methods("POST")

	api.HandleFunc("/members", memberHandler.Register).Methods("POST")
	api.HandleFunc("/members", memberHandler.List).Methods("GET")
	api.HandleFunc("/members/{memberId}/approve", memberHandler.Approve).Methods("POST")
	api.HandleFunc("/members/{memberId}/reject", memberHandler.Reject).Methods("POST")

	api.HandleFunc("/deposits", depositHandler.CreateDeposit).Methods("POST")
	api.HandleFunc("/deposits", depositHandler.ListDeposits).Methods("GET")

	api.HandleFunc("/dashboard", dashboardHandler.GetStats).Methods("GET")

	return router
}
