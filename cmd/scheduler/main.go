package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/funters/fund-engine/internal/config"
	"github.com/funters/fund-engine/internal/domain"
	"github.com/funters/fund-engine/internal/repository"
	"github.com/funters/fund-engine/internal/service"
	"github.com/funters/fund-engine/pkg/metrics"
	"github.com/funters/fund-engine/pkg/observability"
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

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		logger.Error("initializing database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	reminders := service.NewReminderService(repository.NewLoanRepository(db), logger, metrics.NewCollector())

	c := cron.New(cron.WithSeconds())
	if err := setupCronJobs(c, cfg, reminders, logger); err != nil {
		logger.Error("scheduling jobs", "error", err)
		os.Exit(1)
	}

	c.Start()
	logger.Info("scheduler started",
		"overdueSpec", cfg.Scheduler.OverdueSpec,
		"reminderSpec", cfg.Scheduler.ReminderSpec,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down scheduler")
	<-c.Stop().Done()
	logger.Info("scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, reminders *service.ReminderService, logger *slog.Logger) error {
	// Daily sweep flagging installments past their due date.
	_, err := c.AddFunc(cfg.Scheduler.OverdueSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if _, err := reminders.FlagOverdueInstallments(ctx, domain.DateOf(time.Now())); err != nil {
			logger.Error("overdue sweep failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	// Weekly reminder for installments coming due.
	_, err = c.AddFunc(cfg.Scheduler.ReminderSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if _, err := reminders.SendPaymentReminders(ctx, domain.DateOf(time.Now()), cfg.Scheduler.ReminderDays); err != nil {
			logger.Error("payment reminders failed", "error", err)
		}
	})
	return err
}
