package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dariachm/finledger/internal/ai"
	"github.com/dariachm/finledger/internal/config"
	"github.com/dariachm/finledger/internal/database"
	"github.com/dariachm/finledger/internal/notify"
	"github.com/dariachm/finledger/internal/repository"
	"github.com/dariachm/finledger/internal/schedule"
	"github.com/dariachm/finledger/internal/scheduler"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Validate required config
	if cfg.DatabaseURI == "" {
		log.Fatal("DATABASE_URI is required")
	}
	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN is required")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	db, err := database.New(ctx, cfg.DatabaseURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database")

	// Run migrations
	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	// Initialize AI client (optional)
	var aiClient *ai.Client
	if cfg.AIAPIKey != "" {
		aiClient = ai.New(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel)
		log.Printf("AI client initialized (model: %s)", cfg.AIModel)
	} else {
		log.Println("AI client not configured, monthly insights fall back to generic advice")
	}

	// Notification channel
	notifier, err := notify.NewTelegramNotifier(cfg.TelegramToken)
	if err != nil {
		log.Fatalf("Failed to create notifier: %v", err)
	}

	// Repositories
	transactionRepo := repository.NewTransactionRepository(db)
	budgetRepo := repository.NewBudgetRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Fan-out machinery: per-user throttle, bounded workers, backoff
	throttle := scheduler.NewThrottle(cfg.ThrottleLimit, cfg.ThrottleWindow)
	dispatcher := scheduler.NewDispatcher(cfg.DispatchWorkers, throttle, scheduler.DefaultRetryPolicy())

	// Job processors
	recurring := scheduler.NewRecurringProcessor(transactionRepo, dispatcher)
	alerts := scheduler.NewAlertEvaluator(budgetRepo, transactionRepo, accountRepo, userRepo, notifier)
	monthly := scheduler.NewMonthlyProcessor(userRepo, budgetRepo, transactionRepo, aiClient, notifier)
	contributions := scheduler.NewGoalContributor(goalRepo, accountRepo, dispatcher)
	pending := scheduler.NewPendingCompleter(transactionRepo)

	// Cadences
	now := time.Now()
	daily := mustCadence(schedule.Daily(now))
	everySixHours := mustCadence(schedule.EverySixHours(now))
	hourly := mustCadence(schedule.Hourly(now))
	firstOfMonth := mustCadence(schedule.FirstOfMonth(now))

	sched := scheduler.New(cfg.CheckInterval)
	sched.Register("trigger-recurring-transactions", daily, recurring.Run)
	sched.Register("check-budget-alerts", everySixHours, alerts.Run)
	sched.Register("generate-monthly-reports", firstOfMonth, monthly.Run)
	sched.Register("process-goal-contributions", daily, contributions.Run)
	sched.Register("process-pending-transactions", hourly, pending.Run)

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")
		cancel()
	}()

	sched.Start(ctx)
}

func mustCadence(c *schedule.Cadence, err error) *schedule.Cadence {
	if err != nil {
		log.Fatalf("Failed to build cadence: %v", err)
	}
	return c
}
