// Command seed fills a development database with plausible users, accounts,
// budgets, goals and transactions, including recurring templates that are
// already due so the engine has work to do on its first check.
package main

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"

	"github.com/dariachm/finledger/internal/config"
	"github.com/dariachm/finledger/internal/database"
	"github.com/dariachm/finledger/internal/models"
	"github.com/dariachm/finledger/internal/repository"
)

const numUsers = 5

var categories = []string{"Groceries", "Rent", "Transport", "Entertainment", "Utilities", "Uncategorized"}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.DatabaseURI == "" {
		log.Fatal("DATABASE_URI is required")
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	users := repository.NewUserRepository(db)
	accounts := repository.NewAccountRepository(db)
	transactions := repository.NewTransactionRepository(db)
	budgets := repository.NewBudgetRepository(db)
	goals := repository.NewGoalRepository(db)

	for i := 0; i < numUsers; i++ {
		user := &models.User{
			Email: gofakeit.Email(),
			Name:  gofakeit.Name(),
		}
		if err := users.Create(ctx, user); err != nil {
			log.Fatalf("Failed to create user: %v", err)
		}

		account := &models.Account{
			UserID:    user.UserID,
			Name:      gofakeit.RandomString([]string{"Checking", "Main", "Everyday"}),
			Balance:   decimal.NewFromFloat(gofakeit.Float64Range(500, 10000)).Round(2),
			IsDefault: true,
		}
		if err := accounts.Create(ctx, account); err != nil {
			log.Fatalf("Failed to create account: %v", err)
		}

		seedTransactions(ctx, transactions, user, account)
		seedBudgets(ctx, budgets, user)
		seedGoal(ctx, goals, user)

		log.Printf("Seeded user %s (%s)", user.Name, user.Email)
	}
}

func seedTransactions(ctx context.Context, repo *repository.TransactionRepository, user *models.User, account *models.Account) {
	now := time.Now()

	// A month of ordinary spending plus some income
	for i := 0; i < 25; i++ {
		tx := &models.Transaction{
			UserID:          user.UserID,
			AccountID:       account.AccountID,
			Type:            models.TransactionTypeExpense,
			Amount:          decimal.NewFromFloat(gofakeit.Float64Range(5, 200)).Round(2),
			Description:     gofakeit.ProductName(),
			Category:        categories[rand.Intn(len(categories))],
			TransactionDate: now.AddDate(0, 0, -rand.Intn(45)),
			Status:          models.TransactionStatusCompleted,
		}
		if err := repo.Create(ctx, tx); err != nil {
			log.Fatalf("Failed to create transaction: %v", err)
		}
	}
	income := &models.Transaction{
		UserID:          user.UserID,
		AccountID:       account.AccountID,
		Type:            models.TransactionTypeIncome,
		Amount:          decimal.NewFromFloat(gofakeit.Float64Range(2500, 6000)).Round(2),
		Description:     "Salary",
		Category:        "Income",
		TransactionDate: now.AddDate(0, 0, -rand.Intn(28)),
		Status:          models.TransactionStatusCompleted,
	}
	if err := repo.Create(ctx, income); err != nil {
		log.Fatalf("Failed to create income: %v", err)
	}

	// An overdue recurring template the engine should pick up immediately
	interval := models.IntervalMonthly
	lastProcessed := now.AddDate(0, -1, -2)
	nextDue := now.AddDate(0, 0, -2)
	template := &models.Transaction{
		UserID:            user.UserID,
		AccountID:         account.AccountID,
		Type:              models.TransactionTypeExpense,
		Amount:            decimal.NewFromFloat(gofakeit.Float64Range(10, 60)).Round(2),
		Description:       gofakeit.Company() + " subscription",
		Category:          "Entertainment",
		TransactionDate:   lastProcessed,
		Status:            models.TransactionStatusCompleted,
		IsRecurring:       true,
		RecurringInterval: &interval,
		LastProcessed:     &lastProcessed,
		NextDueAt:         &nextDue,
	}
	if err := repo.Create(ctx, template); err != nil {
		log.Fatalf("Failed to create recurring template: %v", err)
	}
}

func seedBudgets(ctx context.Context, repo *repository.BudgetRepository, user *models.User) {
	for _, category := range categories[:3] {
		budget := &models.Budget{
			UserID:         user.UserID,
			Category:       category,
			Amount:         decimal.NewFromFloat(gofakeit.Float64Range(200, 1500)).Round(2),
			AlertThreshold: decimal.NewFromFloat(0.8),
			AlertFrequency: models.AlertFrequencyMonthly,
		}
		if err := repo.Upsert(ctx, budget); err != nil {
			log.Fatalf("Failed to create budget: %v", err)
		}
	}
}

func seedGoal(ctx context.Context, repo *repository.GoalRepository, user *models.User) {
	amount := decimal.NewFromFloat(gofakeit.Float64Range(25, 150)).Round(2)
	frequency := models.ContributeWeekly
	goal := &models.Goal{
		UserID:                  user.UserID,
		Title:                   gofakeit.RandomString([]string{"Emergency fund", "Vacation", "New laptop"}),
		TargetAmount:            decimal.NewFromFloat(gofakeit.Float64Range(1000, 8000)).Round(2),
		CurrentAmount:           decimal.Zero,
		Status:                  models.GoalStatusActive,
		AutoContributeAmount:    &amount,
		AutoContributeFrequency: &frequency,
	}
	if err := repo.Create(ctx, goal); err != nil {
		log.Fatalf("Failed to create goal: %v", err)
	}
}
