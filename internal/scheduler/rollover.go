package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dariachm/finledger/internal/models"
	"github.com/dariachm/finledger/internal/notify"
)

type monthlyUserStore interface {
	GetAll(ctx context.Context) ([]*models.User, error)
}

type monthlyBudgetStore interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Budget, error)
	RollOver(ctx context.Context, b *models.Budget, actualExpenses decimal.Decimal, month, year int) error
}

type monthlyTransactionStore interface {
	GetByDateRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*models.Transaction, error)
	SumExpensesAllAccounts(ctx context.Context, userID uuid.UUID, category string, start, end time.Time) (decimal.Decimal, error)
}

type insightGenerator interface {
	GenerateInsights(ctx context.Context, stats models.MonthlyStats, month string) []string
}

// MonthlyProcessor runs on the first of each month: per user it sends the
// previous month's financial report and then closes out every budget,
// snapshotting the period to history and carrying the remainder forward.
type MonthlyProcessor struct {
	users        monthlyUserStore
	budgets      monthlyBudgetStore
	transactions monthlyTransactionStore
	insights     insightGenerator
	notifier     notify.Notifier
	now          func() time.Time
}

func NewMonthlyProcessor(users monthlyUserStore, budgets monthlyBudgetStore, transactions monthlyTransactionStore, insights insightGenerator, notifier notify.Notifier) *MonthlyProcessor {
	return &MonthlyProcessor{
		users:        users,
		budgets:      budgets,
		transactions: transactions,
		insights:     insights,
		notifier:     notifier,
		now:          time.Now,
	}
}

func (p *MonthlyProcessor) Run(ctx context.Context) error {
	users, err := p.users.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch users: %w", err)
	}

	now := p.now()
	// A day inside the previous calendar month, independent of today's
	// day-of-month.
	previous := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 0, -1)

	for _, user := range users {
		if err := p.ProcessUser(ctx, user, previous); err != nil {
			log.Printf("monthly-reports: user %s: %v", user.UserID, err)
		}
	}
	return nil
}

// ProcessUser generates and sends one user's report, then rolls their budgets
// over. A failed report send is logged but does not block the rollover; each
// budget rolls over atomically on its own, so an interruption leaves budgets
// either fully rolled or untouched.
func (p *MonthlyProcessor) ProcessUser(ctx context.Context, user *models.User, previous time.Time) error {
	start, end := models.MonthBounds(previous)

	transactions, err := p.transactions.GetByDateRange(ctx, user.UserID, start, end)
	if err != nil {
		return fmt.Errorf("failed to fetch transactions: %w", err)
	}
	stats := models.NewMonthlyStats(transactions)
	monthName := previous.Format("January")

	insights := p.insights.GenerateInsights(ctx, stats, monthName)

	err = p.notifier.Send(ctx, notify.Message{
		To: notify.Recipient{
			UserName:       user.Name,
			Email:          user.Email,
			TelegramChatID: user.TelegramChatID,
		},
		Subject:  "Your Monthly Financial Report - " + monthName,
		Template: notify.TemplateMonthlyReport,
		Data: notify.MonthlyReportData{
			Month:    monthName,
			Stats:    stats,
			Insights: insights,
		},
	})
	if err != nil {
		log.Printf("monthly-reports: user %s: failed to send report: %v", user.UserID, err)
	}

	budgets, err := p.budgets.GetByUserID(ctx, user.UserID)
	if err != nil {
		return fmt.Errorf("failed to fetch budgets: %w", err)
	}

	for _, budget := range budgets {
		actualExpenses, err := p.transactions.SumExpensesAllAccounts(ctx, user.UserID, budget.Category, start, end)
		if err != nil {
			log.Printf("monthly-reports: budget %s: failed to sum expenses: %v", budget.BudgetID, err)
			continue
		}
		if err := p.budgets.RollOver(ctx, budget, actualExpenses, int(previous.Month()), previous.Year()); err != nil {
			log.Printf("monthly-reports: budget %s: rollover failed: %v", budget.BudgetID, err)
		}
	}
	return nil
}
