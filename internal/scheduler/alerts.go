package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dariachm/finledger/internal/models"
	"github.com/dariachm/finledger/internal/notify"
	"github.com/dariachm/finledger/internal/repository"
)

type alertBudgetStore interface {
	GetAll(ctx context.Context) ([]*models.Budget, error)
	SetLastAlertSent(ctx context.Context, budgetID uuid.UUID, sentAt time.Time) error
}

type alertExpenseStore interface {
	SumExpenses(ctx context.Context, userID, accountID uuid.UUID, category string, start, end time.Time) (decimal.Decimal, error)
}

type accountStore interface {
	GetDefaultForUser(ctx context.Context, userID uuid.UUID) (*models.Account, error)
}

type userStore interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// AlertEvaluator compares period-to-date spend against each budget's
// threshold and notifies the owner, gated by the budget's alert frequency.
type AlertEvaluator struct {
	budgets  alertBudgetStore
	expenses alertExpenseStore
	accounts accountStore
	users    userStore
	notifier notify.Notifier
	now      func() time.Time
}

func NewAlertEvaluator(budgets alertBudgetStore, expenses alertExpenseStore, accounts accountStore, users userStore, notifier notify.Notifier) *AlertEvaluator {
	return &AlertEvaluator{
		budgets:  budgets,
		expenses: expenses,
		accounts: accounts,
		users:    users,
		notifier: notifier,
		now:      time.Now,
	}
}

func (e *AlertEvaluator) Run(ctx context.Context) error {
	budgets, err := e.budgets.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch budgets: %w", err)
	}

	now := e.now()
	for _, budget := range budgets {
		if err := e.Evaluate(ctx, budget, now); err != nil {
			log.Printf("budget-alerts: budget %s: %v", budget.BudgetID, err)
		}
	}
	return nil
}

// Evaluate checks one budget. Spend is summed over the current calendar month
// on the user's default account only; users without a default account are
// skipped. The notification is sent before last_alert_sent is recorded, so a
// crash between the two causes at most one duplicate alert.
func (e *AlertEvaluator) Evaluate(ctx context.Context, budget *models.Budget, now time.Time) error {
	account, err := e.accounts.GetDefaultForUser(ctx, budget.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	start, end := models.MonthBounds(now)
	totalExpenses, err := e.expenses.SumExpenses(ctx, budget.UserID, account.AccountID, budget.Category, start, end)
	if err != nil {
		return err
	}

	percentageUsed := budget.PercentageUsed(totalExpenses)
	if percentageUsed.LessThan(budget.AlertThreshold) {
		return nil
	}
	if !models.ShouldSendAlert(budget.LastAlertSent, now, budget.AlertFrequency) {
		return nil
	}

	user, err := e.users.GetByID(ctx, budget.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	err = e.notifier.Send(ctx, notify.Message{
		To: notify.Recipient{
			UserName:       user.Name,
			Email:          user.Email,
			TelegramChatID: user.TelegramChatID,
		},
		Subject:  fmt.Sprintf("Budget Alert for %s (%s)", account.Name, budget.Category),
		Template: notify.TemplateBudgetAlert,
		Data: notify.BudgetAlertData{
			PercentageUsed: percentageUsed,
			BudgetAmount:   budget.Amount,
			TotalExpenses:  totalExpenses,
			AccountName:    account.Name,
			Category:       budget.Category,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send alert: %w", err)
	}

	return e.budgets.SetLastAlertSent(ctx, budget.BudgetID, now)
}
