package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dariachm/finledger/internal/database"
	"github.com/dariachm/finledger/internal/models"
)

const budgetColumns = `budget_id, user_id, category, amount, rollover_amount,
	 alert_threshold, alert_frequency, last_alert_sent, created_at`

type BudgetRepository struct {
	db *database.DB
}

func NewBudgetRepository(db *database.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

// Upsert creates or replaces the single budget for (user, category).
func (r *BudgetRepository) Upsert(ctx context.Context, b *models.Budget) error {
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO budget (user_id, category, amount, rollover_amount, alert_threshold, alert_frequency)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id, category) DO UPDATE SET
		   amount = EXCLUDED.amount,
		   alert_threshold = EXCLUDED.alert_threshold,
		   alert_frequency = EXCLUDED.alert_frequency
		 RETURNING budget_id, created_at`,
		b.UserID, b.Category, b.Amount, b.RolloverAmount, b.AlertThreshold, b.AlertFrequency,
	).Scan(&b.BudgetID, &b.CreatedAt)
}

func (r *BudgetRepository) GetAll(ctx context.Context) ([]*models.Budget, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+budgetColumns+` FROM budget ORDER BY user_id, category`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []*models.Budget
	for rows.Next() {
		b := &models.Budget{}
		if err := rows.Scan(
			&b.BudgetID, &b.UserID, &b.Category, &b.Amount, &b.RolloverAmount,
			&b.AlertThreshold, &b.AlertFrequency, &b.LastAlertSent, &b.CreatedAt,
		); err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (r *BudgetRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Budget, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+budgetColumns+` FROM budget WHERE user_id = $1 ORDER BY category`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []*models.Budget
	for rows.Next() {
		b := &models.Budget{}
		if err := rows.Scan(
			&b.BudgetID, &b.UserID, &b.Category, &b.Amount, &b.RolloverAmount,
			&b.AlertThreshold, &b.AlertFrequency, &b.LastAlertSent, &b.CreatedAt,
		); err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// SetLastAlertSent records a delivered alert. Runs after the send so a crash
// in between causes at most one duplicate alert, never a silently swallowed one.
func (r *BudgetRepository) SetLastAlertSent(ctx context.Context, budgetID uuid.UUID, sentAt time.Time) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE budget SET last_alert_sent = $1 WHERE budget_id = $2`,
		sentAt, budgetID,
	)
	return err
}

// RollOver closes one budget's previous period: the historical snapshot upsert
// and the live budget mutation commit as one unit so an interruption cannot
// leave a half-rolled budget.
func (r *BudgetRepository) RollOver(ctx context.Context, b *models.Budget, actualExpenses decimal.Decimal, month, year int) error {
	snapshot, newAmount := models.CloseBudgetPeriod(b, actualExpenses, month, year)

	dbTx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer dbTx.Rollback(ctx)

	_, err = dbTx.Exec(ctx,
		`INSERT INTO historical_budget (user_id, category, month, year, budgeted_amount, actual_expenses, rollover_amount)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id, category, month, year) DO UPDATE SET
		   budgeted_amount = EXCLUDED.budgeted_amount,
		   actual_expenses = EXCLUDED.actual_expenses,
		   rollover_amount = EXCLUDED.rollover_amount`,
		snapshot.UserID, snapshot.Category, snapshot.Month, snapshot.Year,
		snapshot.BudgetedAmount, snapshot.ActualExpenses, snapshot.RolloverAmount,
	)
	if err != nil {
		return err
	}

	_, err = dbTx.Exec(ctx,
		`UPDATE budget SET amount = $1, rollover_amount = 0 WHERE budget_id = $2`,
		newAmount, b.BudgetID,
	)
	if err != nil {
		return err
	}

	return dbTx.Commit(ctx)
}

// GetHistory returns the snapshots for one user, newest period first.
func (r *BudgetRepository) GetHistory(ctx context.Context, userID uuid.UUID) ([]*models.HistoricalBudget, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT historical_budget_id, user_id, category, month, year,
		        budgeted_amount, actual_expenses, rollover_amount, created_at
		 FROM historical_budget WHERE user_id = $1
		 ORDER BY year DESC, month DESC, category`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []*models.HistoricalBudget
	for rows.Next() {
		h := &models.HistoricalBudget{}
		if err := rows.Scan(
			&h.HistoricalBudgetID, &h.UserID, &h.Category, &h.Month, &h.Year,
			&h.BudgetedAmount, &h.ActualExpenses, &h.RolloverAmount, &h.CreatedAt,
		); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
