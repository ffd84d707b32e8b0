package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/dariachm/finledger/internal/database"
	"github.com/dariachm/finledger/internal/models"
)

// ErrNotFound is returned by point lookups when no row matches. Callers in the
// engine treat it as a skip, not a failure.
var ErrNotFound = errors.New("not found")

const transactionColumns = `transaction_id, user_id, account_id, type, amount, description, category,
	 transaction_date, status, is_recurring, recurring_interval, last_processed, next_due_at, created_at`

type TransactionRepository struct {
	db *database.DB
}

func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO transaction (user_id, account_id, type, amount, description, category,
		 transaction_date, status, is_recurring, recurring_interval, last_processed, next_due_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING transaction_id, created_at`,
		tx.UserID, tx.AccountID, tx.Type, tx.Amount, tx.Description, tx.Category,
		tx.TransactionDate, tx.Status, tx.IsRecurring, tx.RecurringInterval, tx.LastProcessed, tx.NextDueAt,
	).Scan(&tx.TransactionID, &tx.CreatedAt)
}

// GetDueRecurring returns every recurring template whose next materialization
// has arrived. Only settled templates participate.
func (r *TransactionRepository) GetDueRecurring(ctx context.Context, now time.Time) ([]*models.Transaction, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+transactionColumns+`
		 FROM transaction
		 WHERE is_recurring = TRUE AND status = 'COMPLETED'
		   AND (last_processed IS NULL OR next_due_at <= $1)`,
		now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func (r *TransactionRepository) GetByID(ctx context.Context, transactionID, userID uuid.UUID) (*models.Transaction, error) {
	tx := &models.Transaction{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT `+transactionColumns+`
		 FROM transaction WHERE transaction_id = $1 AND user_id = $2`,
		transactionID, userID,
	).Scan(
		&tx.TransactionID, &tx.UserID, &tx.AccountID, &tx.Type, &tx.Amount, &tx.Description,
		&tx.Category, &tx.TransactionDate, &tx.Status, &tx.IsRecurring, &tx.RecurringInterval,
		&tx.LastProcessed, &tx.NextDueAt, &tx.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// ApplyRecurring materializes one due template as a new settled transaction.
// The insert, the account balance adjustment and the template's
// last_processed/next_due_at advancement commit as one unit.
func (r *TransactionRepository) ApplyRecurring(ctx context.Context, tmpl *models.Transaction, now, next time.Time) error {
	dbTx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer dbTx.Rollback(ctx)

	_, err = dbTx.Exec(ctx,
		`INSERT INTO transaction (user_id, account_id, type, amount, description, category,
		 transaction_date, status, is_recurring)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, 'COMPLETED', FALSE)`,
		tmpl.UserID, tmpl.AccountID, tmpl.Type, tmpl.Amount,
		tmpl.Description+" (Recurring)", tmpl.Category, now,
	)
	if err != nil {
		return err
	}

	_, err = dbTx.Exec(ctx,
		`UPDATE account SET balance = balance + $1 WHERE account_id = $2`,
		tmpl.BalanceDelta(), tmpl.AccountID,
	)
	if err != nil {
		return err
	}

	_, err = dbTx.Exec(ctx,
		`UPDATE transaction SET last_processed = $1, next_due_at = $2
		 WHERE transaction_id = $3`,
		now, next, tmpl.TransactionID,
	)
	if err != nil {
		return err
	}

	return dbTx.Commit(ctx)
}

// SumExpenses totals settled EXPENSE transactions for a user and category on
// one account within [start, end].
func (r *TransactionRepository) SumExpenses(ctx context.Context, userID, accountID uuid.UUID, category string, start, end time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0)
		 FROM transaction
		 WHERE user_id = $1 AND account_id = $2 AND type = 'EXPENSE' AND category = $3
		   AND transaction_date >= $4 AND transaction_date <= $5`,
		userID, accountID, category, start, end,
	).Scan(&total)
	return total, err
}

// SumExpensesAllAccounts is SumExpenses without the account filter, used by
// the monthly rollover which closes budgets against all of a user's spending.
func (r *TransactionRepository) SumExpensesAllAccounts(ctx context.Context, userID uuid.UUID, category string, start, end time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0)
		 FROM transaction
		 WHERE user_id = $1 AND type = 'EXPENSE' AND category = $2
		   AND transaction_date >= $3 AND transaction_date <= $4`,
		userID, category, start, end,
	).Scan(&total)
	return total, err
}

func (r *TransactionRepository) GetByDateRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*models.Transaction, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+transactionColumns+`
		 FROM transaction
		 WHERE user_id = $1 AND transaction_date >= $2 AND transaction_date <= $3
		 ORDER BY transaction_date DESC`,
		userID, start, end,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// GetStalePending returns PENDING transactions created at or before cutoff.
func (r *TransactionRepository) GetStalePending(ctx context.Context, cutoff time.Time) ([]*models.Transaction, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+transactionColumns+`
		 FROM transaction
		 WHERE status = 'PENDING' AND created_at <= $1`,
		cutoff,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func (r *TransactionRepository) MarkCompleted(ctx context.Context, transactionID uuid.UUID) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE transaction SET status = 'COMPLETED' WHERE transaction_id = $1`,
		transactionID,
	)
	return err
}

func scanTransactions(rows pgx.Rows) ([]*models.Transaction, error) {
	var transactions []*models.Transaction
	for rows.Next() {
		tx := &models.Transaction{}
		if err := rows.Scan(
			&tx.TransactionID, &tx.UserID, &tx.AccountID, &tx.Type, &tx.Amount, &tx.Description,
			&tx.Category, &tx.TransactionDate, &tx.Status, &tx.IsRecurring, &tx.RecurringInterval,
			&tx.LastProcessed, &tx.NextDueAt, &tx.CreatedAt,
		); err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}
