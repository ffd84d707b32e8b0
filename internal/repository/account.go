package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dariachm/finledger/internal/database"
	"github.com/dariachm/finledger/internal/models"
)

type AccountRepository struct {
	db *database.DB
}

func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, a *models.Account) error {
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO account (user_id, name, balance, is_default)
		 VALUES ($1, $2, $3, $4)
		 RETURNING account_id, created_at`,
		a.UserID, a.Name, a.Balance, a.IsDefault,
	).Scan(&a.AccountID, &a.CreatedAt)
}

func (r *AccountRepository) GetByID(ctx context.Context, accountID uuid.UUID) (*models.Account, error) {
	a := &models.Account{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT account_id, user_id, name, balance, is_default, created_at
		 FROM account WHERE account_id = $1`,
		accountID,
	).Scan(&a.AccountID, &a.UserID, &a.Name, &a.Balance, &a.IsDefault, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetDefaultForUser resolves the user's default account. Alerts and goal
// contributions are skipped for users without one.
func (r *AccountRepository) GetDefaultForUser(ctx context.Context, userID uuid.UUID) (*models.Account, error) {
	a := &models.Account{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT account_id, user_id, name, balance, is_default, created_at
		 FROM account WHERE user_id = $1 AND is_default = TRUE`,
		userID,
	).Scan(&a.AccountID, &a.UserID, &a.Name, &a.Balance, &a.IsDefault, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}
