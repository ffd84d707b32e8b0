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

const goalColumns = `goal_id, user_id, title, target_amount, current_amount, status,
	 auto_contribute_amount, auto_contribute_frequency, last_contributed_at,
	 shared_with_user_ids, created_at`

type GoalRepository struct {
	db *database.DB
}

func NewGoalRepository(db *database.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

func (r *GoalRepository) Create(ctx context.Context, g *models.Goal) error {
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO goal (user_id, title, target_amount, current_amount, status,
		 auto_contribute_amount, auto_contribute_frequency, shared_with_user_ids)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING goal_id, created_at`,
		g.UserID, g.Title, g.TargetAmount, g.CurrentAmount, g.Status,
		g.AutoContributeAmount, g.AutoContributeFrequency, g.SharedWithUserIDs,
	).Scan(&g.GoalID, &g.CreatedAt)
}

// GetAutoContributable returns ACTIVE goals with an auto-contribution
// configured. Completed goals never come back here, so the scheduler cannot
// contribute past the target.
func (r *GoalRepository) GetAutoContributable(ctx context.Context) ([]*models.Goal, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+goalColumns+`
		 FROM goal
		 WHERE status = 'ACTIVE'
		   AND auto_contribute_amount IS NOT NULL
		   AND auto_contribute_frequency IS NOT NULL`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanGoals(rows)
}

func (r *GoalRepository) GetByID(ctx context.Context, goalID, userID uuid.UUID) (*models.Goal, error) {
	g := &models.Goal{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT `+goalColumns+` FROM goal WHERE goal_id = $1 AND user_id = $2`,
		goalID, userID,
	).Scan(
		&g.GoalID, &g.UserID, &g.Title, &g.TargetAmount, &g.CurrentAmount, &g.Status,
		&g.AutoContributeAmount, &g.AutoContributeFrequency, &g.LastContributedAt,
		&g.SharedWithUserIDs, &g.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// SaveContribution persists an already-applied contribution (see
// Goal.ApplyContribution): the Savings expense insert, the goal progress
// update and the account balance decrement commit as one unit.
func (r *GoalRepository) SaveContribution(ctx context.Context, g *models.Goal, accountID uuid.UUID, amount decimal.Decimal, now time.Time) error {
	dbTx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer dbTx.Rollback(ctx)

	_, err = dbTx.Exec(ctx,
		`INSERT INTO transaction (user_id, account_id, type, amount, description, category,
		 transaction_date, status, is_recurring)
		 VALUES ($1, $2, 'EXPENSE', $3, $4, 'Savings', $5, 'COMPLETED', FALSE)`,
		g.UserID, accountID, amount, "Auto-contribution to goal: "+g.Title, now,
	)
	if err != nil {
		return err
	}

	_, err = dbTx.Exec(ctx,
		`UPDATE goal SET current_amount = $1, status = $2, last_contributed_at = $3
		 WHERE goal_id = $4`,
		g.CurrentAmount, g.Status, g.LastContributedAt, g.GoalID,
	)
	if err != nil {
		return err
	}

	_, err = dbTx.Exec(ctx,
		`UPDATE account SET balance = balance - $1 WHERE account_id = $2`,
		amount, accountID,
	)
	if err != nil {
		return err
	}

	return dbTx.Commit(ctx)
}

func scanGoals(rows pgx.Rows) ([]*models.Goal, error) {
	var goals []*models.Goal
	for rows.Next() {
		g := &models.Goal{}
		if err := rows.Scan(
			&g.GoalID, &g.UserID, &g.Title, &g.TargetAmount, &g.CurrentAmount, &g.Status,
			&g.AutoContributeAmount, &g.AutoContributeFrequency, &g.LastContributedAt,
			&g.SharedWithUserIDs, &g.CreatedAt,
		); err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}
