package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dariachm/finledger/internal/models"
	"github.com/dariachm/finledger/internal/repository"
)

type goalStore interface {
	GetAutoContributable(ctx context.Context) ([]*models.Goal, error)
	GetByID(ctx context.Context, goalID, userID uuid.UUID) (*models.Goal, error)
	SaveContribution(ctx context.Context, g *models.Goal, accountID uuid.UUID, amount decimal.Decimal, now time.Time) error
}

// GoalContributor applies periodic auto-contributions to savings goals,
// funding them from the owner's default account.
type GoalContributor struct {
	goals      goalStore
	accounts   accountStore
	dispatcher *Dispatcher
	now        func() time.Time
}

func NewGoalContributor(goals goalStore, accounts accountStore, dispatcher *Dispatcher) *GoalContributor {
	return &GoalContributor{
		goals:      goals,
		accounts:   accounts,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

func (c *GoalContributor) Run(ctx context.Context) error {
	goals, err := c.goals.GetAutoContributable(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch auto-contributable goals: %w", err)
	}
	if len(goals) == 0 {
		return nil
	}

	units := make([]WorkUnit, len(goals))
	for i, goal := range goals {
		units[i] = WorkUnit{ItemID: goal.GoalID, UserID: goal.UserID}
	}
	c.dispatcher.Dispatch(ctx, "goal-contributions", units, c.ProcessOne)
	return nil
}

// ProcessOne contributes to one goal if its frequency says a contribution is
// due. The re-fetch excludes goals completed or unconfigured since selection;
// the contribution, the goal progress update (including a possible flip to
// COMPLETED) and the balance decrement are one atomic store operation.
func (c *GoalContributor) ProcessOne(ctx context.Context, unit WorkUnit) error {
	now := c.now()

	goal, err := c.goals.GetByID(ctx, unit.ItemID, unit.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if goal.Status != models.GoalStatusActive {
		return nil
	}
	if goal.AutoContributeAmount == nil || goal.AutoContributeFrequency == nil {
		return nil
	}
	if !models.IsAutoContributionDue(goal.LastContributedAt, now, *goal.AutoContributeFrequency) {
		return nil
	}

	amount := *goal.AutoContributeAmount
	if !amount.IsPositive() {
		return fmt.Errorf("%w: goal %s has non-positive contribution amount %s",
			ErrInvariant, goal.GoalID, amount)
	}

	account, err := c.accounts.GetDefaultForUser(ctx, goal.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	goal.ApplyContribution(amount, now)
	return c.goals.SaveContribution(ctx, goal, account.AccountID, amount, now)
}
