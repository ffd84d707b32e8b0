package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dariachm/finledger/internal/models"
	"github.com/dariachm/finledger/internal/repository"
)

type recurringStore interface {
	GetDueRecurring(ctx context.Context, now time.Time) ([]*models.Transaction, error)
	GetByID(ctx context.Context, transactionID, userID uuid.UUID) (*models.Transaction, error)
	ApplyRecurring(ctx context.Context, tmpl *models.Transaction, now, next time.Time) error
}

// RecurringProcessor materializes due recurring templates into settled
// transactions.
type RecurringProcessor struct {
	store      recurringStore
	dispatcher *Dispatcher
	now        func() time.Time
}

func NewRecurringProcessor(store recurringStore, dispatcher *Dispatcher) *RecurringProcessor {
	return &RecurringProcessor{
		store:      store,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// Run selects all due templates and fans them out, one unit per template.
func (p *RecurringProcessor) Run(ctx context.Context) error {
	due, err := p.store.GetDueRecurring(ctx, p.now())
	if err != nil {
		return fmt.Errorf("failed to fetch due recurring transactions: %w", err)
	}
	if len(due) == 0 {
		return nil
	}

	units := make([]WorkUnit, len(due))
	for i, tmpl := range due {
		units[i] = WorkUnit{ItemID: tmpl.TransactionID, UserID: tmpl.UserID}
	}
	p.dispatcher.Dispatch(ctx, "recurring-transactions", units, p.ProcessOne)
	return nil
}

// ProcessOne handles one unit of work. It re-fetches the template and
// re-checks due-ness so that overlapping trigger runs or redelivered units
// materialize at most one transaction per due cycle.
func (p *RecurringProcessor) ProcessOne(ctx context.Context, unit WorkUnit) error {
	now := p.now()

	tmpl, err := p.store.GetByID(ctx, unit.ItemID, unit.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !tmpl.IsDue(now) {
		// Already processed by a concurrent run.
		return nil
	}

	if !tmpl.Amount.IsPositive() {
		return fmt.Errorf("%w: template %s has non-positive amount %s",
			ErrInvariant, tmpl.TransactionID, tmpl.Amount)
	}
	if tmpl.RecurringInterval == nil || !tmpl.RecurringInterval.IsValid() {
		return fmt.Errorf("%w: template %s has no valid recurring interval",
			ErrInvariant, tmpl.TransactionID)
	}

	next := models.NextDate(now, *tmpl.RecurringInterval)
	return p.store.ApplyRecurring(ctx, tmpl, now, next)
}
