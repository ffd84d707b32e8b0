package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/dariachm/finledger/internal/models"
)

type pendingStore interface {
	GetStalePending(ctx context.Context, cutoff time.Time) ([]*models.Transaction, error)
	MarkCompleted(ctx context.Context, transactionID uuid.UUID) error
}

// PendingCompleter settles transactions that have sat in PENDING for at least
// a day.
type PendingCompleter struct {
	store pendingStore
	now   func() time.Time
}

func NewPendingCompleter(store pendingStore) *PendingCompleter {
	return &PendingCompleter{
		store: store,
		now:   time.Now,
	}
}

func (p *PendingCompleter) Run(ctx context.Context) error {
	cutoff := p.now().Add(-24 * time.Hour)
	stale, err := p.store.GetStalePending(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to fetch stale pending transactions: %w", err)
	}

	for _, tx := range stale {
		if err := p.store.MarkCompleted(ctx, tx.TransactionID); err != nil {
			log.Printf("pending-transactions: transaction %s: %v", tx.TransactionID, err)
		}
	}
	return nil
}
