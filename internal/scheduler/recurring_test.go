package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dariachm/finledger/internal/models"
	"github.com/dariachm/finledger/internal/repository"
)

type mockRecurringStore struct {
	mock.Mock
}

func (m *mockRecurringStore) GetDueRecurring(ctx context.Context, now time.Time) ([]*models.Transaction, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

func (m *mockRecurringStore) GetByID(ctx context.Context, transactionID, userID uuid.UUID) (*models.Transaction, error) {
	args := m.Called(ctx, transactionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *mockRecurringStore) ApplyRecurring(ctx context.Context, tmpl *models.Transaction, now, next time.Time) error {
	args := m.Called(ctx, tmpl, now, next)
	return args.Error(0)
}

func newTestDispatcher() *Dispatcher {
	return NewDispatcher(4, NewThrottle(100, time.Minute), RetryPolicy{
		MaxAttempts: 1,
		BaseDelay:   time.Millisecond,
		Multiplier:  2,
	})
}

func dueTemplate(interval models.RecurringInterval, amount int64) *models.Transaction {
	processed := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)
	due := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	return &models.Transaction{
		TransactionID:     uuid.New(),
		UserID:            uuid.New(),
		AccountID:         uuid.New(),
		Type:              models.TransactionTypeExpense,
		Amount:            decimal.NewFromInt(amount),
		Description:       "Netflix",
		Category:          "Entertainment",
		Status:            models.TransactionStatusCompleted,
		IsRecurring:       true,
		RecurringInterval: &interval,
		LastProcessed:     &processed,
		NextDueAt:         &due,
	}
}

func TestRecurringProcessOne_MaterializesAndAdvances(t *testing.T) {
	now := time.Date(2024, time.June, 2, 10, 30, 0, 0, time.UTC)
	tmpl := dueTemplate(models.IntervalMonthly, 50)

	store := new(mockRecurringStore)
	store.On("GetByID", mock.Anything, tmpl.TransactionID, tmpl.UserID).Return(tmpl, nil)
	store.On("ApplyRecurring", mock.Anything, tmpl, now, models.NextDate(now, models.IntervalMonthly)).Return(nil)

	p := NewRecurringProcessor(store, newTestDispatcher())
	p.now = func() time.Time { return now }

	err := p.ProcessOne(context.Background(), WorkUnit{ItemID: tmpl.TransactionID, UserID: tmpl.UserID})

	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestRecurringProcessOne_SkipsWhenNoLongerDue(t *testing.T) {
	now := time.Date(2024, time.June, 2, 10, 30, 0, 0, time.UTC)
	tmpl := dueTemplate(models.IntervalMonthly, 50)
	// Another run already advanced the template past now.
	future := now.AddDate(0, 1, 0)
	tmpl.NextDueAt = &future

	store := new(mockRecurringStore)
	store.On("GetByID", mock.Anything, tmpl.TransactionID, tmpl.UserID).Return(tmpl, nil)

	p := NewRecurringProcessor(store, newTestDispatcher())
	p.now = func() time.Time { return now }

	err := p.ProcessOne(context.Background(), WorkUnit{ItemID: tmpl.TransactionID, UserID: tmpl.UserID})

	assert.NoError(t, err)
	store.AssertNotCalled(t, "ApplyRecurring", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecurringProcessOne_SkipsDeletedTemplate(t *testing.T) {
	store := new(mockRecurringStore)
	store.On("GetByID", mock.Anything, mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)

	p := NewRecurringProcessor(store, newTestDispatcher())

	err := p.ProcessOne(context.Background(), WorkUnit{ItemID: uuid.New(), UserID: uuid.New()})

	assert.NoError(t, err)
	store.AssertNotCalled(t, "ApplyRecurring", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecurringProcessOne_NonPositiveAmountIsInvariant(t *testing.T) {
	now := time.Date(2024, time.June, 2, 10, 30, 0, 0, time.UTC)
	tmpl := dueTemplate(models.IntervalMonthly, 0)

	store := new(mockRecurringStore)
	store.On("GetByID", mock.Anything, tmpl.TransactionID, tmpl.UserID).Return(tmpl, nil)

	p := NewRecurringProcessor(store, newTestDispatcher())
	p.now = func() time.Time { return now }

	err := p.ProcessOne(context.Background(), WorkUnit{ItemID: tmpl.TransactionID, UserID: tmpl.UserID})

	assert.ErrorIs(t, err, ErrInvariant)
	store.AssertNotCalled(t, "ApplyRecurring", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecurringProcessOne_MissingIntervalIsInvariant(t *testing.T) {
	now := time.Date(2024, time.June, 2, 10, 30, 0, 0, time.UTC)
	tmpl := dueTemplate(models.IntervalMonthly, 50)
	tmpl.RecurringInterval = nil

	store := new(mockRecurringStore)
	store.On("GetByID", mock.Anything, tmpl.TransactionID, tmpl.UserID).Return(tmpl, nil)

	p := NewRecurringProcessor(store, newTestDispatcher())
	p.now = func() time.Time { return now }

	err := p.ProcessOne(context.Background(), WorkUnit{ItemID: tmpl.TransactionID, UserID: tmpl.UserID})

	assert.ErrorIs(t, err, ErrInvariant)
}

func TestRecurringRun_ProcessesEachDueTemplateOnce(t *testing.T) {
	now := time.Date(2024, time.June, 2, 10, 30, 0, 0, time.UTC)
	userID := uuid.New()

	templates := make([]*models.Transaction, 3)
	for i := range templates {
		templates[i] = dueTemplate(models.IntervalDaily, 10)
		templates[i].UserID = userID
	}

	store := new(mockRecurringStore)
	store.On("GetDueRecurring", mock.Anything, now).Return(templates, nil)
	for _, tmpl := range templates {
		store.On("GetByID", mock.Anything, tmpl.TransactionID, userID).Return(tmpl, nil).Once()
		store.On("ApplyRecurring", mock.Anything, tmpl, now, models.NextDate(now, models.IntervalDaily)).Return(nil).Once()
	}

	p := NewRecurringProcessor(store, newTestDispatcher())
	p.now = func() time.Time { return now }

	err := p.Run(context.Background())

	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestRecurringRun_FailedUnitDoesNotStopSiblings(t *testing.T) {
	now := time.Date(2024, time.June, 2, 10, 30, 0, 0, time.UTC)

	healthy := dueTemplate(models.IntervalDaily, 10)
	broken := dueTemplate(models.IntervalDaily, 0)

	store := new(mockRecurringStore)
	store.On("GetDueRecurring", mock.Anything, now).Return([]*models.Transaction{broken, healthy}, nil)
	store.On("GetByID", mock.Anything, broken.TransactionID, broken.UserID).Return(broken, nil)
	store.On("GetByID", mock.Anything, healthy.TransactionID, healthy.UserID).Return(healthy, nil)
	store.On("ApplyRecurring", mock.Anything, healthy, now, models.NextDate(now, models.IntervalDaily)).Return(nil).Once()

	p := NewRecurringProcessor(store, newTestDispatcher())
	p.now = func() time.Time { return now }

	err := p.Run(context.Background())

	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestDispatchProcessesEveryUnit(t *testing.T) {
	units := []WorkUnit{
		{ItemID: uuid.New(), UserID: uuid.New()},
		{ItemID: uuid.New(), UserID: uuid.New()},
		{ItemID: uuid.New(), UserID: uuid.New()},
	}

	var mu sync.Mutex
	seen := make(map[uuid.UUID]int)

	d := newTestDispatcher()
	d.Dispatch(context.Background(), "test-job", units, func(ctx context.Context, unit WorkUnit) error {
		mu.Lock()
		defer mu.Unlock()
		seen[unit.ItemID]++
		return nil
	})

	assert.Len(t, seen, 3)
	for _, unit := range units {
		assert.Equal(t, 1, seen[unit.ItemID])
	}
}
