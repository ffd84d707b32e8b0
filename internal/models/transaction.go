package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

type RecurringInterval string

const (
	IntervalDaily   RecurringInterval = "DAILY"
	IntervalWeekly  RecurringInterval = "WEEKLY"
	IntervalMonthly RecurringInterval = "MONTHLY"
	IntervalYearly  RecurringInterval = "YEARLY"
)

func (i RecurringInterval) IsValid() bool {
	switch i {
	case IntervalDaily, IntervalWeekly, IntervalMonthly, IntervalYearly:
		return true
	}
	return false
}

// Transaction is both a settled ledger entry and, when IsRecurring is set, the
// template the engine materializes new entries from.
type Transaction struct {
	TransactionID     uuid.UUID          `json:"transaction_id"`
	UserID            uuid.UUID          `json:"user_id"`
	AccountID         uuid.UUID          `json:"account_id"`
	Type              TransactionType    `json:"type"`
	Amount            decimal.Decimal    `json:"amount"`
	Description       string             `json:"description"`
	Category          string             `json:"category"`
	TransactionDate   time.Time          `json:"transaction_date"`
	Status            TransactionStatus  `json:"status"`
	IsRecurring       bool               `json:"is_recurring"`
	RecurringInterval *RecurringInterval `json:"recurring_interval"`
	LastProcessed     *time.Time         `json:"last_processed"`
	NextDueAt         *time.Time         `json:"next_due_at"`
	CreatedAt         time.Time          `json:"created_at"`
}

// IsDue reports whether a recurring template should be materialized at now.
// A template that has never been processed is due immediately.
func (t *Transaction) IsDue(now time.Time) bool {
	if !t.IsRecurring {
		return false
	}
	if t.LastProcessed == nil {
		return true
	}
	return t.NextDueAt != nil && !t.NextDueAt.After(now)
}

// BalanceDelta is the signed effect of this transaction on its account.
func (t *Transaction) BalanceDelta() decimal.Decimal {
	if t.Type == TransactionTypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// NextDate advances from the given date by one interval. Month and year
// advancement clamp to the last valid calendar day instead of rolling into the
// following month: Jan 31 + MONTHLY is Feb 29 in a leap year and Feb 28
// otherwise, and Feb 29 + YEARLY is Feb 28.
func NextDate(from time.Time, interval RecurringInterval) time.Time {
	switch interval {
	case IntervalDaily:
		return from.AddDate(0, 0, 1)
	case IntervalWeekly:
		return from.AddDate(0, 0, 7)
	case IntervalMonthly:
		return addMonthsClamped(from, 1)
	case IntervalYearly:
		return addMonthsClamped(from, 12)
	default:
		return from
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	// Anchor on the first of the month so AddDate cannot overflow, then clamp
	// the day-of-month to the target month's length.
	anchor := time.Date(year, month, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location()).AddDate(0, months, 0)
	if max := daysInMonth(anchor.Year(), anchor.Month()); day > max {
		day = max
	}
	return time.Date(anchor.Year(), anchor.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthlyStats aggregates one user's transactions for a calendar month.
type MonthlyStats struct {
	TotalIncome      decimal.Decimal
	TotalExpenses    decimal.Decimal
	ByCategory       map[string]decimal.Decimal
	TransactionCount int
}

// NewMonthlyStats folds transactions into per-month totals, grouping expenses
// by category.
func NewMonthlyStats(transactions []*Transaction) MonthlyStats {
	stats := MonthlyStats{
		ByCategory:       make(map[string]decimal.Decimal),
		TransactionCount: len(transactions),
	}
	for _, t := range transactions {
		if t.Type == TransactionTypeExpense {
			stats.TotalExpenses = stats.TotalExpenses.Add(t.Amount)
			stats.ByCategory[t.Category] = stats.ByCategory[t.Category].Add(t.Amount)
		} else {
			stats.TotalIncome = stats.TotalIncome.Add(t.Amount)
		}
	}
	return stats
}

// NetIncome is income minus expenses for the period.
func (s MonthlyStats) NetIncome() decimal.Decimal {
	return s.TotalIncome.Sub(s.TotalExpenses)
}
