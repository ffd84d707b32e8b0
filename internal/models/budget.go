package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AlertFrequency string

const (
	AlertFrequencyNone    AlertFrequency = "NONE"
	AlertFrequencyDaily   AlertFrequency = "DAILY"
	AlertFrequencyWeekly  AlertFrequency = "WEEKLY"
	AlertFrequencyMonthly AlertFrequency = "MONTHLY"
	AlertFrequencyYearly  AlertFrequency = "YEARLY"
)

func (f AlertFrequency) IsValid() bool {
	switch f {
	case AlertFrequencyNone, AlertFrequencyDaily, AlertFrequencyWeekly,
		AlertFrequencyMonthly, AlertFrequencyYearly:
		return true
	}
	return false
}

// Budget caps one spending category for one user. At most one budget exists
// per (user, category) pair.
type Budget struct {
	BudgetID       uuid.UUID       `json:"budget_id"`
	UserID         uuid.UUID       `json:"user_id"`
	Category       string          `json:"category"`
	Amount         decimal.Decimal `json:"amount"`
	RolloverAmount decimal.Decimal `json:"rollover_amount"`
	AlertThreshold decimal.Decimal `json:"alert_threshold"` // fraction of Amount, 0-1
	AlertFrequency AlertFrequency  `json:"alert_frequency"`
	LastAlertSent  *time.Time      `json:"last_alert_sent"`
	CreatedAt      time.Time       `json:"created_at"`
}

// PercentageUsed is spend as a fraction of the budgeted amount. Zero-amount
// budgets report zero rather than dividing by zero.
func (b *Budget) PercentageUsed(totalExpenses decimal.Decimal) decimal.Decimal {
	if b.Amount.IsZero() {
		return decimal.Zero
	}
	return totalExpenses.Div(b.Amount)
}

// ShouldSendAlert gates alert delivery by frequency. The gate compares
// calendar boundaries for DAILY and MONTHLY (an alert at 23:59 permits another
// at 00:01) while WEEKLY requires seven full days to elapse.
func ShouldSendAlert(lastAlertSent *time.Time, now time.Time, frequency AlertFrequency) bool {
	if frequency == AlertFrequencyNone {
		return false
	}
	if lastAlertSent == nil {
		return true
	}

	last := *lastAlertSent
	switch frequency {
	case AlertFrequencyDaily:
		return !sameCalendarDay(last, now)
	case AlertFrequencyWeekly:
		return now.Sub(last) >= 7*24*time.Hour
	case AlertFrequencyMonthly:
		return last.Month() != now.Month() || last.Year() != now.Year()
	case AlertFrequencyYearly:
		return last.Year() != now.Year()
	default:
		return true
	}
}

func sameCalendarDay(a, b time.Time) bool {
	return a.Day() == b.Day() && a.Month() == b.Month() && a.Year() == b.Year()
}

// HistoricalBudget is the immutable close-of-period snapshot written by the
// monthly rollover, one row per (user, category, month, year).
type HistoricalBudget struct {
	HistoricalBudgetID uuid.UUID       `json:"historical_budget_id"`
	UserID             uuid.UUID       `json:"user_id"`
	Category           string          `json:"category"`
	Month              int             `json:"month"` // 1-12
	Year               int             `json:"year"`
	BudgetedAmount     decimal.Decimal `json:"budgeted_amount"`
	ActualExpenses     decimal.Decimal `json:"actual_expenses"`
	RolloverAmount     decimal.Decimal `json:"rollover_amount"`
	CreatedAt          time.Time       `json:"created_at"`
}

// CloseBudgetPeriod computes the close-of-period snapshot for one budget and
// the new live amount after carrying the remainder forward. The remainder may
// be negative, so chronic overspend keeps shrinking the effective budget with
// no floor.
func CloseBudgetPeriod(b *Budget, actualExpenses decimal.Decimal, month, year int) (HistoricalBudget, decimal.Decimal) {
	remaining := b.Amount.Sub(actualExpenses)
	snapshot := HistoricalBudget{
		UserID:         b.UserID,
		Category:       b.Category,
		Month:          month,
		Year:           year,
		BudgetedAmount: b.Amount,
		ActualExpenses: actualExpenses,
		RolloverAmount: remaining,
	}
	return snapshot, b.Amount.Add(remaining)
}

// MonthBounds returns the inclusive start and end instants of t's calendar
// month in t's location.
func MonthBounds(t time.Time) (start, end time.Time) {
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end = start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}
