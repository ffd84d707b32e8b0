package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestShouldSendAlert_NoneAndFirstAlert(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

	assert.False(t, ShouldSendAlert(nil, now, AlertFrequencyNone))
	sent := now.Add(-90 * 24 * time.Hour)
	assert.False(t, ShouldSendAlert(&sent, now, AlertFrequencyNone))

	// No prior alert always sends (except NONE)
	assert.True(t, ShouldSendAlert(nil, now, AlertFrequencyDaily))
	assert.True(t, ShouldSendAlert(nil, now, AlertFrequencyMonthly))
}

func TestShouldSendAlert_DailyComparesCalendarDay(t *testing.T) {
	now := time.Date(2024, time.June, 15, 0, 1, 0, 0, time.UTC)

	sameDay := time.Date(2024, time.June, 15, 0, 0, 30, 0, time.UTC)
	assert.False(t, ShouldSendAlert(&sameDay, now, AlertFrequencyDaily))

	// 23:59 yesterday permits 00:01 today, only minutes apart
	yesterday := time.Date(2024, time.June, 14, 23, 59, 0, 0, time.UTC)
	assert.True(t, ShouldSendAlert(&yesterday, now, AlertFrequencyDaily))
}

func TestShouldSendAlert_WeeklyRequiresElapsedDuration(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

	sixDays := now.Add(-6 * 24 * time.Hour)
	assert.False(t, ShouldSendAlert(&sixDays, now, AlertFrequencyWeekly))

	sevenDays := now.Add(-7 * 24 * time.Hour)
	assert.True(t, ShouldSendAlert(&sevenDays, now, AlertFrequencyWeekly))
}

func TestShouldSendAlert_MonthlyComparesCalendarMonth(t *testing.T) {
	now := time.Date(2024, time.June, 28, 12, 0, 0, 0, time.UTC)

	// Same month blocks regardless of how long ago within it
	startOfMonth := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	assert.False(t, ShouldSendAlert(&startOfMonth, now, AlertFrequencyMonthly))

	// Prior month sends even if only days apart
	endOfMay := time.Date(2024, time.May, 31, 23, 0, 0, 0, time.UTC)
	assert.True(t, ShouldSendAlert(&endOfMay, now, AlertFrequencyMonthly))

	// Same month of a different year sends
	lastYear := time.Date(2023, time.June, 28, 12, 0, 0, 0, time.UTC)
	assert.True(t, ShouldSendAlert(&lastYear, now, AlertFrequencyMonthly))
}

func TestShouldSendAlert_YearlyComparesCalendarYear(t *testing.T) {
	now := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)

	lastYear := time.Date(2023, time.December, 31, 23, 0, 0, 0, time.UTC)
	assert.True(t, ShouldSendAlert(&lastYear, now, AlertFrequencyYearly))

	thisYear := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	assert.False(t, ShouldSendAlert(&thisYear, now, AlertFrequencyYearly))
}

func TestPercentageUsed(t *testing.T) {
	budget := &Budget{Amount: decimal.NewFromInt(500)}

	assert.True(t, budget.PercentageUsed(decimal.NewFromInt(400)).Equal(decimal.NewFromFloat(0.8)))

	zero := &Budget{Amount: decimal.Zero}
	assert.True(t, zero.PercentageUsed(decimal.NewFromInt(100)).IsZero())
}

func TestCloseBudgetPeriod(t *testing.T) {
	budget := &Budget{
		BudgetID: uuid.New(),
		UserID:   uuid.New(),
		Category: "Groceries",
		Amount:   decimal.NewFromInt(500),
	}

	snapshot, newAmount := CloseBudgetPeriod(budget, decimal.NewFromInt(420), 5, 2024)

	assert.Equal(t, budget.UserID, snapshot.UserID)
	assert.Equal(t, "Groceries", snapshot.Category)
	assert.Equal(t, 5, snapshot.Month)
	assert.Equal(t, 2024, snapshot.Year)
	assert.True(t, snapshot.BudgetedAmount.Equal(decimal.NewFromInt(500)))
	assert.True(t, snapshot.ActualExpenses.Equal(decimal.NewFromInt(420)))
	assert.True(t, snapshot.RolloverAmount.Equal(decimal.NewFromInt(80)))
	assert.True(t, newAmount.Equal(decimal.NewFromInt(580)))
}

func TestCloseBudgetPeriod_OverspendGoesNegative(t *testing.T) {
	budget := &Budget{Amount: decimal.NewFromInt(300)}

	snapshot, newAmount := CloseBudgetPeriod(budget, decimal.NewFromInt(450), 5, 2024)

	assert.True(t, snapshot.RolloverAmount.Equal(decimal.NewFromInt(-150)))
	// Overspend shrinks the next period's effective budget, no floor
	assert.True(t, newAmount.Equal(decimal.NewFromInt(150)))
}

func TestMonthBounds(t *testing.T) {
	start, end := MonthBounds(time.Date(2024, time.February, 14, 15, 4, 5, 0, time.UTC))

	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.February, end.Month())
	assert.Equal(t, 29, end.Day())
	assert.True(t, end.Before(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)))
}
