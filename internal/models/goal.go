package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "ACTIVE"
	GoalStatusCompleted GoalStatus = "COMPLETED"
)

type ContributionFrequency string

const (
	ContributeDaily   ContributionFrequency = "DAILY"
	ContributeWeekly  ContributionFrequency = "WEEKLY"
	ContributeMonthly ContributionFrequency = "MONTHLY"
	ContributeYearly  ContributionFrequency = "YEARLY"
)

func (f ContributionFrequency) IsValid() bool {
	switch f {
	case ContributeDaily, ContributeWeekly, ContributeMonthly, ContributeYearly:
		return true
	}
	return false
}

// Goal is a savings target. Auto-contribution fields are both nil or both set.
type Goal struct {
	GoalID                  uuid.UUID              `json:"goal_id"`
	UserID                  uuid.UUID              `json:"user_id"`
	Title                   string                 `json:"title"`
	TargetAmount            decimal.Decimal        `json:"target_amount"`
	CurrentAmount           decimal.Decimal        `json:"current_amount"`
	Status                  GoalStatus             `json:"status"`
	AutoContributeAmount    *decimal.Decimal       `json:"auto_contribute_amount"`
	AutoContributeFrequency *ContributionFrequency `json:"auto_contribute_frequency"`
	LastContributedAt       *time.Time             `json:"last_contributed_at"`
	SharedWithUserIDs       []uuid.UUID            `json:"shared_with_user_ids"`
	CreatedAt               time.Time              `json:"created_at"`
}

// ApplyContribution adds amount to the goal's progress, stamps the
// contribution time, and flips the status to COMPLETED once the target is
// reached. Completion never reverts.
func (g *Goal) ApplyContribution(amount decimal.Decimal, now time.Time) {
	g.CurrentAmount = g.CurrentAmount.Add(amount)
	g.LastContributedAt = &now
	if g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount) {
		g.Status = GoalStatusCompleted
	}
}

// IsAutoContributionDue gates the daily contribution run. A goal that has
// never received a contribution is due immediately; otherwise DAILY and
// MONTHLY compare calendar boundaries, WEEKLY requires seven full days, and
// YEARLY compares the calendar year.
func IsAutoContributionDue(lastContributedAt *time.Time, now time.Time, frequency ContributionFrequency) bool {
	if lastContributedAt == nil {
		return true
	}

	last := *lastContributedAt
	switch frequency {
	case ContributeDaily:
		return !sameCalendarDay(last, now)
	case ContributeWeekly:
		return now.Sub(last) >= 7*24*time.Hour
	case ContributeMonthly:
		return last.Month() != now.Month() || last.Year() != now.Year()
	case ContributeYearly:
		return last.Year() != now.Year()
	default:
		return false
	}
}
