// Package notify delivers the engine's outbound alerts and reports. The
// engine depends on the Notifier contract only; delivery failures are
// retryable and never fatal to a batch.
package notify

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dariachm/finledger/internal/models"
)

type Template string

const (
	TemplateBudgetAlert   Template = "budget-alert"
	TemplateMonthlyReport Template = "monthly-report"
)

// Recipient identifies where a message goes. The engine fills it from the
// user record; which field is used depends on the backend.
type Recipient struct {
	UserName       string
	Email          string
	TelegramChatID *int64
}

type Message struct {
	To       Recipient
	Subject  string
	Template Template
	Data     any
}

// BudgetAlertData feeds the budget-alert template.
type BudgetAlertData struct {
	PercentageUsed decimal.Decimal // fraction 0-1
	BudgetAmount   decimal.Decimal
	TotalExpenses  decimal.Decimal
	AccountName    string
	Category       string
}

// MonthlyReportData feeds the monthly-report template.
type MonthlyReportData struct {
	Month    string
	Stats    models.MonthlyStats
	Insights []string
}

type Notifier interface {
	Send(ctx context.Context, msg Message) error
}
