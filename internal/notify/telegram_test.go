package notify

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dariachm/finledger/internal/models"
)

func TestRenderBudgetAlert(t *testing.T) {
	msg := Message{
		To:       Recipient{UserName: "Dana"},
		Subject:  "Budget Alert for Main (Groceries)",
		Template: TemplateBudgetAlert,
		Data: BudgetAlertData{
			PercentageUsed: decimal.NewFromFloat(0.9),
			BudgetAmount:   decimal.NewFromInt(500),
			TotalExpenses:  decimal.NewFromInt(450),
			AccountName:    "Main",
			Category:       "Groceries",
		},
	}

	text, err := renderText(msg)
	require.NoError(t, err)

	assert.Contains(t, text, "Budget Alert for Main (Groceries)")
	assert.Contains(t, text, "Hi Dana,")
	assert.Contains(t, text, "90.0% of your Groceries budget on Main")
	assert.Contains(t, text, "Spent: 450.0 of 500.0")
}

func TestRenderMonthlyReport(t *testing.T) {
	msg := Message{
		To:       Recipient{UserName: "Dana"},
		Subject:  "Your Monthly Financial Report - May",
		Template: TemplateMonthlyReport,
		Data: MonthlyReportData{
			Month: "May",
			Stats: models.MonthlyStats{
				TotalIncome:   decimal.NewFromInt(3000),
				TotalExpenses: decimal.NewFromInt(250),
				ByCategory: map[string]decimal.Decimal{
					"Transport": decimal.NewFromInt(50),
					"Groceries": decimal.NewFromInt(200),
				},
				TransactionCount: 4,
			},
			Insights: []string{"Groceries dominated your spending."},
		},
	}

	text, err := renderText(msg)
	require.NoError(t, err)

	assert.Contains(t, text, "Income: 3000.00")
	assert.Contains(t, text, "Expenses: 250.00")
	assert.Contains(t, text, "Net: 2750.00")
	// Categories are listed in sorted order.
	assert.Contains(t, text, "• Groceries: 200.00\n• Transport: 50.00")
	assert.Contains(t, text, "• Groceries dominated your spending.")
}

func TestRenderTextRejectsMismatchedData(t *testing.T) {
	_, err := renderText(Message{Template: TemplateBudgetAlert, Data: MonthlyReportData{}})
	assert.Error(t, err)

	_, err = renderText(Message{Template: TemplateMonthlyReport, Data: BudgetAlertData{}})
	assert.Error(t, err)

	_, err = renderText(Message{Template: Template("sms"), Data: nil})
	assert.Error(t, err)
}
