package notify

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
)

// TelegramNotifier delivers messages as Telegram texts to the recipient's
// chat. Recipients without a linked chat are skipped silently.
type TelegramNotifier struct {
	api *tgbotapi.BotAPI
}

func NewTelegramNotifier(token string) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram API: %w", err)
	}
	return &TelegramNotifier{api: api}, nil
}

func (n *TelegramNotifier) Send(ctx context.Context, msg Message) error {
	if msg.To.TelegramChatID == nil {
		return nil
	}

	text, err := renderText(msg)
	if err != nil {
		return err
	}

	if _, err := n.api.Send(tgbotapi.NewMessage(*msg.To.TelegramChatID, text)); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

func renderText(msg Message) (string, error) {
	switch msg.Template {
	case TemplateBudgetAlert:
		data, ok := msg.Data.(BudgetAlertData)
		if !ok {
			return "", fmt.Errorf("budget-alert template requires BudgetAlertData, got %T", msg.Data)
		}
		return renderBudgetAlert(msg, data), nil
	case TemplateMonthlyReport:
		data, ok := msg.Data.(MonthlyReportData)
		if !ok {
			return "", fmt.Errorf("monthly-report template requires MonthlyReportData, got %T", msg.Data)
		}
		return renderMonthlyReport(msg, data), nil
	default:
		return "", fmt.Errorf("unknown notification template %q", msg.Template)
	}
}

func renderBudgetAlert(msg Message, data BudgetAlertData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ %s\n\n", msg.Subject)
	if msg.To.UserName != "" {
		fmt.Fprintf(&b, "Hi %s,\n", msg.To.UserName)
	}
	pct := data.PercentageUsed.Mul(decimal.NewFromInt(100))
	fmt.Fprintf(&b, "You've used %s%% of your %s budget on %s.\n",
		pct.StringFixed(1), data.Category, data.AccountName)
	fmt.Fprintf(&b, "Spent: %s of %s", data.TotalExpenses.StringFixed(1), data.BudgetAmount.StringFixed(1))
	return b.String()
}

func renderMonthlyReport(msg Message, data MonthlyReportData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 %s\n\n", msg.Subject)
	if msg.To.UserName != "" {
		fmt.Fprintf(&b, "Hi %s, here is your %s summary.\n\n", msg.To.UserName, data.Month)
	}
	fmt.Fprintf(&b, "Income: %s\n", data.Stats.TotalIncome.StringFixed(2))
	fmt.Fprintf(&b, "Expenses: %s\n", data.Stats.TotalExpenses.StringFixed(2))
	fmt.Fprintf(&b, "Net: %s\n", data.Stats.NetIncome().StringFixed(2))

	if len(data.Stats.ByCategory) > 0 {
		b.WriteString("\nBy category:\n")
		categories := make([]string, 0, len(data.Stats.ByCategory))
		for category := range data.Stats.ByCategory {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		for _, category := range categories {
			fmt.Fprintf(&b, "• %s: %s\n", category, data.Stats.ByCategory[category].StringFixed(2))
		}
	}

	if len(data.Insights) > 0 {
		b.WriteString("\nInsights:\n")
		for _, insight := range data.Insights {
			fmt.Fprintf(&b, "• %s\n", insight)
		}
	}
	return b.String()
}
