// Package ai turns a month of financial stats into a handful of short,
// readable insight strings via a text-completion service. The service is
// best-effort: any failure falls back to fixed generic insights so report
// generation never blocks on the model.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/dariachm/finledger/internal/models"
)

type Client struct {
	client *openai.Client
	model  string
}

func New(apiKey, baseURL, model string) *Client {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// fallbackInsights is returned whenever the model call or its output fails.
var fallbackInsights = []string{
	"Your highest expense category this month might need attention.",
	"Consider setting up a budget for better financial management.",
	"Track your recurring expenses to identify potential savings.",
}

const insightsPromptTemplate = `Analyze this financial data and provide 3 concise, actionable insights.
Focus on spending patterns and practical advice.
Keep it friendly and conversational.

Financial Data for %s:
- Total Income: $%s
- Total Expenses: $%s
- Net Income: $%s
- Expense Categories: %s

Format the response as a JSON array of strings, like this:
["insight 1", "insight 2", "insight 3"]`

// GenerateInsights asks the model for insights on one month's stats. It never
// returns an error: a nil client, a failed call or unparseable output all
// yield the fixed fallback insights.
func (c *Client) GenerateInsights(ctx context.Context, stats models.MonthlyStats, month string) []string {
	if c == nil {
		return fallbackInsights
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildInsightsPrompt(stats, month),
			},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return fallbackInsights
	}
	if len(resp.Choices) == 0 {
		return fallbackInsights
	}

	insights, err := parseInsights(resp.Choices[0].Message.Content)
	if err != nil {
		return fallbackInsights
	}
	return insights
}

func buildInsightsPrompt(stats models.MonthlyStats, month string) string {
	categories := make([]string, 0, len(stats.ByCategory))
	for category := range stats.ByCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	parts := make([]string, 0, len(categories))
	for _, category := range categories {
		parts = append(parts, fmt.Sprintf("%s: $%s", category, stats.ByCategory[category].StringFixed(2)))
	}

	return fmt.Sprintf(insightsPromptTemplate,
		month,
		stats.TotalIncome.StringFixed(2),
		stats.TotalExpenses.StringFixed(2),
		stats.NetIncome().StringFixed(2),
		strings.Join(parts, ", "),
	)
}

var codeFenceRe = regexp.MustCompile("```(?:json)?\n?")

// parseInsights extracts the JSON string array from model output, tolerating
// markdown code fences around it.
func parseInsights(text string) ([]string, error) {
	cleaned := strings.TrimSpace(codeFenceRe.ReplaceAllString(text, ""))

	var insights []string
	if err := json.Unmarshal([]byte(cleaned), &insights); err != nil {
		return nil, fmt.Errorf("failed to parse insights: %w", err)
	}
	if len(insights) == 0 {
		return nil, fmt.Errorf("model returned no insights")
	}
	return insights, nil
}
