// Package advisor generates financial advice from a ledger snapshot using
// the Gemini API.
package advisor

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"fintrack/internal/core"
)

// recentTransactionLimit caps how much history goes into the prompt.
const recentTransactionLimit = 30

const systemInstruction = "You are a friendly and insightful financial advisor. " +
	"Analyze the user's financial snapshot and answer their question with " +
	"concrete, actionable suggestions. Keep the tone encouraging and the " +
	"answer concise. Amounts are in the user's local currency."

type Advisor struct {
	client *genai.Client
	model  string
}

// New builds an advisor backed by the Gemini API. apiKey must be non-empty;
// callers check configuration before constructing one.
func New(ctx context.Context, apiKey, model string) (*Advisor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Advisor{client: client, model: model}, nil
}

// Advise answers a free-form question against the given snapshot.
func (a *Advisor) Advise(ctx context.Context, question string, accounts []core.Account, transactions []core.Transaction) (string, error) {
	prompt := BuildPrompt(question, accounts, transactions)

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
	}

	resp, err := a.client.Models.GenerateContent(ctx, a.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

// BuildPrompt renders the snapshot into the model prompt: every account
// with its balance, then the most recent transactions with signed amounts
// and resolved category names.
func BuildPrompt(question string, accounts []core.Account, transactions []core.Transaction) string {
	var b strings.Builder

	b.WriteString("Here is my current financial snapshot.\n\nAccounts:\n")
	if len(accounts) == 0 {
		b.WriteString("- none\n")
	}
	for _, a := range accounts {
		if a.BankName != "" {
			fmt.Fprintf(&b, "- %s (%s): %s\n", a.Name, a.BankName, a.Balance)
		} else {
			fmt.Fprintf(&b, "- %s: %s\n", a.Name, a.Balance)
		}
	}

	b.WriteString("\nRecent transactions (newest first):\n")
	if len(transactions) == 0 {
		b.WriteString("- none\n")
	}
	recent := transactions
	if len(recent) > recentTransactionLimit {
		recent = recent[:recentTransactionLimit]
	}
	for _, t := range recent {
		category := t.CategoryID
		if c, ok := core.CategoryByID(t.CategoryID); ok {
			category = c.Name
		}
		sign := "-"
		if t.Type == core.Income {
			sign = "+"
		}
		fmt.Fprintf(&b, "- %s %s%s [%s] %s\n", t.Date, sign, t.Amount, category, t.Description)
	}

	fmt.Fprintf(&b, "\nMy question: %s\n", question)
	return b.String()
}
