package commentary

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"foliotrack/internal/application"
	"foliotrack/internal/domain"
)

const systemInstruction = `You are a concise financial assistant embedded in a
personal portfolio tracker. You receive a snapshot of the user's holdings and
recent portfolio totals. Write a short commentary (at most five sentences) on
how the portfolio is doing: overall direction, best and worst positions, and
anything notable in the recent totals. Plain text only, no markdown. Do not
give investment advice.`

// PortfolioView supplies the current portfolio state for the prompt.
type PortfolioView interface {
	Summary() domain.Portfolio
}

// TotalsSource supplies recent portfolio totals, newest first.
type TotalsSource interface {
	RecentTotals(ctx context.Context, limit int) ([]application.Totals, error)
}

// Generator produces a natural-language commentary on the portfolio using
// a Gemini chat. Each call opens a fresh chat so commentaries do not leak
// context into each other.
type Generator struct {
	client *genai.Client
	model  string
	view   PortfolioView
	totals TotalsSource
}

// NewGenerator creates a Generator. The client reads GEMINI_API_KEY from
// the environment.
func NewGenerator(ctx context.Context, model string, view PortfolioView, totals TotalsSource) (*Generator, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Generator{
		client: client,
		model:  model,
		view:   view,
		totals: totals,
	}, nil
}

// Comment generates one commentary from the current portfolio state.
func (g *Generator) Comment(ctx context.Context) (string, error) {
	prompt, err := g.buildPrompt(ctx)
	if err != nil {
		return "", err
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
	}
	chat, err := g.client.Chats.Create(ctx, g.model, config, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create chat: %w", err)
	}

	resp, err := chat.Send(ctx, &genai.Part{Text: prompt})
	if err != nil {
		return "", fmt.Errorf("commentary request failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty commentary response")
	}
	return strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text), nil
}

func (g *Generator) buildPrompt(ctx context.Context) (string, error) {
	p := g.view.Summary()
	if len(p.Holdings) == 0 {
		return "", fmt.Errorf("portfolio is empty")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Total investment: $%.2f\n", p.TotalInvestment)
	if p.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", p.Description)
	}
	b.WriteString("Holdings:\n")
	for _, h := range p.Holdings {
		name := h.Name
		if name == "" {
			name = h.Symbol
		}
		fmt.Fprintf(&b, "- %s (%s): %.2f shares, allocation %.1f%%, purchase price $%s",
			h.Symbol, name, h.Shares, h.Allocation, h.InitialPrice.String())
		if h.PurchaseDate != "" {
			fmt.Fprintf(&b, ", purchased %s", h.PurchaseDate)
		}
		b.WriteString("\n")
	}

	if g.totals != nil {
		rows, err := g.totals.RecentTotals(ctx, 24)
		if err == nil && len(rows) > 0 {
			b.WriteString("Recent portfolio totals (newest first):\n")
			for _, t := range rows {
				fmt.Fprintf(&b, "- %s: value $%s, P/L $%s\n",
					t.Timestamp.Format("2006-01-02 15:04"), t.TotalValue.String(), t.TotalPL.String())
			}
		}
	}
	return b.String(), nil
}
