// Package advisor asks a Gemini model for a short commentary on a scored
// recommendation. Without an API key it stays silent.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"InvestmentHelper/internal/model"
)

// ErrDisabled is returned by Comment when no model is configured.
var ErrDisabled = errors.New("advisor disabled")

const systemPrompt = `You are a cautious investment assistant.
Given an instrument snapshot and a rule-based score, write at most three sentences
of plain commentary. Do not invent figures that are not in the input.
End with a reminder that this is not financial advice.`

// generator is the part of *genai.Models the advisor uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Advisor produces commentary for a recommendation.
type Advisor struct {
	model string
	gen   generator
}

// New creates an advisor. An empty apiKey yields a disabled advisor.
func New(ctx context.Context, apiKey, modelName string) (*Advisor, error) {
	if apiKey == "" {
		return &Advisor{}, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	log.Info().Str("model", modelName).Msg("advisor enabled")
	return &Advisor{model: modelName, gen: client.Models}, nil
}

// Enabled reports whether Comment will call a model.
func (a *Advisor) Enabled() bool { return a != nil && a.gen != nil }

// Comment returns the model's commentary on rec.
func (a *Advisor) Comment(ctx context.Context, q *model.Quote, rec *model.Recommendation) (string, error) {
	if !a.Enabled() {
		return "", ErrDisabled
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
	}
	resp, err := a.gen.GenerateContent(ctx, a.model, genai.Text(Prompt(q, rec)), config)
	if err != nil {
		return "", fmt.Errorf("generate commentary: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no response from model")
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			sb.WriteString(p.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", errors.New("empty response from model")
	}
	return text, nil
}

// Prompt builds the user message describing the snapshot and the score.
func Prompt(q *model.Quote, rec *model.Recommendation) string {
	var sb strings.Builder
	symbol := ""
	if rec != nil {
		symbol = rec.Symbol
	}
	if q != nil {
		if symbol == "" {
			symbol = q.Symbol
		}
		fmt.Fprintf(&sb, "Instrument: %s", symbol)
		if q.Name != "" {
			fmt.Fprintf(&sb, " (%s)", q.Name)
		}
		sb.WriteString("\n")
		if q.CurrentPrice.Valid {
			fmt.Fprintf(&sb, "Price: %s %s\n", q.CurrentPrice.Decimal.String(), q.Currency)
		}
		if q.TrailingPE.Valid {
			fmt.Fprintf(&sb, "Trailing P/E: %s\n", q.TrailingPE.Decimal.StringFixed(2))
		}
	} else {
		fmt.Fprintf(&sb, "Instrument: %s\n", symbol)
	}
	if rec != nil {
		fmt.Fprintf(&sb, "Score: %.2f (%s)\n", rec.TotalScore, rec.Tier.Label)
		for _, f := range rec.Factors {
			fmt.Fprintf(&sb, "- %s: %+.1f, %s\n", f.Name, f.RawScore, f.Commentary)
		}
		if rec.WarningMsg != "" {
			fmt.Fprintf(&sb, "Warning: %s\n", rec.WarningMsg)
		}
	}
	return sb.String()
}
