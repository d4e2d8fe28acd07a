package advisor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultModel = "claude-sonnet-4-5-20250929"

const systemPrompt = `You are a helpful financial advisor assistant for the Brokemate expense tracking app. Answer questions based on the user's expense data. Be friendly, helpful, and concise, and make recommendations actionable.`

// LLMResponder answers through a hosted language model. Call failures are
// logged and answered by the rule-based responder instead, so the Chat and
// Analyze contracts match the fallback's: they never fail.
type LLMResponder struct {
	client   anthropic.Client
	model    string
	fallback *RuleResponder
}

// NewLLMResponder creates an LLMResponder. An empty model selects the
// default.
func NewLLMResponder(apiKey, model string) (*LLMResponder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	if model == "" {
		model = defaultModel
	}

	return &LLMResponder{
		client:   anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:    model,
		fallback: NewRuleResponder(),
	}, nil
}

// Chat answers the user's question with their expense summary as context
func (l *LLMResponder) Chat(ctx context.Context, query string, expenses []Expense) (string, error) {
	prompt := fmt.Sprintf(`User's expense data:
%s

User's question: %s

Provide a helpful, personalized response.`, Summarize(expenses), query)

	response, err := l.generate(ctx, prompt)
	if err != nil {
		slog.Warn("LLM chat failed, using rule-based response", "error", err)
		return l.fallback.Chat(ctx, query, expenses)
	}
	return response, nil
}

// Analyze asks the model for a structured spending analysis
func (l *LLMResponder) Analyze(ctx context.Context, expenses []Expense) (string, error) {
	if len(expenses) == 0 {
		return l.fallback.Analyze(ctx, expenses)
	}

	prompt := fmt.Sprintf(`Analyze the following expense data and provide actionable insights.

%s

Provide a financial analysis report that includes:
1. Overview of spending patterns
2. Insights about the top spending categories
3. Specific recommendations for improvement
4. Budget optimization tips

Format your response with clear sections and bullet points.`, Summarize(expenses))

	response, err := l.generate(ctx, prompt)
	if err != nil {
		slog.Warn("LLM analysis failed, using rule-based response", "error", err)
		return l.fallback.Analyze(ctx, expenses)
	}
	return response, nil
}

func (l *LLMResponder) generate(ctx context.Context, prompt string) (string, error) {
	message, err := l.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(l.model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("calling anthropic API: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in response")
}
