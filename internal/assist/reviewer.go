// Package assist offers moderators an AI second opinion on an ad before
// they decide. The suggestion is advisory only: it never changes status,
// never writes anything, and the moderation flow works identically when the
// reviewer is disabled.
package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"adboard/internal/models"
	"adboard/pkg/circuit"
	"adboard/pkg/config"
	errs "adboard/pkg/errors"
	"adboard/pkg/logging"
	"adboard/pkg/utils"
)

// Suggestion is the advisory output shown to the moderator.
type Suggestion struct {
	Approve    bool   `json:"approve"`
	Confidence int    `json:"confidence"` // 0..100
	Reason     string `json:"reason"`
}

type Reviewer struct {
	client  *openai.Client
	model   string
	breaker *circuit.Breaker
	log     *logging.ComponentLogger
}

// NewReviewer builds the advisory reviewer. Returns nil when no API key is
// configured; callers treat a nil reviewer as the feature being off.
func NewReviewer(cfg *config.Config, log *logging.Logger) *Reviewer {
	if cfg.OpenAIAPIKey == "" {
		return nil
	}
	r := &Reviewer{
		client: openai.NewClient(cfg.OpenAIAPIKey),
		model:  cfg.OpenAIModel,
		breaker: circuit.New(circuit.Config{
			Name:              "openai",
			OperationTimeout:  cfg.OpenAITimeout,
			OpenFor:           0,
			MaxConsecFailures: 3,
		}, log),
	}
	if log != nil {
		r.log = log.WithComponent("assist")
	}
	return r
}

const systemPrompt = `You review classified advertisements for a marketplace.
Judge whether the ad looks publishable: coherent title and description,
plausible price, no prohibited goods, no contact spam.
Answer with strict JSON: {"approve": bool, "confidence": 0-100, "reason": "short sentence"}.`

// Review asks the model for a publishability suggestion.
func (r *Reviewer) Review(ctx context.Context, ad *models.Advertisement) (*Suggestion, error) {
	const op = "assist.Reviewer.Review"

	prompt := fmt.Sprintf("Title: %s\nCity: %s\nCategory: %s\nPrice: %s\nDescription: %s",
		ad.Title, ad.City, ad.Category.Title, ad.Price.String(),
		utils.Truncate(ad.Description, 250))

	var content string
	err := r.breaker.Do(ctx, func(ctx context.Context) error {
		resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: r.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			Temperature: 0.1,
			MaxTokens:   200,
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("empty completion response")
		}
		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return nil, errs.NewExternal(op, "openai", "review request failed", err)
	}

	suggestion, err := parseSuggestion(content)
	if err != nil {
		if r.log != nil {
			r.log.Warn("unparseable assist response",
				logging.String("advertisement_id", ad.OID))
		}
		return nil, errs.NewExternal(op, "openai", "unparseable review response", err)
	}
	return suggestion, nil
}

// parseSuggestion tolerates a JSON object wrapped in prose or code fences.
func parseSuggestion(content string) (*Suggestion, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var s Suggestion
	if err := json.Unmarshal([]byte(content[start:end+1]), &s); err != nil {
		return nil, err
	}
	if s.Confidence < 0 {
		s.Confidence = 0
	}
	if s.Confidence > 100 {
		s.Confidence = 100
	}
	return &s, nil
}
