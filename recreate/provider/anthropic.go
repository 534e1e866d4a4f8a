package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	anthropic "github.com/liushuangls/go-anthropic/v2"

	"github.com/theimaginaryfoundation/backrooms-replay/recreate"
)

// AnthropicTurnGenerator produces dialogue turns through the Anthropic
// Messages API. Backrooms corpora are predominantly Claude dialogues, so
// this is the default replay path.
type AnthropicTurnGenerator struct {
	client *anthropic.Client

	// MaxTokens caps each turn; zero means 1024.
	MaxTokens int
}

func NewAnthropicTurnGenerator(apiKey string) (*AnthropicTurnGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("NewAnthropicTurnGenerator: api key is empty")
	}
	return &AnthropicTurnGenerator{client: anthropic.NewClient(apiKey)}, nil
}

func (g *AnthropicTurnGenerator) GenerateTurn(ctx context.Context, req recreate.TurnRequest) (string, error) {
	if g.client == nil {
		return "", errors.New("AnthropicTurnGenerator: client is nil")
	}
	if req.Model == "" {
		return "", errors.New("AnthropicTurnGenerator: model is empty")
	}

	maxTokens := g.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	messages := make([]anthropic.Message, 0, len(req.Messages))
	for _, msg := range req.Messages {
		if msg.Role == "assistant" {
			messages = append(messages, anthropic.NewAssistantTextMessage(msg.Content))
		} else {
			messages = append(messages, anthropic.NewUserTextMessage(msg.Content))
		}
	}
	// The Messages API rejects an empty history and a leading assistant
	// message; replay templates that start cold get a minimal opener.
	if len(messages) == 0 || messages[0].Role != anthropic.RoleUser {
		messages = append([]anthropic.Message{anthropic.NewUserTextMessage("Begin.")}, messages...)
	}

	temperature := float32(req.Temperature)
	mr := anthropic.MessagesRequest{
		Model:       anthropic.Model(req.Model),
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: &temperature,
	}
	if req.SystemPrompt != "" {
		mr.System = req.SystemPrompt
	}

	resp, err := g.createWithRetry(ctx, mr)
	if err != nil {
		return "", fmt.Errorf("AnthropicTurnGenerator: %s: %w", req.Actor, err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("AnthropicTurnGenerator: %s: empty response", req.Actor)
	}
	text := resp.Content[0].GetText()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("AnthropicTurnGenerator: %s: empty reply", req.Actor)
	}
	return text, nil
}

func (g *AnthropicTurnGenerator) createWithRetry(ctx context.Context, mr anthropic.MessagesRequest) (anthropic.MessagesResponse, error) {
	const maxRetries = 3
	rateLimitWaitTimes := []time.Duration{65 * time.Second, 100 * time.Second, 135 * time.Second}
	serverErrorWaitTimes := []time.Duration{5 * time.Second, 30 * time.Second, 60 * time.Second}

	var resp anthropic.MessagesResponse
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err = g.client.CreateMessages(ctx, mr)
		if err != nil {
			if isRateLimitError(err) {
				if attempt < maxRetries-1 {
					time.Sleep(rateLimitWaitTimes[attempt])
					continue
				}
			} else if isServerError(err) {
				if attempt < maxRetries-1 {
					time.Sleep(serverErrorWaitTimes[attempt])
					continue
				}
			}
			return resp, err
		}
		return resp, nil
	}
	return resp, fmt.Errorf("failed after %d attempts due to Anthropic API issues", maxRetries)
}
