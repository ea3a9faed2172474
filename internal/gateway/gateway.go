package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/xaenox/buddyline/internal/models"
	"github.com/xaenox/buddyline/internal/storage"
	"go.uber.org/zap"
)

// FragmentDelimiter is the token the model is instructed to split its
// reply with; the gateway parses it back into discrete chat bubbles.
const FragmentDelimiter = "|||"

const maxTokens = 4096

// systemPromptFormat carries the fixed chat rules plus the persona's own
// prompt text. The model is told to do the splitting itself.
const systemPromptFormat = `
## Rules
- This is a chat interface similar to modern instant messaging apps.
- Keep responses natural and conversational.
- Never admit that you are an AI, and do not say things like "as an AI".
- You can use abbreviations and other casual, conversational expressions in your messages, such as "Yep", "btw", "imo", "idk", "lol", etc.

## Response Format
- Use plain text format. NEVER USE MARKDOWN.
- IMPORTANT: Always split your response into 1-3 separate messages using "|||" as the delimiter.
- Each message should be short, generally no more than 20 words, like real chat messages.
- Never send a single long message.
- Example: "Hey there|||How are you doing today?|||I hope you're having a good day!"

## Your Persona
%s`

// ErrNoAPIKey is reported before any network call when the stored
// settings have no credential.
var ErrNoAPIKey = errors.New("API key not configured")

// completionAPI is the slice of the OpenAI client the gateway uses;
// tests substitute a stub.
type completionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client obtains completions from an OpenAI-compatible provider. The
// underlying API client is rebuilt on every call because credential,
// endpoint and model all live in the settings record and may change
// between sends.
type Client struct {
	store  *storage.Store
	logger *zap.Logger
	newAPI func(settings models.Settings) completionAPI
}

func NewClient(store *storage.Store, logger *zap.Logger) *Client {
	return &Client{
		store:  store,
		logger: logger,
		newAPI: func(settings models.Settings) completionAPI {
			config := openai.DefaultConfig(settings.APIKey)
			if settings.BaseURL != "" {
				config.BaseURL = settings.BaseURL
			}
			return openai.NewClientWithConfig(config)
		},
	}
}

// Complete sends the persona prompt plus the non-error transcript to the
// provider and returns the ordered, non-empty list of reply fragments.
// It performs no retries; retry policy is the orchestrator's.
func (c *Client) Complete(ctx context.Context, transcript []models.Message, persona models.Persona) ([]string, error) {
	settings, err := c.store.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if settings.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(transcript)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: fmt.Sprintf(systemPromptFormat, persona.Prompt),
	})
	for _, msg := range transcript {
		// Error-role bubbles are failed deliveries; the provider never sees them.
		switch msg.Role {
		case models.RoleUser:
			messages = append(messages, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: msg.Content,
			})
		case models.RoleAssistant:
			messages = append(messages, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: msg.Content,
			})
		}
	}

	resp, err := c.newAPI(settings).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       settings.Model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: float32(settings.Temperature),
	})
	if err != nil {
		c.logger.Error("Completion request failed",
			zap.Error(err),
			zap.String("model", settings.Model),
			zap.String("persona_id", persona.ID))
		return nil, providerError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("provider returned no choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return nil, errors.New("provider returned an empty response")
	}

	return SplitFragments(content), nil
}

// SplitFragments parses a raw reply into delimiter-separated bubbles.
// If no usable fragment survives trimming, the whole trimmed reply is
// returned as a single fragment rather than an empty set.
func SplitFragments(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	parts := strings.Split(trimmed, FragmentDelimiter)

	fragments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			fragments = append(fragments, part)
		}
	}
	if len(fragments) == 0 {
		return []string{trimmed}
	}
	return fragments
}

// providerError surfaces the provider's own error text when present.
func providerError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return fmt.Errorf("provider error: %s", apiErr.Message)
	}
	return fmt.Errorf("failed to get response from AI: %w", err)
}
