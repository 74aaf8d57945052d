package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultLMStudioBaseURL = "http://localhost:1234/v1"
	defaultOpenAIBaseURL   = "https://api.openai.com/v1"
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint:
// OpenAI itself or a local LM Studio server.
type OpenAIClient struct {
	client      openai.Client
	model       string
	baseURL     string
	temperature float64
}

// NewOpenAIClient creates a client for an OpenAI-compatible API. An empty
// apiKey falls back to OPENAI_API_KEY, then to a placeholder that local
// servers accept.
func NewOpenAIClient(model, baseURL, apiKey string) (*OpenAIClient, error) {
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("openai model is required")
	}
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		apiKey = "local"
	}

	return &OpenAIClient{
		client: openai.NewClient(
			option.WithBaseURL(baseURL),
			option.WithAPIKey(apiKey),
		),
		model:       model,
		baseURL:     baseURL,
		temperature: defaultTemperature,
	}, nil
}

// Chat sends messages to the LLM and returns the response.
func (c *OpenAIClient) Chat(ctx context.Context, messages []Message) (string, error) {
	params := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			params[i] = openai.SystemMessage(msg.Content)
		case RoleAssistant:
			params[i] = openai.AssistantMessage(msg.Content)
		default:
			params[i] = openai.UserMessage(msg.Content)
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    params,
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

// ChatJSON sends messages and parses the response as JSON into the provided type.
func (c *OpenAIClient) ChatJSON(ctx context.Context, messages []Message, result any) error {
	content, err := c.Chat(ctx, messages)
	if err != nil {
		return err
	}
	return decodeJSON(content, result)
}
