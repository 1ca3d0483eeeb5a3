package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
)

// Config holds settings for the OpenAI-compatible client.
type Config struct {
	Model      string        `json:"model"`
	BaseURL    string        `json:"base_url,omitempty"`
	MaxTokens  int           `json:"max_tokens"`
	Timeout    time.Duration `json:"timeout"`
	MaxRetries int           `json:"max_retries"`
}

// OpenAIClient implements Client against any OpenAI-compatible chat API.
type OpenAIClient struct {
	client  *openai.Client
	config  Config
	breaker *gobreaker.CircuitBreaker
}

// NewOpenAIClient creates a completion client. Zero config fields fall
// back to defaults (gpt-4o, 4096 tokens, 30s timeout, 3 retries).
func NewOpenAIClient(apiKey string, config Config) *OpenAIClient {
	if config.Model == "" {
		config.Model = openai.GPT4o
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = 4096
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "completion",
			Timeout: 60 * time.Second,
		}),
	}
}

// Model returns the configured model name, for cost accounting.
func (c *OpenAIClient) Model() string {
	return c.config.Model
}

// Complete sends one chat completion request. Transient transport failures
// are retried up to the configured bound with linear backoff; API
// rejections are not retried and map to sentinel errors.
func (c *OpenAIClient) Complete(ctx context.Context, system, prompt string, policy Policy) (*Response, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	req := openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Messages:    messages,
		MaxTokens:   c.config.MaxTokens,
		Temperature: policy.Temperature(),
	}

	var resp openai.ChatCompletionResponse
	var err error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		resp, err = c.completeOnce(ctx, req)
		if err == nil {
			break
		}
		if !transient(err) || attempt == c.config.MaxRetries {
			return nil, fmt.Errorf("completion failed: %w", classify(err))
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("completion failed: %w", classify(ctx.Err()))
		case <-time.After(time.Duration(attempt+1) * 500 * time.Millisecond):
		}
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, ErrInvalidResponse
	}

	return &Response{
		Content: resp.Choices[0].Message.Content,
		Usage: TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

func (c *OpenAIClient) completeOnce(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.client.CreateChatCompletion(callCtx, req)
	})
	if err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	return result.(openai.ChatCompletionResponse), nil
}

// Close cleans up resources (no-op for the HTTP client).
func (c *OpenAIClient) Close() error {
	return nil
}
