package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
)

var ErrAIUnavailable = errors.New("ai completion failed")

type AIConfig struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []ChatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// AIClient calls a chat-completions API. The bot treats it as optional:
// any failure here surfaces as ErrAIUnavailable and the caller falls back
// to a canned reply.
type AIClient struct {
	config *AIConfig
	client *fasthttp.Client
}

func NewAIClient(config *AIConfig) (*AIClient, error) {
	if config == nil || config.APIKey == "" {
		return nil, errors.New("ai api key is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com"
	}
	if config.Model == "" {
		config.Model = "gpt-4o-mini"
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 350
	}
	if config.Timeout == 0 {
		config.Timeout = 20 * time.Second
	}

	return &AIClient{
		config: config,
		client: &fasthttp.Client{
			ReadTimeout:  config.Timeout,
			WriteTimeout: config.Timeout,
		},
	}, nil
}

// Complete sends the message sequence and returns the assistant's reply.
func (c *AIClient) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:     c.config.Model,
		Messages:  messages,
		MaxTokens: c.config.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.config.BaseURL + "/v1/chat/completions")
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.SetBody(body)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.config.Timeout)
	}

	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return "", fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrAIUnavailable, resp.StatusCode(), resp.Body())
	}

	var parsed chatResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", fmt.Errorf("%w: unmarshal: %v", ErrAIUnavailable, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("%w: %s", ErrAIUnavailable, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: empty completion", ErrAIUnavailable)
	}
	return parsed.Choices[0].Message.Content, nil
}
