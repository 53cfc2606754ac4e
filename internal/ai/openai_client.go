package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/Vovarama1992/clinic-ai-proxy/internal/metrics"
)

const (
	kindStructured = "structured"
	kindText       = "text"
)

// OpenAIClient talks to any OpenAI-compatible chat completion gateway.
type OpenAIClient struct {
	baseURL    string
	model      string
	apiKey     func() string
	httpClient *http.Client
	log        zerolog.Logger
	metrics    *metrics.Metrics
}

type Options struct {
	BaseURL string
	Model   string
	// APIKey is consulted on every call.
	APIKey     func() string
	HTTPClient *http.Client
	Logger     zerolog.Logger
	Metrics    *metrics.Metrics
}

func NewOpenAIClient(opts Options) *OpenAIClient {
	if opts.APIKey == nil {
		opts.APIKey = func() string { return "" }
	}
	if opts.Model == "" {
		opts.Model = "google/gemini-3-flash-preview"
	}
	return &OpenAIClient{
		baseURL:    opts.BaseURL,
		model:      opts.Model,
		apiKey:     opts.APIKey,
		httpClient: opts.HTTPClient,
		log:        opts.Logger.With().Str("component", "ai").Logger(),
		metrics:    opts.Metrics,
	}
}

func (c *OpenAIClient) client() (*openai.Client, error) {
	key := c.apiKey()
	if key == "" {
		return nil, ErrNotConfigured
	}
	cfg := openai.DefaultConfig(key)
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	if c.httpClient != nil {
		cfg.HTTPClient = c.httpClient
	}
	return openai.NewClientWithConfig(cfg), nil
}

func (c *OpenAIClient) CompleteStructured(ctx context.Context, req StructuredRequest) (json.RawMessage, error) {
	start := time.Now()
	args, err := c.completeStructured(ctx, req)
	c.metrics.ObserveUpstream(kindStructured, outcome(err), time.Since(start).Seconds())
	return args, err
}

func (c *OpenAIClient) completeStructured(ctx context.Context, req StructuredRequest) (json.RawMessage, error) {
	cli, err := c.client()
	if err != nil {
		return nil, err
	}

	resp, err := cli.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: toOpenAI(prompt(req.System, req.User)),
		Tools: []openai.Tool{{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        req.Tool.Name,
				Description: req.Tool.Description,
				Parameters:  req.Tool.Parameters,
			},
		}},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: req.Tool.Name},
		},
	})
	if err != nil {
		return nil, c.upstreamError(err)
	}

	if len(resp.Choices) == 0 || len(resp.Choices[0].Message.ToolCalls) == 0 {
		c.log.Warn().Str("tool", req.Tool.Name).Msg("reply without tool call")
		return nil, ErrNoToolCall
	}

	raw := resp.Choices[0].Message.ToolCalls[0].Function.Arguments
	if !json.Valid([]byte(raw)) {
		c.log.Error().Str("tool", req.Tool.Name).Str("arguments", short(raw)).Msg("malformed tool arguments")
		return nil, ErrMalformedArguments
	}

	c.log.Debug().Str("tool", req.Tool.Name).Str("arguments", short(raw)).Msg("tool call received")
	return json.RawMessage(raw), nil
}

func (c *OpenAIClient) CompleteText(ctx context.Context, req TextRequest) (string, error) {
	start := time.Now()
	text, err := c.completeText(ctx, req)
	c.metrics.ObserveUpstream(kindText, outcome(err), time.Since(start).Seconds())
	return text, err
}

func (c *OpenAIClient) completeText(ctx context.Context, req TextRequest) (string, error) {
	cli, err := c.client()
	if err != nil {
		return "", err
	}

	resp, err := cli.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: toOpenAI(prompt(req.System, req.User)),
	})
	if err != nil {
		return "", c.upstreamError(err)
	}

	if len(resp.Choices) == 0 {
		c.log.Warn().Msg("empty choices")
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// upstreamError turns go-openai errors into *StatusError when the gateway
// answered with a status, and logs the detail that never reaches callers.
func (c *OpenAIClient) upstreamError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		c.log.Error().Int("status", apiErr.HTTPStatusCode).Str("body", apiErr.Message).Msg("AI error")
		return &StatusError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		c.log.Error().Int("status", reqErr.HTTPStatusCode).Str("body", reqErr.Error()).Msg("AI error")
		return &StatusError{StatusCode: reqErr.HTTPStatusCode, Body: reqErr.Error()}
	}

	c.log.Error().Err(err).Msg("AI transport error")
	return fmt.Errorf("ai: transport: %w", err)
}

func toOpenAI(msgs []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Text,
		})
	}
	return out
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, ErrNoToolCall), errors.Is(err, ErrMalformedArguments):
		return "no_tool_call"
	}
	switch StatusCode(err) {
	case 0:
		return "transport"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusPaymentRequired:
		return "quota"
	default:
		return "upstream_error"
	}
}

func short(s string) string {
	if len(s) > 180 {
		return s[:180] + "..."
	}
	return s
}
