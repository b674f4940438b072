package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const jsonOnlyInstruction = "Respond with a single JSON object and nothing else."

// anthropicClient implements LLMClient on the Anthropic Messages API.
type anthropicClient struct {
	cfg      LLMConfig
	client   anthropic.Client
	observer Observer
}

// NewAnthropicClient creates an LLMClient for the Anthropic API. Retries are
// delegated to the SDK using cfg.MaxRetries.
func NewAnthropicClient(cfg LLMConfig, observer Observer) (LLMClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: anthropic api key not set", ErrUnavailable)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultAnthropicModel
	}
	if observer == nil {
		observer = NoopObserver{}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}

	return &anthropicClient{
		cfg:      cfg,
		client:   anthropic.NewClient(opts...),
		observer: observer,
	}, nil
}

func (c *anthropicClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	start := time.Now()
	temp, maxTok := c.cfg.taskParams(req)

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TaskTimeout(req.Task))*time.Millisecond)
	defer cancel()

	system := req.SystemPrompt
	if req.ResponseFormat == FormatJSON {
		system = strings.TrimSpace(system + "\n\n" + jsonOnlyInstruction)
	}

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.cfg.Model),
		MaxTokens:   int64(maxTok),
		Temperature: anthropic.Float(temp),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt)),
		},
	})
	latency := time.Since(start).Milliseconds()
	if err != nil {
		err = classifyAnthropic(ctx, err)
		c.complete(req.Task, latency, err)
		return nil, err
	}

	var output strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			output.WriteString(block.Text)
		}
	}

	c.complete(req.Task, latency, nil)
	return &GenerateResponse{
		Text:      output.String(),
		Model:     string(resp.Model),
		LatencyMs: latency,
	}, nil
}

// Available reports whether a key is configured; the API has no cheap probe.
func (c *anthropicClient) Available(context.Context) bool {
	return c.cfg.APIKey != ""
}

func (c *anthropicClient) complete(task TaskType, latency int64, err error) {
	c.observer.OnCallComplete(LLMCallEvent{
		Task:      task,
		Provider:  ProviderAnthropic,
		Model:     c.cfg.Model,
		LatencyMs: latency,
		Success:   err == nil,
		ErrorCode: errorCode(err),
	})
}

func classifyAnthropic(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		case apiErr.StatusCode >= 500:
			return fmt.Errorf("%w: %v", ErrRetryExhausted, err)
		}
		return fmt.Errorf("anthropic api error: %w", err)
	}
	if isConnectionError(err) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return fmt.Errorf("%w: %v", ErrRetryExhausted, err)
}
