package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mostachar-ma/mostachar/internal/domain"
	"github.com/mostachar-ma/mostachar/internal/metrics"
)

// ChatModel is a chat completion provider using the OpenAI-compatible API.
type ChatModel struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// ChatConfig holds the chat completion provider settings.
type ChatConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
}

// NewChatModel creates an OpenAI-compatible chat completion provider.
func NewChatModel(cfg *ChatConfig) *ChatModel {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &ChatModel{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

func (c *ChatModel) request(messages []domain.Message, stream bool) openai.ChatCompletionRequest {
	msgs := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		msgs[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}
	return openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Stream:      stream,
	}
}

// Complete implements domain.ChatModel.
func (c *ChatModel) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, c.request(messages, false))
	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(c.model, "sync", "error").Inc()
		return "", wrapGenerationError(err)
	}
	if len(resp.Choices) == 0 {
		metrics.GenerationRequestsTotal.WithLabelValues(c.model, "sync", "error").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrGenerationProvider)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(c.model, "sync", "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues(c.model, "sync").
		Observe(time.Since(start).Seconds())

	return resp.Choices[0].Message.Content, nil
}

// Stream implements domain.ChatModel. The returned stream is bound to ctx:
// cancelling the context aborts the remote call.
func (c *ChatModel) Stream(ctx context.Context, messages []domain.Message) (domain.ChatStream, error) {
	stream, err := c.client.CreateChatCompletionStream(ctx, c.request(messages, true))
	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(c.model, "stream", "error").Inc()
		return nil, wrapGenerationError(err)
	}
	return &tokenStream{inner: stream, model: c.model, start: time.Now()}, nil
}

// tokenStream adapts the go-openai stream to domain.ChatStream.
type tokenStream struct {
	inner *openai.ChatCompletionStream
	model string
	start time.Time
	done  bool
}

// Recv returns the next delta. Chunks without choices (e.g. usage frames)
// yield an empty fragment, which callers filter.
func (s *tokenStream) Recv() (string, error) {
	resp, err := s.inner.Recv()
	if errors.Is(err, io.EOF) {
		if !s.done {
			s.done = true
			metrics.GenerationRequestsTotal.WithLabelValues(s.model, "stream", "success").Inc()
			metrics.GenerationRequestDuration.WithLabelValues(s.model, "stream").
				Observe(time.Since(s.start).Seconds())
		}
		return "", io.EOF
	}
	if err != nil {
		if !s.done {
			s.done = true
			metrics.GenerationRequestsTotal.WithLabelValues(s.model, "stream", "error").Inc()
		}
		return "", wrapGenerationError(err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Delta.Content, nil
}

func (s *tokenStream) Close() error {
	return s.inner.Close() //nolint:wrapcheck // delegating to underlying stream
}

// wrapGenerationError wraps remote chat failures with domain.ErrGenerationProvider.
func wrapGenerationError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("chat API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, domain.ErrGenerationProvider)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("chat API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), domain.ErrGenerationProvider)
	}

	return fmt.Errorf("chat request failed: %w: %w", err, domain.ErrGenerationProvider)
}
