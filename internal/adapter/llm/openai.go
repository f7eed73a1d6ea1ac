package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"eadrag/internal/domain"
	"eadrag/internal/metrics"
)

// Config holds the generative model settings.
type Config struct {
	BaseURL      string
	Model        string
	APIKeyEnv    string
	MaxNewTokens int
	Temperature  float32
	Timeout      time.Duration
	Logger       *zap.Logger
}

// OpenAIResponder sends the prompt as a single user message to an
// OpenAI-compatible chat completion endpoint.
type OpenAIResponder struct {
	client       *openai.Client
	model        string
	maxNewTokens int
	temperature  float32
	logger       *zap.Logger
}

// NewOpenAIResponder reads the credential from cfg.APIKeyEnv and fails with
// ErrMissingCredential when it is unset.
func NewOpenAIResponder(cfg Config) (*OpenAIResponder, error) {
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if cfg.APIKeyEnv == "" || apiKey == "" {
		return nil, fmt.Errorf("%w: set %s to use generation", domain.ErrMissingCredential, cfg.APIKeyEnv)
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OpenAIResponder{
		client:       openai.NewClientWithConfig(clientCfg),
		model:        cfg.Model,
		maxNewTokens: cfg.MaxNewTokens,
		temperature:  cfg.Temperature,
		logger:       logger,
	}, nil
}

func (r *OpenAIResponder) Respond(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   r.maxNewTokens,
		Temperature: r.temperature,
	}

	start := time.Now()
	resp, err := r.client.CreateChatCompletion(ctx, req)
	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(r.model, "error").Inc()
		return "", parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		metrics.GenerationRequestsTotal.WithLabelValues(r.model, "error").Inc()
		return "", fmt.Errorf("%w: model %s returned no choices", domain.ErrGenerationProvider, r.model)
	}
	metrics.GenerationRequestsTotal.WithLabelValues(r.model, "success").Inc()

	r.logger.Debug("Generated response",
		zap.String("model", r.model),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Duration("duration", time.Since(start)),
	)

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (r *OpenAIResponder) ModelName() string {
	return r.model
}

func parseAPIError(err error) error {
	wrap := domain.ErrGenerationProvider

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("generation API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("generation API error %d: %s: %w", reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	return fmt.Errorf("generation request failed: %v: %w", err, wrap)
}
