// Package gemini implements the text-generation gateway on the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"fitpro-backend/models"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const (
	DefaultModel       = "gemini-2.5-flash"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 4096
	requestTimeout     = 30 * time.Second
)

var (
	ErrMissingAPIKey = errors.New("missing GEMINI_API_KEY")
	ErrNoContent     = errors.New("No text returned from Gemini.")
)

// Client is a lazily initialised Gemini generation client. The API key is
// only checked when the first request is made.
type Client struct {
	apiKey  string
	model   string
	timeout time.Duration
	logger  *zap.Logger

	mu sync.Mutex
	gc *genai.Client
}

// ClientOption is a functional option for Client
type ClientOption func(*Client)

// WithModel sets the model name
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:  apiKey,
		model:   DefaultModel,
		timeout: requestTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) client(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gc != nil {
		return c.gc, nil
	}
	if c.apiKey == "" {
		return nil, models.WithKind(models.KindConfiguration, ErrMissingAPIKey)
	}

	gc, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	c.gc = gc
	c.logger.Info("gemini client initialized", zap.String("model", c.model))
	return gc, nil
}

// Generate sends one prompt and returns the generated text
func (c *Client) Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResponse, error) {
	gc, err := c.client(ctx)
	if err != nil {
		return nil, err
	}

	model := gc.GenerativeModel(c.model)
	temperature := req.Temperature
	if temperature == 0 {
		temperature = DefaultTemperature
	}
	maxTokens := req.MaxOutputTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}
	model.SetTemperature(temperature)
	model.SetMaxOutputTokens(maxTokens)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		c.logger.Warn("gemini request failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return nil, classifyError(err)
	}

	return parseResponse(resp)
}

// Close releases the underlying client
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gc == nil {
		return nil
	}
	err := c.gc.Close()
	c.gc = nil
	return err
}

// parseResponse joins the text parts of the first candidate
func parseResponse(resp *genai.GenerateContentResponse) (*models.GenerationResponse, error) {
	if resp == nil {
		return nil, ErrNoContent
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return nil, blockedError(resp.PromptFeedback.BlockReason.String())
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrNoContent
	}

	candidate := resp.Candidates[0]
	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return nil, ErrNoContent
	}

	return &models.GenerationResponse{
		Text:         text,
		FinishReason: candidate.FinishReason.String(),
	}, nil
}

func classifyError(err error) error {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		reason := "unknown"
		switch {
		case blocked.PromptFeedback != nil:
			reason = blocked.PromptFeedback.BlockReason.String()
		case blocked.Candidate != nil:
			reason = blocked.Candidate.FinishReason.String()
		}
		return blockedError(reason)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return models.WithKind(models.KindTransport, fmt.Errorf("timeout of %s exceeded: %w", requestTimeout, err))
	}
	return err
}

func blockedError(reason string) error {
	reason = strings.TrimPrefix(reason, "BlockReason")
	reason = strings.TrimPrefix(reason, "FinishReason")
	return models.WithKind(models.KindProviderPolicyBlock, fmt.Errorf("Prompt was blocked: %s", strings.ToUpper(reason)))
}
