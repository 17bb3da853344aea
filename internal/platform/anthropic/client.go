package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/yungbote/unipilot-backend/internal/platform/llm"
	"github.com/yungbote/unipilot-backend/internal/platform/logger"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderBedrock   = "bedrock"
)

type Config struct {
	// Provider is "anthropic" for the public API or "bedrock" for AWS.
	Provider   string
	APIKey     string
	BaseURL    string
	Region     string
	Model      string
	MaxTokens  int
	Timeout    time.Duration
	MaxRetries int
}

// Client sends single-turn Messages requests.
type Client struct {
	log       *logger.Logger
	provider  string
	api       anthropic.Client
	model     string
	maxTokens int
}

var _ llm.Generator = (*Client)(nil)

func NewClient(ctx context.Context, log *logger.Logger, cfg Config) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderAnthropic
	}

	var opts []option.RequestOption
	switch provider {
	case ProviderBedrock:
		region := strings.TrimSpace(cfg.Region)
		if region == "" {
			region = "us-east-1"
		}
		opts = append(opts, bedrock.WithLoadDefaultConfig(ctx, awsconfig.WithRegion(region)))
	case ProviderAnthropic:
		key := strings.TrimSpace(cfg.APIKey)
		if key == "" {
			return nil, fmt.Errorf("missing ANTHROPIC_API_KEY")
		}
		opts = append(opts, option.WithAPIKey(key))
	default:
		return nil, fmt.Errorf("unknown anthropic provider %q", cfg.Provider)
	}
	if u := strings.TrimSpace(cfg.BaseURL); u != "" {
		opts = append(opts, option.WithBaseURL(u))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	if cfg.MaxRetries >= 0 {
		opts = append(opts, option.WithMaxRetries(cfg.MaxRetries))
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 8192
	}
	return &Client{
		log:       log.With("service", "AnthropicClient", "provider", provider),
		provider:  provider,
		api:       anthropic.NewClient(opts...),
		model:     strings.TrimSpace(cfg.Model),
		maxTokens: maxTokens,
	}, nil
}

func (c *Client) Generate(ctx context.Context, req llm.Request) (llm.Result, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.model
	}
	if model == "" {
		return llm.Result{}, &llm.Error{Provider: c.provider, Category: llm.CategoryValidation, Err: errors.New("model required")}
	}
	maxTokens := req.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if s := strings.TrimSpace(req.System); s != "" {
		params.System = []anthropic.TextBlockParam{{Text: s}}
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}

	start := time.Now()
	msg, err := c.api.Messages.New(ctx, params)
	if err != nil {
		return llm.Result{}, c.wrapErr(err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	out := llm.Result{
		Text:         text.String(),
		Model:        string(msg.Model),
		Truncated:    msg.StopReason == anthropic.StopReasonMaxTokens,
		InputTokens:  int(msg.Usage.InputTokens),
		OutputTokens: int(msg.Usage.OutputTokens),
	}
	c.log.Debug("Generation finished",
		"model", model,
		"stop_reason", string(msg.StopReason),
		"output_tokens", out.OutputTokens,
		"duration", time.Since(start).String(),
	)
	if strings.TrimSpace(out.Text) == "" {
		return out, &llm.Error{Provider: c.provider, Category: llm.CategoryGeneric, Err: llm.ErrEmptyOutput}
	}
	return out, nil
}

func (c *Client) wrapErr(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &llm.Error{
			Provider: c.provider,
			Category: llm.Classify(apiErr.StatusCode, apiErr.Error()),
			Status:   apiErr.StatusCode,
			Err:      err,
		}
	}
	return &llm.Error{Provider: c.provider, Category: llm.Classify(0, err.Error()), Err: err}
}
