package oracle

import (
	"context"
	"errors"
	"strings"

	"github.com/Dan9191/trust-score-service/internal/models"
	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sirupsen/logrus"
)

const (
	defaultAnthropicModel     = "claude-sonnet-4-5-20250929"
	defaultAnthropicMaxTokens = 8192
)

// AnthropicClient calls the Anthropic Messages API
type AnthropicClient struct {
	apiKey    string
	model     string
	maxTokens int64
	client    sdk.Client
	log       *logrus.Logger
}

// NewAnthropicClient initializes a Messages API client with SDK retries disabled
func NewAnthropicClient(opts Options, log *logrus.Logger) *AnthropicClient {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	c := &AnthropicClient{
		apiKey:    opts.APIKey,
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
		client:    sdk.NewClient(reqOpts...),
		log:       log,
	}
	if c.model == "" {
		c.model = defaultAnthropicModel
	}
	if c.maxTokens <= 0 {
		c.maxTokens = defaultAnthropicMaxTokens
	}
	return c
}

func toAnthropicBlocks(req *models.ScoringRequest) []sdk.ContentBlockParamUnion {
	blocks := make([]sdk.ContentBlockParamUnion, 0, len(req.Parts()))
	for _, p := range req.Parts() {
		switch p.Kind {
		case models.PartBinary:
			blocks = append(blocks, sdk.NewDocumentBlock(sdk.Base64PDFSourceParam{Data: p.Data}))
		default:
			blocks = append(blocks, sdk.NewTextBlock(p.Text))
		}
	}
	return blocks
}

// Invoke sends the request as a single user turn and returns the text blocks
func (c *AnthropicClient) Invoke(ctx context.Context, req *models.ScoringRequest) (string, error) {
	if err := checkKey(ProviderAnthropic, c.apiKey); err != nil {
		return "", err
	}

	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages:  []sdk.MessageParam{sdk.NewUserMessage(toAnthropicBlocks(req)...)},
	})
	if err != nil {
		status := 0
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		return "", classify(ProviderAnthropic, status, err)
	}

	var sb strings.Builder
	for _, b := range msg.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	c.log.Debugf("Anthropic response %s: stop_reason=%s output_tokens=%d", msg.ID, msg.StopReason, msg.Usage.OutputTokens)

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", &InvocationError{Provider: ProviderAnthropic, Detail: "empty response"}
	}
	return text, nil
}
