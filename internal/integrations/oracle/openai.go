package oracle

import (
	"context"
	"errors"
	"strings"

	"github.com/Dan9191/trust-score-service/internal/models"
	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIClient calls any OpenAI-compatible chat completion endpoint.
// It accepts text requests only.
type OpenAIClient struct {
	apiKey string
	model  string
	client *openai.Client
	log    *logrus.Logger
}

// NewOpenAIClient initializes a chat completion client
func NewOpenAIClient(opts Options, log *logrus.Logger) *OpenAIClient {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	c := &OpenAIClient{
		apiKey: opts.APIKey,
		model:  opts.Model,
		client: openai.NewClientWithConfig(cfg),
		log:    log,
	}
	if c.model == "" {
		c.model = defaultOpenAIModel
	}
	return c
}

// Invoke sends the instruction text as one user message
func (c *OpenAIClient) Invoke(ctx context.Context, req *models.ScoringRequest) (string, error) {
	if err := checkKey(ProviderOpenAI, c.apiKey); err != nil {
		return "", err
	}
	if req.HasBinary() {
		return "", &InvocationError{Provider: ProviderOpenAI, Detail: "document input is not supported by this provider"}
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Instruction()},
		},
	})
	if err != nil {
		status := 0
		var apiErr *openai.APIError
		var reqErr *openai.RequestError
		switch {
		case errors.As(err, &apiErr):
			status = apiErr.HTTPStatusCode
		case errors.As(err, &reqErr):
			status = reqErr.HTTPStatusCode
		}
		return "", classify(ProviderOpenAI, status, err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", &InvocationError{Provider: ProviderOpenAI, Detail: "empty response"}
	}
	c.log.Debugf("OpenAI response: finish_reason=%s", resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}
