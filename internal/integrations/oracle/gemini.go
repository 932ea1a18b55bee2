package oracle

import (
	"context"
	"encoding/base64"
	"errors"
	"math"
	"strings"

	"github.com/Dan9191/trust-score-service/internal/models"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-1.5-flash"

// GeminiClient calls generateContent through the Google GenAI SDK
type GeminiClient struct {
	apiKey    string
	model     string
	baseURL   string
	maxTokens int32
	log       *logrus.Logger
}

// NewGeminiClient initializes a Gemini client. Calls are bounded by the
// caller's context.
func NewGeminiClient(opts Options, log *logrus.Logger) *GeminiClient {
	c := &GeminiClient{
		apiKey:  opts.APIKey,
		model:   opts.Model,
		baseURL: opts.BaseURL,
		log:     log,
	}
	if c.model == "" {
		c.model = defaultGeminiModel
	}
	if opts.MaxTokens > 0 {
		c.maxTokens = int32(min(opts.MaxTokens, math.MaxInt32))
	}
	return c
}

// newSDKClient builds the SDK client for one call. The Gemini API backend is
// pinned so GOOGLE_GENAI_USE_VERTEXAI cannot redirect it.
func (c *GeminiClient) newSDKClient(ctx context.Context) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      c.apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: c.baseURL},
	})
}

// buildContents converts the scoring request into a single user turn
func (c *GeminiClient) buildContents(req *models.ScoringRequest) ([]*genai.Content, error) {
	parts := make([]*genai.Part, 0, len(req.Parts()))
	for _, p := range req.Parts() {
		switch p.Kind {
		case models.PartBinary:
			data, err := base64.StdEncoding.DecodeString(p.Data)
			if err != nil {
				return nil, err
			}
			parts = append(parts, genai.NewPartFromBytes(data, p.MimeType))
		default:
			parts = append(parts, genai.NewPartFromText(p.Text))
		}
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, nil
}

// Invoke sends the request and returns the first candidate's text
func (c *GeminiClient) Invoke(ctx context.Context, req *models.ScoringRequest) (string, error) {
	if err := checkKey(ProviderGemini, c.apiKey); err != nil {
		return "", err
	}

	contents, err := c.buildContents(req)
	if err != nil {
		return "", &InvocationError{Provider: ProviderGemini, Detail: "decode document", Err: err}
	}

	client, err := c.newSDKClient(ctx)
	if err != nil {
		return "", &InvocationError{Provider: ProviderGemini, Detail: "create client", Err: err}
	}

	var cfg *genai.GenerateContentConfig
	if c.maxTokens > 0 {
		cfg = &genai.GenerateContentConfig{MaxOutputTokens: c.maxTokens}
	}

	resp, err := client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		status := 0
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			status = apiErr.Code
		}
		return "", classify(ProviderGemini, status, err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", &InvocationError{Provider: ProviderGemini, Detail: "prompt blocked: " + string(resp.PromptFeedback.BlockReason)}
	}

	text := resp.Text()
	c.log.Debugf("Gemini raw response: %s", text)
	if strings.TrimSpace(text) == "" {
		return "", &InvocationError{Provider: ProviderGemini, Detail: "empty response"}
	}
	return text, nil
}
