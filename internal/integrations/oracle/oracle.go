package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/Dan9191/trust-score-service/internal/config"
	"github.com/Dan9191/trust-score-service/internal/models"
	"github.com/sirupsen/logrus"
)

var (
	// ErrConfiguration means the oracle credential is absent; no call was made
	ErrConfiguration = errors.New("oracle not configured")
	// ErrQuotaExceeded means the oracle refused the call for rate or quota reasons
	ErrQuotaExceeded = errors.New("oracle quota exceeded")
)

// Client invokes the scoring oracle and returns its raw text
type Client interface {
	Invoke(ctx context.Context, req *models.ScoringRequest) (string, error)
}

// InvocationError wraps any transport, auth or unknown oracle failure
type InvocationError struct {
	Provider string
	Detail   string
	Err      error
}

func (e *InvocationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s invocation failed: %s: %v", e.Provider, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s invocation failed: %s", e.Provider, e.Detail)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// QuotaError carries the oracle's own message for a quota refusal
type QuotaError struct {
	Provider string
	Detail   string
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Detail)
}

func (e *QuotaError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

var (
	quotaMarkers  = []string{"quota exceeded", "resource_exhausted"}
	quotaStatusRe = regexp.MustCompile(`(^|[^0-9])429([^0-9]|$)`)
)

// classify maps a failed call to the error taxonomy. statusCode is 0 when the
// backend did not expose one.
func classify(provider string, statusCode int, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &InvocationError{Provider: provider, Detail: "call abandoned", Err: err}
	}
	if statusCode == http.StatusTooManyRequests || looksLikeQuota(statusCode, err.Error()) {
		return &QuotaError{Provider: provider, Detail: err.Error()}
	}
	detail := "request failed"
	if statusCode != 0 {
		detail = fmt.Sprintf("status %d", statusCode)
	}
	return &InvocationError{Provider: provider, Detail: detail, Err: err}
}

// looksLikeQuota inspects the error text; a bare 429 only counts when no
// status code was available
func looksLikeQuota(statusCode int, msg string) bool {
	if statusCode == 0 && quotaStatusRe.MatchString(msg) {
		return true
	}
	msg = strings.ToLower(msg)
	for _, m := range quotaMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// checkKey fails fast on an absent or placeholder credential
func checkKey(provider, key string) error {
	key = strings.TrimSpace(key)
	if key == "" || key == config.PlaceholderAPIKey || strings.HasPrefix(key, "your_") {
		return fmt.Errorf("%w: %s API key is not set", ErrConfiguration, provider)
	}
	return nil
}

// New builds the client selected by cfg.OracleProvider
func New(cfg *config.Config, log *logrus.Logger) (Client, error) {
	opts := Options{
		APIKey:    cfg.OracleAPIKey,
		Model:     cfg.OracleModel,
		BaseURL:   cfg.OracleBaseURL,
		MaxTokens: cfg.OracleMaxTokens,
	}
	switch cfg.OracleProvider {
	case ProviderGemini:
		return NewGeminiClient(opts, log), nil
	case ProviderAnthropic:
		return NewAnthropicClient(opts, log), nil
	case ProviderOpenAI:
		return NewOpenAIClient(opts, log), nil
	default:
		return nil, fmt.Errorf("unknown oracle provider %q", cfg.OracleProvider)
	}
}

const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Options configures any backend
type Options struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int64
}
