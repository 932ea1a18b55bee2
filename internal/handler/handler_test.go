package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/trust-score-service/internal/config"
	"github.com/Dan9191/trust-score-service/internal/ingest"
	"github.com/Dan9191/trust-score-service/internal/integrations/oracle"
	"github.com/Dan9191/trust-score-service/internal/middleware"
	"github.com/Dan9191/trust-score-service/internal/models"
	"github.com/Dan9191/trust-score-service/internal/repository"
	"github.com/Dan9191/trust-score-service/internal/service"
	"github.com/Dan9191/trust-score-service/internal/validator"
)

type stubOracle func(ctx context.Context, req *models.ScoringRequest) (string, error)

func (f stubOracle) Invoke(ctx context.Context, req *models.ScoringRequest) (string, error) {
	return f(ctx, req)
}

func fixtureReport(t *testing.T) string {
	t.Helper()
	b, err := os.ReadFile("../validator/testdata/report.json")
	require.NoError(t, err)
	return string(b)
}

type testServer struct {
	t       *testing.T
	server  *httptest.Server
	handler *Handler
	token   string
}

func newTestServer(t *testing.T, orc oracle.Client, maxDocumentBytes int64) *testServer {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := &config.Config{JWTSecret: "test-secret", SessionTTL: time.Hour}
	v, err := validator.New()
	require.NoError(t, err)

	registry := service.NewSessionRegistry(repository.NewMemoryRepository())
	analysis := service.NewAnalysisService(service.AnalysisConfig{
		Ingestor:  ingest.NewIngestor(maxDocumentBytes),
		Oracle:    orc,
		Provider:  "stub",
		Validator: v,
		Registry:  registry,
		Timeout:   time.Second,
	}, log)
	svc := service.NewService(analysis, service.NewLoanService(registry, log), registry, log, cfg)

	h := NewHandler(svc, log, maxDocumentBytes)
	ts := httptest.NewServer(NewRouter(h, cfg, log))
	t.Cleanup(ts.Close)

	s := &testServer{t: t, server: ts, handler: h}
	resp, body := s.do(http.MethodPost, "/sessions", nil, false)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var session map[string]string
	require.NoError(t, json.Unmarshal(body, &session))
	require.NotEmpty(t, session["sessionId"])
	s.token = session["token"]
	return s
}

func (s *testServer) do(method, path string, payload interface{}, auth bool) (*http.Response, []byte) {
	s.t.Helper()
	var body io.Reader
	if payload != nil {
		switch p := payload.(type) {
		case string:
			body = strings.NewReader(p)
		default:
			b, err := json.Marshal(p)
			require.NoError(s.t, err)
			body = bytes.NewReader(b)
		}
	}
	req, err := http.NewRequest(method, s.server.URL+path, body)
	require.NoError(s.t, err)
	if auth {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	return resp, out
}

func respondWith(body string) stubOracle {
	return func(context.Context, *models.ScoringRequest) (string, error) { return body, nil }
}

func TestFlow(t *testing.T) {
	s := newTestServer(t, respondWith(fixtureReport(t)), 0)

	// nothing analysed yet
	resp, body := s.do(http.MethodGet, "/snapshot", nil, true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"hasAnalysis": false}`, string(body))

	resp, _ = s.do(http.MethodGet, "/report", nil, true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = s.do(http.MethodGet, "/loan-offer", nil, true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"hasAnalysis": false, "eligible": false}`, string(body))

	// analyse
	resp, body = s.do(http.MethodPost, "/analyze", map[string]string{"bankStatement": "Salary 25000 monthly"}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var analyzed struct {
		Success    bool                    `json:"success"`
		Analysis   models.TrustScoreReport `json:"analysis"`
		Warnings   []validator.Warning     `json:"warnings"`
		AnalysisID string                  `json:"analysisId"`
	}
	require.NoError(t, json.Unmarshal(body, &analyzed))
	assert.True(t, analyzed.Success)
	assert.Equal(t, 742, analyzed.Analysis.ScoreOverview.TrustScore)
	assert.NotNil(t, analyzed.Warnings)
	assert.NotEmpty(t, analyzed.AnalysisID)

	resp, body = s.do(http.MethodGet, "/report", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Equal(t, 15000.0, view["creditLimit"])
	assert.InDelta(t, 59.5133, view["ringOffset"], 1e-4)
	assert.Equal(t, 22.0, view["topPercent"])
	assert.Len(t, view["pieSlices"], 4)

	resp, body = s.do(http.MethodGet, "/snapshot", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &snap))
	assert.Equal(t, true, snap["hasAnalysis"])
	assert.Equal(t, 15000.0, snap["creditLimit"])
	assert.Equal(t, 742.0, snap["trustScore"])

	resp, body = s.do(http.MethodGet, "/loan-offer?amount=20000&tenure=3", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var offer models.LoanOffer
	require.NoError(t, json.Unmarshal(body, &offer))
	assert.True(t, offer.Eligible)
	assert.Equal(t, 15000.0, offer.Bounds.Max)
	assert.Equal(t, 15000.0, offer.Quote.Principal)
	assert.Len(t, offer.Quote.Schedule, 3)

	// a second analysis needs a reset first
	resp, _ = s.do(http.MethodPost, "/analyze", map[string]string{"bankStatement": "again"}, true)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = s.do(http.MethodPost, "/analysis/reset", nil, true)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = s.do(http.MethodGet, "/report", nil, true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(http.MethodPost, "/analyze", map[string]string{"bankStatement": "again"}, true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReport_CreditLimitFallsBackWithoutApprovedLimit(t *testing.T) {
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(fixtureReport(t)), &m))
	delete(m["creditLimitBreakdown"].(map[string]interface{}), "approvedLimit")
	m["recommendedCreditLimit"] = 12000
	raw, err := json.Marshal(m)
	require.NoError(t, err)

	s := newTestServer(t, respondWith(string(raw)), 0)

	resp, body := s.do(http.MethodPost, "/analyze", map[string]string{"bankStatement": "Salary 25000 monthly"}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var analyzed map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &analyzed))
	assert.Equal(t, 12000.0, analyzed["creditLimit"])

	resp, body = s.do(http.MethodGet, "/report", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Equal(t, 12000.0, view["creditLimit"])

	resp, body = s.do(http.MethodGet, "/snapshot", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &snap))
	assert.Equal(t, 12000.0, snap["creditLimit"])
}

func TestAnalyze_DocumentUpload(t *testing.T) {
	pdf := []byte("%PDF-1.4\x00\xff\xfe binary")
	report := fixtureReport(t)
	var got []byte
	s := newTestServer(t, stubOracle(func(_ context.Context, req *models.ScoringRequest) (string, error) {
		parts := req.Parts()
		decoded, err := base64.StdEncoding.DecodeString(parts[0].Data)
		if err != nil {
			return "", err
		}
		got = decoded
		return report, nil
	}), 0)

	resp, body := s.do(http.MethodPost, "/analyze", map[string]string{
		"pdfBase64": "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(pdf),
		"fileName":  "march.pdf",
	}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, pdf, got)
}

func TestAnalyze_StatusMapping(t *testing.T) {
	pdf := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 a statement larger than the limit"))

	tests := []struct {
		name     string
		oracle   stubOracle
		maxBytes int64
		payload  interface{}
		status   int
		raw      string
	}{
		{
			name: "quota",
			oracle: func(context.Context, *models.ScoringRequest) (string, error) {
				return "", &oracle.QuotaError{Provider: "stub"}
			},
			payload: map[string]string{"bankStatement": "x"},
			status:  http.StatusTooManyRequests,
		},
		{
			name:    "configuration",
			oracle:  func(context.Context, *models.ScoringRequest) (string, error) { return "", oracle.ErrConfiguration },
			payload: map[string]string{"bankStatement": "x"},
			status:  http.StatusInternalServerError,
		},
		{
			name: "invocation",
			oracle: func(context.Context, *models.ScoringRequest) (string, error) {
				return "", &oracle.InvocationError{Provider: "stub", Detail: "status 503"}
			},
			payload: map[string]string{"bankStatement": "x"},
			status:  http.StatusInternalServerError,
		},
		{
			name:    "malformed",
			oracle:  respondWith("no json here"),
			payload: map[string]string{"bankStatement": "x"},
			status:  http.StatusInternalServerError,
			raw:     "no json here",
		},
		{
			name:    "unsupported type",
			oracle:  respondWith("{}"),
			payload: map[string]string{"pdfBase64": pdf, "mimeType": "image/png"},
			status:  http.StatusUnsupportedMediaType,
		},
		{
			name:    "bad base64",
			oracle:  respondWith("{}"),
			payload: map[string]string{"pdfBase64": "!!not base64!!"},
			status:  http.StatusBadRequest,
		},
		{
			name:     "document over ceiling",
			oracle:   respondWith("{}"),
			maxBytes: 16,
			payload:  map[string]string{"pdfBase64": pdf},
			status:   http.StatusRequestEntityTooLarge,
		},
		{
			name:    "invalid json",
			oracle:  respondWith("{}"),
			payload: "{not json",
			status:  http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.oracle, tt.maxBytes)

			resp, body := s.do(http.MethodPost, "/analyze", tt.payload, true)
			assert.Equal(t, tt.status, resp.StatusCode, string(body))

			var e errorResponse
			require.NoError(t, json.Unmarshal(body, &e))
			assert.NotEmpty(t, e.Error)
			assert.Equal(t, tt.raw, e.RawResponse)
		})
	}
}

func TestAnalyze_BodyOverCeiling(t *testing.T) {
	s := newTestServer(t, respondWith("{}"), 16)

	payload, err := json.Marshal(map[string]string{"bankStatement": strings.Repeat("x", 2<<20)})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader(payload))
	req = req.WithContext(middleware.WithSessionID(req.Context(), "s1"))
	rec := httptest.NewRecorder()

	s.handler.Analyze(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestLoanOffer_BadQuery(t *testing.T) {
	s := newTestServer(t, respondWith(fixtureReport(t)), 0)

	for _, q := range []string{"?amount=abc", "?amount=-5", "?tenure=x", "?tenure=13", "?tenure=0"} {
		resp, _ := s.do(http.MethodGet, "/loan-offer"+q, nil, true)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, respondWith("{}"), 0)

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/analyze"},
		{http.MethodGet, "/report"},
		{http.MethodPost, "/analysis/reset"},
		{http.MethodGet, "/snapshot"},
		{http.MethodGet, "/loan-offer"},
	} {
		resp, _ := s.do(route.method, route.path, nil, false)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, route.path)
	}
}

func TestPublicRoutes(t *testing.T) {
	s := newTestServer(t, respondWith("{}"), 0)

	resp, body := s.do(http.MethodGet, "/healthz", nil, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	resp, body = s.do(http.MethodGet, "/metrics", nil, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "trust_active_sessions")
}
