package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/trust-score-service/internal/calculator"
	"github.com/Dan9191/trust-score-service/internal/ingest"
	"github.com/Dan9191/trust-score-service/internal/integrations/oracle"
	"github.com/Dan9191/trust-score-service/internal/metrics"
	"github.com/Dan9191/trust-score-service/internal/models"
	"github.com/Dan9191/trust-score-service/internal/validator"
)

// maxLoggedResponse bounds how much raw oracle text goes into a log entry
const maxLoggedResponse = 2048

// Notifier receives a summary after every committed analysis
type Notifier interface {
	SendAnalysisSummary(to string, report *models.TrustScoreReport, snap *models.PersistedTrustSnapshot) error
}

// AnalyzeRequest is one submission from a session
type AnalyzeRequest struct {
	Input       models.RawStatementInput
	NotifyEmail string
}

// AnalysisResult is a committed analysis
type AnalysisResult struct {
	Record   models.AnalysisRecord
	Report   *models.TrustScoreReport
	Warnings []validator.Warning
	Snapshot *models.PersistedTrustSnapshot
}

// ReportView is the current report with its derived display values.
// CreditLimit is the approved limit, or the recommended limit when the
// breakdown carries none; Report keeps the oracle's own figures.
type ReportView struct {
	Report      *models.TrustScoreReport `json:"analysis"`
	CreditLimit float64                  `json:"creditLimit"`
	RingOffset  float64                  `json:"ringOffset"`
	PieSlices   []calculator.PieSlice    `json:"pieSlices"`
	TopPercent  float64                  `json:"topPercent"`
}

// AnalysisService runs the ingest, oracle, validate, commit pipeline
type AnalysisService struct {
	ingestor  *ingest.Ingestor
	oracle    oracle.Client
	provider  string
	validator *validator.Validator
	registry  *SessionRegistry
	notifier  Notifier
	timeout   time.Duration
	log       *logrus.Logger
	now       func() time.Time
}

// AnalysisConfig wires an AnalysisService
type AnalysisConfig struct {
	Ingestor  *ingest.Ingestor
	Oracle    oracle.Client
	Provider  string
	Validator *validator.Validator
	Registry  *SessionRegistry
	Notifier  Notifier // optional
	Timeout   time.Duration
}

// NewAnalysisService initializes the pipeline
func NewAnalysisService(cfg AnalysisConfig, log *logrus.Logger) *AnalysisService {
	return &AnalysisService{
		ingestor:  cfg.Ingestor,
		oracle:    cfg.Oracle,
		provider:  cfg.Provider,
		validator: cfg.Validator,
		registry:  cfg.Registry,
		notifier:  cfg.Notifier,
		timeout:   cfg.Timeout,
		log:       log,
		now:       time.Now,
	}
}

// Analyze runs one analysis for a session. Nothing is committed unless every
// stage succeeds.
func (s *AnalysisService) Analyze(ctx context.Context, sessionID string, req AnalyzeRequest) (*AnalysisResult, error) {
	sess := s.registry.Get(sessionID)
	if err := sess.begin(); err != nil {
		return nil, err
	}

	record := models.AnalysisRecord{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Source:    models.SourceText,
		StartedAt: s.now(),
	}
	if req.Input.Document != nil {
		record.Source = models.SourceDocument
		record.FileName = req.Input.Document.FileName
	}
	log := s.log.WithFields(logrus.Fields{
		"session":     sessionID,
		"analysis_id": record.ID,
		"source":      record.Source,
	})

	committed := false
	defer func() { sess.finish(committed) }()

	result, err := s.run(ctx, sess, &record, req, log)
	record.FinishedAt = s.now()
	metrics.AnalysesTotal.WithLabelValues(record.Source, record.Outcome).Inc()
	if err != nil {
		log.WithField("outcome", record.Outcome).Errorf("Analysis failed: %v", err)
		return nil, err
	}
	committed = true
	result.Record = record

	log.WithFields(logrus.Fields{
		"trust_score":  result.Snapshot.TrustScore,
		"credit_limit": result.Snapshot.CreditLimit,
		"warnings":     len(result.Warnings),
	}).Info("Analysis committed")

	if s.notifier != nil && req.NotifyEmail != "" {
		go func(to string, report *models.TrustScoreReport, snap *models.PersistedTrustSnapshot) {
			if err := s.notifier.SendAnalysisSummary(to, report, snap); err != nil {
				log.Warnf("Analysis summary not delivered: %v", err)
			}
		}(req.NotifyEmail, result.Report, result.Snapshot)
	}
	return result, nil
}

func (s *AnalysisService) run(ctx context.Context, sess *Session, record *models.AnalysisRecord, req AnalyzeRequest, log *logrus.Entry) (*AnalysisResult, error) {
	scoring, err := s.ingestor.Ingest(req.Input)
	if err != nil {
		record.Outcome = models.OutcomeRejected
		return nil, fmt.Errorf("ingest statement: %w", err)
	}

	raw, err := s.invoke(ctx, scoring)
	if err != nil {
		record.Outcome = oracleOutcome(err)
		return nil, fmt.Errorf("invoke oracle: %w", err)
	}
	log.WithField("response_bytes", len(raw)).Debug("Oracle responded")

	validated, err := s.validator.Validate(raw)
	if err != nil {
		record.Outcome = models.OutcomeMalformed
		log.WithField("raw_response", truncate(raw, maxLoggedResponse)).Warn("Oracle response rejected")
		return nil, fmt.Errorf("validate response: %w", err)
	}
	for _, w := range validated.Warnings {
		metrics.ValidationWarnings.WithLabelValues(w.Code).Inc()
		record.Warnings = append(record.Warnings, w.Code)
		log.WithFields(logrus.Fields{"code": w.Code, "field": w.Field}).Warn(w.Message)
	}

	snap, err := sess.Store.Commit(ctx, validated.Report)
	if err != nil {
		metrics.SnapshotCommits.WithLabelValues("error").Inc()
		record.Outcome = models.OutcomeStoreError
		return nil, err
	}
	metrics.SnapshotCommits.WithLabelValues("ok").Inc()
	record.Outcome = models.OutcomeSuccess

	return &AnalysisResult{
		Report:   validated.Report,
		Warnings: validated.Warnings,
		Snapshot: snap,
	}, nil
}

func (s *AnalysisService) invoke(ctx context.Context, req *models.ScoringRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	raw, err := s.oracle.Invoke(ctx, req)
	metrics.OracleDuration.WithLabelValues(s.provider).Observe(time.Since(start).Seconds())
	return raw, err
}

// Reset clears the session's report so a new analysis can start
func (s *AnalysisService) Reset(sessionID string) error {
	return s.registry.Get(sessionID).reset()
}

// Report returns the session's current report with display geometry
func (s *AnalysisService) Report(sessionID string) (*ReportView, bool) {
	report := s.registry.Get(sessionID).Store.Current()
	if report == nil {
		return nil, false
	}
	return &ReportView{
		Report:      report,
		CreditLimit: report.EffectiveCreditLimit(),
		RingOffset:  calculator.RingStrokeOffset(float64(report.ScoreOverview.TrustScore)),
		PieSlices:   calculator.PieSlices(report.SpendingAnalysis.Categories),
		TopPercent:  calculator.TopPercent(report.ScorePercentile),
	}, true
}

// Snapshot returns the session's durable snapshot; ok is false before the
// first committed analysis
func (s *AnalysisService) Snapshot(ctx context.Context, sessionID string) (*models.PersistedTrustSnapshot, bool, error) {
	return s.registry.Get(sessionID).Store.ReadSnapshot(ctx)
}

func oracleOutcome(err error) string {
	switch {
	case errors.Is(err, oracle.ErrConfiguration):
		return models.OutcomeConfiguration
	case errors.Is(err, oracle.ErrQuotaExceeded):
		return models.OutcomeQuota
	default:
		return models.OutcomeInvocation
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
