package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/trust-score-service/internal/calculator"
	"github.com/Dan9191/trust-score-service/internal/ingest"
	"github.com/Dan9191/trust-score-service/internal/integrations/oracle"
	"github.com/Dan9191/trust-score-service/internal/middleware"
	"github.com/Dan9191/trust-score-service/internal/models"
	"github.com/Dan9191/trust-score-service/internal/service"
	"github.com/Dan9191/trust-score-service/internal/validator"
)

// bodySlack covers the JSON envelope around an encoded document
const bodySlack = 1 << 20

type Handler struct {
	svc          *service.Service
	log          *logrus.Logger
	maxBodyBytes int64
}

// NewHandler sizes the /analyze body limit from the document ceiling
func NewHandler(svc *service.Service, log *logrus.Logger, maxDocumentBytes int64) *Handler {
	if maxDocumentBytes <= 0 {
		maxDocumentBytes = ingest.DefaultMaxDocumentBytes
	}
	encoded := (maxDocumentBytes + 2) / 3 * 4
	return &Handler{svc: svc, log: log, maxBodyBytes: encoded + bodySlack}
}

type analyzeRequest struct {
	BankStatement string `json:"bankStatement"`
	PDFBase64     string `json:"pdfBase64"`
	FileName      string `json:"fileName"`
	MimeType      string `json:"mimeType"`
	NotifyEmail   string `json:"notifyEmail"`
}

type analyzeResponse struct {
	Success     bool                           `json:"success"`
	Analysis    *models.TrustScoreReport       `json:"analysis"`
	CreditLimit float64                        `json:"creditLimit"`
	Warnings    []validator.Warning            `json:"warnings"`
	AnalysisID  string                         `json:"analysisId"`
	Record      models.AnalysisRecord          `json:"record"`
	Snapshot    *models.PersistedTrustSnapshot `json:"snapshot"`
}

type errorResponse struct {
	Error       string `json:"error"`
	RawResponse string `json:"rawResponse,omitempty"`
}

type snapshotResponse struct {
	HasAnalysis bool `json:"hasAnalysis"`
	*models.PersistedTrustSnapshot
}

// CreateSession issues a new session token
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	token, sessionID, err := h.svc.CreateSession()
	if err != nil {
		h.log.Errorf("Failed to create session: %v", err)
		writeError(w, http.StatusInternalServerError, errorResponse{Error: "failed to create session"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"token": token, "sessionId": sessionID})
}

// Analyze runs the credit analysis for the caller's session
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.SessionID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return
		}
		writeError(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	input := models.RawStatementInput{FreeText: req.BankStatement}
	if req.PDFBase64 != "" {
		data, declared, err := ingest.DecodeDocument(req.PDFBase64)
		if err != nil {
			writeError(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		mimeType := req.MimeType
		if mimeType == "" {
			mimeType = declared
		}
		input.Document = &models.StatementDocument{Bytes: data, MimeType: mimeType, FileName: req.FileName}
	}

	res, err := h.svc.Analysis.Analyze(r.Context(), sessionID, service.AnalyzeRequest{
		Input:       input,
		NotifyEmail: req.NotifyEmail,
	})
	if err != nil {
		status, body := analysisError(err)
		writeError(w, status, body)
		return
	}

	warnings := res.Warnings
	if warnings == nil {
		warnings = []validator.Warning{}
	}
	writeJSON(w, http.StatusOK, analyzeResponse{
		Success:     true,
		Analysis:    res.Report,
		CreditLimit: res.Report.EffectiveCreditLimit(),
		Warnings:    warnings,
		AnalysisID:  res.Record.ID,
		Record:      res.Record,
		Snapshot:    res.Snapshot,
	})
}

// analysisError maps pipeline failures to a status and body
func analysisError(err error) (int, errorResponse) {
	var malformed *validator.MalformedResponseError
	switch {
	case errors.Is(err, service.ErrAnalysisInProgress), errors.Is(err, service.ErrReportActive):
		return http.StatusConflict, errorResponse{Error: err.Error()}
	case errors.Is(err, ingest.ErrDocumentTooLarge):
		return http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error()}
	case errors.Is(err, ingest.ErrUnsupportedMimeType):
		return http.StatusUnsupportedMediaType, errorResponse{Error: err.Error()}
	case errors.Is(err, ingest.ErrEmptyDocument), errors.Is(err, ingest.ErrInvalidEncoding):
		return http.StatusBadRequest, errorResponse{Error: err.Error()}
	case errors.Is(err, oracle.ErrQuotaExceeded):
		return http.StatusTooManyRequests, errorResponse{Error: "API quota exceeded. Please try again later."}
	case errors.Is(err, oracle.ErrConfiguration):
		return http.StatusInternalServerError, errorResponse{Error: "Oracle API key is not configured."}
	case errors.As(err, &malformed):
		return http.StatusInternalServerError, errorResponse{Error: "Failed to parse analysis response", RawResponse: malformed.Raw}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "Failed to analyze bank statement"}
	}
}

// Report returns the in-memory report with its display geometry
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.SessionID(r.Context())
	view, ok := h.svc.Analysis.Report(sessionID)
	if !ok {
		writeError(w, http.StatusNotFound, errorResponse{Error: "no report for this session"})
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ResetAnalysis drops the in-memory report
func (h *Handler) ResetAnalysis(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.SessionID(r.Context())
	if err := h.svc.Analysis.Reset(sessionID); err != nil {
		writeError(w, http.StatusConflict, errorResponse{Error: err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Snapshot returns the durable snapshot, or hasAnalysis=false
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.SessionID(r.Context())
	snap, ok, err := h.svc.Analysis.Snapshot(r.Context(), sessionID)
	if err != nil {
		h.log.WithField("session", sessionID).Errorf("Failed to read snapshot: %v", err)
		writeError(w, http.StatusInternalServerError, errorResponse{Error: "failed to read snapshot"})
		return
	}
	writeJSON(w, http.StatusOK, snapshotResponse{HasAnalysis: ok, PersistedTrustSnapshot: snap})
}

// LoanOffer prices a loan against the session's credit limit
func (h *Handler) LoanOffer(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.SessionID(r.Context())

	amount := calculator.DefaultPrincipal
	if v := r.URL.Query().Get("amount"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, errorResponse{Error: "amount must be a positive number"})
			return
		}
		amount = parsed
	}
	tenure := calculator.DefaultTenureMonths
	if v := r.URL.Query().Get("tenure"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, errorResponse{Error: "tenure must be a whole number of months"})
			return
		}
		tenure = parsed
	}

	offer, err := h.svc.Loans.Offer(r.Context(), sessionID, amount, tenure)
	if errors.Is(err, calculator.ErrInvalidLoanTerms) {
		writeError(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		h.log.WithField("session", sessionID).Errorf("Failed to build loan offer: %v", err)
		writeError(w, http.StatusInternalServerError, errorResponse{Error: "failed to build loan offer"})
		return
	}
	writeJSON(w, http.StatusOK, offer)
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, body errorResponse) {
	writeJSON(w, status, body)
}
