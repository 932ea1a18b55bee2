package models

import "time"

// Analysis sources
const (
	SourceText     = "text"
	SourceDocument = "document"
)

// Analysis outcomes
const (
	OutcomeSuccess       = "success"
	OutcomeConfiguration = "configuration_error"
	OutcomeQuota         = "quota_exceeded"
	OutcomeInvocation    = "invocation_error"
	OutcomeMalformed     = "malformed_response"
	OutcomeRejected      = "rejected_input"
	OutcomeStoreError    = "store_error"
)

// AnalysisRecord describes one pipeline run
type AnalysisRecord struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"sessionId"`
	Source     string    `json:"source"`
	FileName   string    `json:"fileName,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Outcome    string    `json:"outcome"`
	Warnings   []string  `json:"warnings,omitempty"`
}
