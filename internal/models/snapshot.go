package models

// PersistedTrustSnapshot is the reduced, durable projection of a report.
// Timestamp is Unix milliseconds.
type PersistedTrustSnapshot struct {
	CreditLimit       float64  `json:"creditLimit"`
	TrustScore        int      `json:"trustScore"`
	TrustLevel        string   `json:"trustLevel"`
	ScorePercentile   float64  `json:"scorePercentile"`
	RepaymentCapacity *float64 `json:"repaymentCapacity,omitempty"`
	Timestamp         int64    `json:"timestamp"`
}
