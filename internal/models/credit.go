package models

// Confidence levels for a credit limit decision
const (
	ConfidenceLow    = "Low"
	ConfidenceMedium = "Medium"
	ConfidenceHigh   = "High"
)

// CreditLimitBreakdown explains how the credit limit was reached
type CreditLimitBreakdown struct {
	ApprovedLimit      float64       `json:"approvedLimit"`
	MaxEligibleLimit   float64       `json:"maxEligibleLimit"`
	LimitReasoning     string        `json:"limitReasoning"`
	IncomeToLimitRatio string        `json:"incomeToLimitRatio"`
	LimitFactors       []LimitFactor `json:"limitFactors"`
	RepaymentCapacity  float64       `json:"repaymentCapacity"` // monthly, INR
	ConfidenceLevel    string        `json:"confidenceLevel"`
}

// LimitFactor represents one input to the limit decision
type LimitFactor struct {
	Factor string `json:"factor"`
	Impact string `json:"impact"`
	Detail string `json:"detail"`
}
