package models

// LoanQuote represents an amortized loan computed on demand
type LoanQuote struct {
	Principal    float64                `json:"principal"`
	TenureMonths int                    `json:"tenureMonths"`
	MonthlyRate  float64                `json:"monthlyRate"`
	EMI          float64                `json:"emi"`
	TotalPayable float64                `json:"totalPayable"`
	Interest     float64                `json:"interest"`
	Schedule     []PaymentScheduleEntry `json:"schedule,omitempty"`
}

// SliderBounds describes the selectable principal range
type SliderBounds struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// LoanOffer is the loan-offer view of the latest snapshot
type LoanOffer struct {
	HasAnalysis       bool          `json:"hasAnalysis"`
	Eligible          bool          `json:"eligible"`
	CreditLimit       float64       `json:"creditLimit,omitempty"`
	RequestedAmount   float64       `json:"requestedAmount,omitempty"`
	Bounds            *SliderBounds `json:"bounds,omitempty"`
	Quote             *LoanQuote    `json:"quote,omitempty"`
	RepaymentCapacity *float64      `json:"repaymentCapacity,omitempty"`
	Affordable        *bool         `json:"affordable,omitempty"`
}
