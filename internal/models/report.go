package models

import (
	"encoding/json"
	"fmt"
	"math"
)

// Trust levels the oracle is instructed to use
const (
	TrustLevelLow       = "LOW TRUST"
	TrustLevelModerate  = "MODERATE TRUST"
	TrustLevelHigh      = "HIGH TRUST"
	TrustLevelExcellent = "EXCELLENT TRUST"
)

// Factor impacts
const (
	ImpactPositive = "POSITIVE"
	ImpactNegative = "NEGATIVE"
	ImpactNeutral  = "NEUTRAL"
)

// Score bounds
const (
	MinTrustScore = 300
	MaxTrustScore = 900
	MinSubScore   = 0
	MaxSubScore   = 100
	MinPercentile = 1
	MaxPercentile = 100
)

// TrustScoreReport is the validated analysis produced by the oracle
type TrustScoreReport struct {
	ScoreOverview          ScoreOverview          `json:"scoreOverview"`
	ImprovementSuggestions ImprovementSuggestions `json:"improvementSuggestions"`
	SpendingAnalysis       SpendingAnalysis       `json:"spendingAnalysis"`
	AIInsights             AIInsights             `json:"aiInsights"`
	TrustFactorAnalysis    TrustFactorAnalysis    `json:"trustFactorAnalysis"`
	CreditLimitBreakdown   *CreditLimitBreakdown  `json:"creditLimitBreakdown,omitempty"`
	RecommendedCreditLimit float64                `json:"recommendedCreditLimit"`
	ScorePercentile        float64                `json:"scorePercentile"`
}

// ScoreOverview holds the headline score
type ScoreOverview struct {
	TrustScore       int            `json:"trustScore"`
	TrustLevel       string         `json:"trustLevel"`
	ScoreExplanation string         `json:"scoreExplanation"`
	ScoreBreakdown   ScoreBreakdown `json:"scoreBreakdown"`
}

// UnmarshalJSON accepts integral floats such as 742.0 for trustScore
func (s *ScoreOverview) UnmarshalJSON(b []byte) error {
	type alias ScoreOverview
	aux := struct {
		TrustScore json.Number `json:"trustScore"`
		*alias
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if aux.TrustScore == "" {
		s.TrustScore = 0
		return nil
	}
	f, err := aux.TrustScore.Float64()
	if err != nil {
		return fmt.Errorf("trustScore: %w", err)
	}
	if f != math.Trunc(f) {
		return fmt.Errorf("trustScore %v is not an integer", f)
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return fmt.Errorf("trustScore %v overflows an integer score", f)
	}
	s.TrustScore = int(f)
	return nil
}

// ScoreBreakdown holds the five named sub-scores, each 0-100
type ScoreBreakdown struct {
	IncomeStability    float64 `json:"incomeStability"`
	SpendingDiscipline float64 `json:"spendingDiscipline"`
	SavingsBehavior    float64 `json:"savingsBehavior"`
	PaymentConsistency float64 `json:"paymentConsistency"`
	AccountHealth      float64 `json:"accountHealth"`
}

// Named returns the sub-scores keyed by their wire names, in display order
func (b ScoreBreakdown) Named() []NamedScore {
	return []NamedScore{
		{Name: "incomeStability", Value: b.IncomeStability},
		{Name: "spendingDiscipline", Value: b.SpendingDiscipline},
		{Name: "savingsBehavior", Value: b.SavingsBehavior},
		{Name: "paymentConsistency", Value: b.PaymentConsistency},
		{Name: "accountHealth", Value: b.AccountHealth},
	}
}

// NamedScore pairs a sub-score with its name
type NamedScore struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// ImprovementSuggestions explains the score and how to raise it
type ImprovementSuggestions struct {
	WhyThisScore     string   `json:"whyThisScore"`
	Factors          []Factor `json:"factors"`
	ActionableAdvice []Advice `json:"actionableAdvice"`
}

// Factor is a single behaviour that moved the score
type Factor struct {
	Factor string `json:"factor"`
	Impact string `json:"impact"`
	Detail string `json:"detail"`
}

// Advice is a suggested action with its estimated effect
type Advice struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	PotentialImpact string `json:"potentialImpact"`
}

// EffectiveCreditLimit returns the approved limit when the breakdown carries one,
// otherwise the recommended limit
func (r *TrustScoreReport) EffectiveCreditLimit() float64 {
	if r.CreditLimitBreakdown != nil && r.CreditLimitBreakdown.ApprovedLimit > 0 {
		return r.CreditLimitBreakdown.ApprovedLimit
	}
	return r.RecommendedCreditLimit
}

// RepaymentCapacity returns the monthly repayment capacity when the oracle reported one
func (r *TrustScoreReport) RepaymentCapacity() (float64, bool) {
	if r.CreditLimitBreakdown == nil || r.CreditLimitBreakdown.RepaymentCapacity <= 0 {
		return 0, false
	}
	return r.CreditLimitBreakdown.RepaymentCapacity, true
}
