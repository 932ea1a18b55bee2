package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Dan9191/trust-score-service/internal/models"
)

// ErrMalformedResponse is matched by every *MalformedResponseError
var ErrMalformedResponse = errors.New("malformed oracle response")

// Warning codes
const (
	WarnBreakdownMissing     = "CREDIT_LIMIT_BREAKDOWN_MISSING"
	WarnApprovedLimitMissing = "APPROVED_LIMIT_MISSING"
	WarnApprovedAboveMax     = "APPROVED_LIMIT_ABOVE_MAX"
	WarnScoreOutOfRange      = "TRUST_SCORE_OUT_OF_RANGE"
	WarnSubScoreOutOfRange   = "SUB_SCORE_OUT_OF_RANGE"
	WarnPercentileOutOfRange = "PERCENTILE_OUT_OF_RANGE"
	WarnUnknownTrustLevel    = "UNKNOWN_TRUST_LEVEL"
	WarnUnknownRiskLevel     = "UNKNOWN_RISK_LEVEL"
	WarnUnknownImpact        = "UNKNOWN_IMPACT"
	WarnUnknownConfidence    = "UNKNOWN_CONFIDENCE_LEVEL"
	WarnCategorySum          = "CATEGORY_PERCENTAGE_SUM"
	WarnNullList             = "NULL_LIST"
)

// CategorySumTolerance is how far category percentages may drift from 100
const CategorySumTolerance = 2.0

// Warning describes a non-fatal problem in an otherwise usable report
type Warning struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result carries the decoded report and everything that looked wrong with it
type Result struct {
	Report   *models.TrustScoreReport
	Warnings []Warning
}

// MalformedResponseError keeps the raw oracle text for diagnostics
type MalformedResponseError struct {
	Raw        string
	Reason     string
	Violations []string
}

func (e *MalformedResponseError) Error() string {
	if len(e.Violations) == 0 {
		return fmt.Sprintf("malformed oracle response: %s", e.Reason)
	}
	return fmt.Sprintf("malformed oracle response: %s (%d violations)", e.Reason, len(e.Violations))
}

func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

// Validator checks oracle output against the report schema
type Validator struct {
	schema *gojsonschema.Schema
}

// New compiles the report schema
func New() (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(reportSchema))
	if err != nil {
		return nil, fmt.Errorf("compile report schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate extracts, checks and decodes a report from raw oracle text.
func (v *Validator) Validate(raw string) (*Result, error) {
	body, ok := extractObject(raw)
	if !ok {
		return nil, &MalformedResponseError{Raw: raw, Reason: "no JSON object found"}
	}
	if !json.Valid([]byte(body)) {
		return nil, &MalformedResponseError{Raw: raw, Reason: "extracted text is not valid JSON"}
	}

	res, err := v.schema.Validate(gojsonschema.NewStringLoader(body))
	if err != nil {
		return nil, &MalformedResponseError{Raw: raw, Reason: fmt.Sprintf("schema check failed: %v", err)}
	}
	if !res.Valid() {
		violations := make([]string, len(res.Errors()))
		for i, desc := range res.Errors() {
			violations[i] = desc.String()
		}
		return nil, &MalformedResponseError{Raw: raw, Reason: "report does not match schema", Violations: violations}
	}

	var report models.TrustScoreReport
	if err := json.Unmarshal([]byte(body), &report); err != nil {
		return nil, &MalformedResponseError{Raw: raw, Reason: fmt.Sprintf("decode report: %v", err)}
	}

	c := &checker{}
	c.fillLists(&report)
	c.checkBreakdown(&report)
	c.checkRanges(&report)
	c.checkEnums(&report)
	c.checkCategories(&report)

	return &Result{Report: &report, Warnings: c.warnings}, nil
}

type checker struct {
	warnings []Warning
}

func (c *checker) warn(code, field, format string, args ...any) {
	c.warnings = append(c.warnings, Warning{Code: code, Field: field, Message: fmt.Sprintf(format, args...)})
}

func (c *checker) fillLists(r *models.TrustScoreReport) {
	if r.ImprovementSuggestions.Factors == nil {
		r.ImprovementSuggestions.Factors = []models.Factor{}
		c.warn(WarnNullList, "improvementSuggestions.factors", "list missing, using empty list")
	}
	if r.ImprovementSuggestions.ActionableAdvice == nil {
		r.ImprovementSuggestions.ActionableAdvice = []models.Advice{}
		c.warn(WarnNullList, "improvementSuggestions.actionableAdvice", "list missing, using empty list")
	}
	if r.SpendingAnalysis.Categories == nil {
		r.SpendingAnalysis.Categories = []models.SpendingCategory{}
		c.warn(WarnNullList, "spendingAnalysis.categories", "list missing, using empty list")
	}
	if r.AIInsights.SpendingBehavior.Patterns == nil {
		r.AIInsights.SpendingBehavior.Patterns = []string{}
		c.warn(WarnNullList, "aiInsights.spendingBehavior.patterns", "list missing, using empty list")
	}
	t := &r.TrustFactorAnalysis
	if t.PositiveSignals == nil {
		t.PositiveSignals = []models.PositiveSignal{}
		c.warn(WarnNullList, "trustFactorAnalysis.positiveSignals", "list missing, using empty list")
	}
	if t.MissingSignals == nil {
		t.MissingSignals = []models.MissingSignal{}
		c.warn(WarnNullList, "trustFactorAnalysis.missingSignals", "list missing, using empty list")
	}
	if t.RiskFactors == nil {
		t.RiskFactors = []models.RiskFactor{}
		c.warn(WarnNullList, "trustFactorAnalysis.riskFactors", "list missing, using empty list")
	}
}

func (c *checker) checkBreakdown(r *models.TrustScoreReport) {
	b := r.CreditLimitBreakdown
	if b == nil {
		c.warn(WarnBreakdownMissing, "creditLimitBreakdown", "no breakdown, credit limit falls back to recommendedCreditLimit")
		return
	}
	if b.LimitFactors == nil {
		b.LimitFactors = []models.LimitFactor{}
	}
	if b.ApprovedLimit <= 0 {
		c.warn(WarnApprovedLimitMissing, "creditLimitBreakdown.approvedLimit",
			"approvedLimit %v is not positive, falling back to recommendedCreditLimit %v", b.ApprovedLimit, r.RecommendedCreditLimit)
	}
	if b.ApprovedLimit > 0 && b.MaxEligibleLimit > 0 && b.ApprovedLimit > b.MaxEligibleLimit {
		c.warn(WarnApprovedAboveMax, "creditLimitBreakdown.approvedLimit",
			"approvedLimit %v exceeds maxEligibleLimit %v", b.ApprovedLimit, b.MaxEligibleLimit)
	}
	if b.ConfidenceLevel != "" && !oneOf(b.ConfidenceLevel, models.ConfidenceLow, models.ConfidenceMedium, models.ConfidenceHigh) {
		c.warn(WarnUnknownConfidence, "creditLimitBreakdown.confidenceLevel", "unknown confidence level %q", b.ConfidenceLevel)
	}
	for i, f := range b.LimitFactors {
		if !oneOf(f.Impact, models.ImpactPositive, models.ImpactNegative, models.ImpactNeutral) {
			c.warn(WarnUnknownImpact, fmt.Sprintf("creditLimitBreakdown.limitFactors[%d].impact", i), "unknown impact %q", f.Impact)
		}
	}
}

func (c *checker) checkRanges(r *models.TrustScoreReport) {
	score := r.ScoreOverview.TrustScore
	if score < models.MinTrustScore || score > models.MaxTrustScore {
		c.warn(WarnScoreOutOfRange, "scoreOverview.trustScore", "trustScore %d outside %d-%d", score, models.MinTrustScore, models.MaxTrustScore)
	}
	for _, s := range r.ScoreOverview.ScoreBreakdown.Named() {
		if s.Value < models.MinSubScore || s.Value > models.MaxSubScore {
			c.warn(WarnSubScoreOutOfRange, "scoreOverview.scoreBreakdown."+s.Name, "%s %v outside %d-%d", s.Name, s.Value, models.MinSubScore, models.MaxSubScore)
		}
	}
	if p := r.ScorePercentile; p < models.MinPercentile || p > models.MaxPercentile {
		c.warn(WarnPercentileOutOfRange, "scorePercentile", "scorePercentile %v outside %d-%d", p, models.MinPercentile, models.MaxPercentile)
	}
}

func (c *checker) checkEnums(r *models.TrustScoreReport) {
	level := r.ScoreOverview.TrustLevel
	if !oneOf(level, models.TrustLevelLow, models.TrustLevelModerate, models.TrustLevelHigh, models.TrustLevelExcellent) {
		c.warn(WarnUnknownTrustLevel, "scoreOverview.trustLevel", "unknown trust level %q", level)
	}
	risk := r.AIInsights.RiskLevel
	if !oneOf(risk, models.RiskLevelLow, models.RiskLevelModerate, models.RiskLevelHigh) {
		c.warn(WarnUnknownRiskLevel, "aiInsights.riskLevel", "unknown risk level %q", risk)
	}
	for i, f := range r.ImprovementSuggestions.Factors {
		if !oneOf(f.Impact, models.ImpactPositive, models.ImpactNegative, models.ImpactNeutral) {
			c.warn(WarnUnknownImpact, fmt.Sprintf("improvementSuggestions.factors[%d].impact", i), "unknown impact %q", f.Impact)
		}
	}
}

func (c *checker) checkCategories(r *models.TrustScoreReport) {
	if len(r.SpendingAnalysis.Categories) == 0 {
		return
	}
	total := r.SpendingAnalysis.PercentageTotal()
	if math.Abs(total-100) > CategorySumTolerance {
		c.warn(WarnCategorySum, "spendingAnalysis.categories", "category percentages sum to %.1f", total)
	}
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
