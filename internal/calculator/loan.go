package calculator

import (
	"errors"
	"fmt"
	"math"

	"github.com/Dan9191/trust-score-service/internal/models"
)

// Loan policy
const (
	MonthlyRate     = 0.015
	MinPrincipal    = 1000.0
	PrincipalStep   = 500.0
	MinTenureMonths = 1
	MaxTenureMonths = 12

	DefaultPrincipal    = 5000.0
	DefaultTenureMonths = 3
)

var ErrInvalidLoanTerms = errors.New("invalid loan terms")

// AmortizedEMI returns the rounded equated monthly instalment
// P*r*(1+r)^n / ((1+r)^n - 1), or P/n when the rate is zero.
func AmortizedEMI(principal float64, tenure int, rate float64) (float64, error) {
	raw, err := rawEMI(principal, tenure, rate)
	if err != nil {
		return 0, err
	}
	return math.Round(raw), nil
}

func rawEMI(principal float64, tenure int, rate float64) (float64, error) {
	if principal <= 0 || tenure < 1 || rate < 0 || math.IsNaN(principal) || math.IsInf(principal, 0) {
		return 0, fmt.Errorf("%w: principal=%v tenure=%d rate=%v", ErrInvalidLoanTerms, principal, tenure, rate)
	}
	if rate == 0 {
		return principal / float64(tenure), nil
	}
	growth := math.Pow(1+rate, float64(tenure))
	return principal * rate * growth / (growth - 1), nil
}

// Quote prices a loan at the policy rate
func Quote(principal float64, tenure int) (*models.LoanQuote, error) {
	return QuoteWith(principal, tenure, MonthlyRate)
}

// QuoteWith prices a loan; totalPayable is the rounded EMI times the tenure.
func QuoteWith(principal float64, tenure int, rate float64) (*models.LoanQuote, error) {
	emi, err := AmortizedEMI(principal, tenure, rate)
	if err != nil {
		return nil, err
	}
	total := emi * float64(tenure)
	return &models.LoanQuote{
		Principal:    principal,
		TenureMonths: tenure,
		MonthlyRate:  rate,
		EMI:          emi,
		TotalPayable: total,
		Interest:     total - principal,
	}, nil
}

// Schedule builds the month-by-month amortization table. Every row pays the
// rounded EMI except the last, which settles the remaining balance exactly.
func Schedule(principal float64, tenure int, rate float64) ([]models.PaymentScheduleEntry, error) {
	emi, err := AmortizedEMI(principal, tenure, rate)
	if err != nil {
		return nil, err
	}

	rows := make([]models.PaymentScheduleEntry, 0, tenure)
	balance := principal
	for month := 1; month <= tenure; month++ {
		interest := round2(balance * rate)
		payment := emi
		if month == tenure {
			payment = round2(balance + interest)
		}
		principalPart := round2(payment - interest)
		balance = round2(balance - principalPart)
		if month == tenure {
			balance = 0
		}
		rows = append(rows, models.PaymentScheduleEntry{
			Month:     month,
			Payment:   payment,
			Principal: principalPart,
			Interest:  interest,
			Balance:   balance,
		})
	}
	return rows, nil
}

// ClampPrincipal bounds a requested principal by the known credit limit
func ClampPrincipal(requested, limit float64) float64 {
	return math.Min(requested, limit)
}

// SliderBounds returns the loan amount slider range for a credit limit. The
// minimum is policy, not derived from the report; ok is false when the limit
// is below it.
func SliderBounds(limit float64) (models.SliderBounds, bool) {
	b := models.SliderBounds{Min: MinPrincipal, Max: limit, Step: PrincipalStep}
	return b, limit >= MinPrincipal
}

// SnapPrincipal raises a principal to the policy minimum and rounds it down
// to the slider step, never exceeding ceiling.
func SnapPrincipal(principal, ceiling float64) float64 {
	p := math.Min(principal, ceiling)
	if p < MinPrincipal {
		p = MinPrincipal
	}
	return MinPrincipal + math.Floor((p-MinPrincipal)/PrincipalStep)*PrincipalStep
}

// ValidTenure reports whether a tenure is within policy
func ValidTenure(tenure int) bool {
	return tenure >= MinTenureMonths && tenure <= MaxTenureMonths
}

// TopPercent converts a population percentile into the "top X%" figure shown
// to users.
func TopPercent(scorePercentile float64) float64 {
	return 100 - scorePercentile
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
