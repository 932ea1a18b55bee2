package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/trust-score-service/internal/calculator"
	"github.com/Dan9191/trust-score-service/internal/metrics"
	"github.com/Dan9191/trust-score-service/internal/models"
)

// LoanService turns the latest snapshot into a bounded loan offer
type LoanService struct {
	registry *SessionRegistry
	log      *logrus.Logger
}

// NewLoanService initializes a loan service
func NewLoanService(registry *SessionRegistry, log *logrus.Logger) *LoanService {
	return &LoanService{registry: registry, log: log}
}

// Offer prices a loan against the session's credit limit. The requested
// principal is clamped to the limit, raised to the policy minimum and snapped
// down to the slider step.
func (l *LoanService) Offer(ctx context.Context, sessionID string, requested float64, tenure int) (*models.LoanOffer, error) {
	if !calculator.ValidTenure(tenure) {
		return nil, fmt.Errorf("%w: tenure %d outside %d-%d months",
			calculator.ErrInvalidLoanTerms, tenure, calculator.MinTenureMonths, calculator.MaxTenureMonths)
	}

	snap, ok, err := l.registry.Get(sessionID).Store.ReadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &models.LoanOffer{HasAnalysis: false}, nil
	}

	offer := &models.LoanOffer{
		HasAnalysis:       true,
		CreditLimit:       snap.CreditLimit,
		RequestedAmount:   requested,
		RepaymentCapacity: snap.RepaymentCapacity,
	}
	bounds, eligible := calculator.SliderBounds(snap.CreditLimit)
	if !eligible {
		return offer, nil
	}
	offer.Eligible = true
	offer.Bounds = &bounds

	principal := calculator.SnapPrincipal(calculator.ClampPrincipal(requested, snap.CreditLimit), snap.CreditLimit)
	quote, err := calculator.Quote(principal, tenure)
	if err != nil {
		return nil, err
	}
	schedule, err := calculator.Schedule(principal, tenure, quote.MonthlyRate)
	if err != nil {
		return nil, err
	}
	quote.Schedule = schedule
	offer.Quote = quote
	metrics.LoanQuotes.Inc()

	if snap.RepaymentCapacity != nil {
		affordable := quote.EMI <= *snap.RepaymentCapacity
		offer.Affordable = &affordable
	}

	l.log.WithFields(logrus.Fields{
		"session":   sessionID,
		"principal": principal,
		"tenure":    tenure,
		"emi":       quote.EMI,
	}).Debug("Loan quote computed")
	return offer, nil
}
