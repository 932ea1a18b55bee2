package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/trust-score-service/internal/calculator"
	"github.com/Dan9191/trust-score-service/internal/config"
	"github.com/Dan9191/trust-score-service/internal/models"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	s := &Sender{cfg: cfg, logger: logger}
	s.send = s.sendSMTP
	return s
}

func (s *Sender) sendSMTP(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	return e.Send(addr, auth)
}

// SendAnalysisSummary mails the headline numbers of a finished analysis
func (s *Sender) SendAnalysisSummary(to string, report *models.TrustScoreReport, snap *models.PersistedTrustSnapshot) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Your Trust Score: %d (%s)", snap.TrustScore, snap.TrustLevel)

	var body strings.Builder
	body.WriteString("Hello,\n\n")
	body.WriteString("Your bank statement analysis is ready.\n\n")
	fmt.Fprintf(&body, "Trust Score: %d / %d\n", snap.TrustScore, models.MaxTrustScore)
	fmt.Fprintf(&body, "Trust Level: %s\n", snap.TrustLevel)
	fmt.Fprintf(&body, "You are in the top %.0f%% of applicants.\n", calculator.TopPercent(snap.ScorePercentile))
	fmt.Fprintf(&body, "Credit Limit: INR %.0f\n", snap.CreditLimit)
	if snap.RepaymentCapacity != nil {
		fmt.Fprintf(&body, "Monthly Repayment Capacity: INR %.0f\n", *snap.RepaymentCapacity)
	}
	if report != nil && report.ScoreOverview.ScoreExplanation != "" {
		fmt.Fprintf(&body, "\n%s\n", report.ScoreOverview.ScoreExplanation)
	}
	if report != nil && len(report.ImprovementSuggestions.ActionableAdvice) > 0 {
		body.WriteString("\nHow to improve:\n")
		for _, a := range report.ImprovementSuggestions.ActionableAdvice {
			fmt.Fprintf(&body, "- %s: %s", a.Title, a.Description)
			if a.PotentialImpact != "" {
				fmt.Fprintf(&body, " (%s)", a.PotentialImpact)
			}
			body.WriteString("\n")
		}
	}
	body.WriteString("\nBest regards,\nCredzo")
	e.Text = []byte(body.String())

	if err := s.send(e); err != nil {
		s.logger.Errorf("Failed to send analysis summary to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
