package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/trust-score-service/internal/config"
)

// Service groups the operations the HTTP layer needs
type Service struct {
	Analysis *AnalysisService
	Loans    *LoanService
	registry *SessionRegistry
	log      *logrus.Logger
	config   *config.Config
}

// NewService initializes a new service
func NewService(analysis *AnalysisService, loans *LoanService, registry *SessionRegistry, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{Analysis: analysis, Loans: loans, registry: registry, log: log, config: cfg}
}

// CreateSession starts a new session and returns a signed token whose subject
// is the session id
func (s *Service) CreateSession() (string, string, error) {
	sessionID := uuid.NewString()
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.config.SessionTTL)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.registry.Get(sessionID)
	s.log.Infof("Session created: %s", sessionID)
	return tokenString, sessionID, nil
}
