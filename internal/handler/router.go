package handler

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/trust-score-service/internal/config"
	"github.com/Dan9191/trust-score-service/internal/middleware"
)

// NewRouter wires public and session-protected routes
func NewRouter(h *Handler, cfg *config.Config, log *logrus.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(log))

	// Public routes
	r.HandleFunc("/sessions", h.CreateSession).Methods("POST")
	r.HandleFunc("/healthz", h.Health).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/analyze", h.Analyze).Methods("POST")
	authRouter.HandleFunc("/report", h.Report).Methods("GET")
	authRouter.HandleFunc("/analysis/reset", h.ResetAnalysis).Methods("POST")
	authRouter.HandleFunc("/snapshot", h.Snapshot).Methods("GET")
	authRouter.HandleFunc("/loan-offer", h.LoanOffer).Methods("GET")

	return r
}
