package service

import (
	"errors"
	"sync"
	"time"

	"github.com/Dan9191/trust-score-service/internal/metrics"
	"github.com/Dan9191/trust-score-service/internal/repository"
	"github.com/Dan9191/trust-score-service/internal/store"
)

// State is a session's position in the analysis lifecycle
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateReporting
)

func (s State) String() string {
	switch s {
	case StateSubmitting:
		return "submitting"
	case StateReporting:
		return "reporting"
	default:
		return "idle"
	}
}

var (
	ErrAnalysisInProgress = errors.New("an analysis is already in progress for this session")
	ErrReportActive       = errors.New("a report is active for this session; reset it before analyzing again")
)

// Session holds one caller's analysis state and report store
type Session struct {
	ID    string
	Store *store.ReportStore

	mu       sync.Mutex
	state    State
	lastSeen time.Time
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// begin moves Idle to Submitting
func (s *Session) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateSubmitting:
		return ErrAnalysisInProgress
	case StateReporting:
		return ErrReportActive
	}
	s.state = StateSubmitting
	return nil
}

// finish leaves Submitting for Reporting on success, Idle otherwise
func (s *Session) finish(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ok {
		s.state = StateReporting
	} else {
		s.state = StateIdle
	}
}

// reset drops the in-memory report and returns to Idle. A running analysis
// cannot be reset.
func (s *Session) reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitting {
		return ErrAnalysisInProgress
	}
	s.Store.Reset()
	s.state = StateIdle
	return nil
}

// SessionRegistry creates sessions lazily and forgets idle ones
type SessionRegistry struct {
	repo repository.SnapshotRepository
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionRegistry initializes an empty registry
func NewSessionRegistry(repo repository.SnapshotRepository) *SessionRegistry {
	return &SessionRegistry{
		repo:     repo,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for id, creating it on first use, and marks it seen
func (r *SessionRegistry) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[id]
	if !ok {
		sess = &Session{ID: id, Store: store.NewReportStore(r.repo, id)}
		r.sessions[id] = sess
		metrics.ActiveSessions.Set(float64(len(r.sessions)))
	}
	sess.mu.Lock()
	sess.lastSeen = r.now()
	sess.mu.Unlock()
	return sess
}

// Len returns the number of sessions held in memory
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Evict drops sessions not seen for idleTTL. Sessions with an analysis in
// flight are kept. Snapshots are untouched.
func (r *SessionRegistry) Evict(idleTTL time.Duration) int {
	cutoff := r.now().Add(-idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, sess := range r.sessions {
		sess.mu.Lock()
		stale := sess.state != StateSubmitting && sess.lastSeen.Before(cutoff)
		sess.mu.Unlock()
		if stale {
			delete(r.sessions, id)
			evicted++
		}
	}
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	return evicted
}
