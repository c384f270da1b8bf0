package middleware

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kozaktomas/photo-report/internal/session"
)

type contextKey string

const reportSessionContextKey contextKey = "report_session"

// ReportSession is one report being assembled through the API.
type ReportSession struct {
	ID        string
	Session   *session.Session
	CreatedAt time.Time
	ExpiresAt time.Time
}

// SessionFactory builds the controller behind a new report session.
type SessionFactory func() (*session.Session, error)

// SessionRegistry keeps report sessions in memory until they expire.
// Every access extends the expiry by the TTL.
type SessionRegistry struct {
	factory  SessionFactory
	ttl      time.Duration
	sessions map[string]*ReportSession
	mu       sync.RWMutex
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewSessionRegistry creates a registry and starts its cleanup goroutine.
// Call Stop to end it.
func NewSessionRegistry(factory SessionFactory, ttl, cleanupInterval time.Duration) *SessionRegistry {
	r := &SessionRegistry{
		factory:  factory,
		ttl:      ttl,
		sessions: make(map[string]*ReportSession),
		stopCh:   make(chan struct{}),
	}
	go r.cleanupLoop(cleanupInterval)
	return r
}

// Create starts a new empty report session.
func (r *SessionRegistry) Create() (*ReportSession, error) {
	s, err := r.factory()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	rs := &ReportSession{
		ID:        uuid.NewString(),
		Session:   s,
		CreatedAt: now,
		ExpiresAt: now.Add(r.ttl),
	}

	r.mu.Lock()
	r.sessions[rs.ID] = rs
	r.mu.Unlock()
	return rs, nil
}

// Get returns a live session and extends its expiry, or nil.
func (r *SessionRegistry) Get(id string) *ReportSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	rs, ok := r.sessions[id]
	if !ok {
		return nil
	}
	now := time.Now()
	if now.After(rs.ExpiresAt) {
		delete(r.sessions, id)
		return nil
	}
	rs.ExpiresAt = now.Add(r.ttl)
	return rs
}

// Delete removes a session. Unknown IDs are ignored.
func (r *SessionRegistry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len returns the number of sessions, expired ones included until cleanup.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (r *SessionRegistry) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

func (r *SessionRegistry) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := r.removeExpired(time.Now()); n > 0 {
				log.Printf("Removed %d expired report sessions", n)
			}
		case <-r.stopCh:
			return
		}
	}
}

func (r *SessionRegistry) removeExpired(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, rs := range r.sessions {
		if now.After(rs.ExpiresAt) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// WithReportSession is middleware that resolves the {sid} URL parameter and
// adds the session to the context. Unknown or expired sessions get a 404.
func WithReportSession(registry *SessionRegistry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rs := registry.Get(chi.URLParam(r, "sid"))
			if rs == nil {
				w.Header().Set("Content-Type", "application/json")
				http.Error(w, `{"error": "session not found"}`, http.StatusNotFound)
				return
			}
			ctx := context.WithValue(r.Context(), reportSessionContextKey, rs)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SetReportSessionInContext stores a session in ctx. Used by handler tests.
func SetReportSessionInContext(ctx context.Context, rs *ReportSession) context.Context {
	return context.WithValue(ctx, reportSessionContextKey, rs)
}

// GetReportSessionFromContext returns the session added by WithReportSession, or nil.
func GetReportSessionFromContext(ctx context.Context) *ReportSession {
	rs, ok := ctx.Value(reportSessionContextKey).(*ReportSession)
	if !ok {
		return nil
	}
	return rs
}

// MustGetReportSession retrieves the session from context.
// If not available, writes an error response and returns nil.
// Handlers should return immediately after receiving nil.
func MustGetReportSession(ctx context.Context, w http.ResponseWriter) *session.Session {
	rs := GetReportSessionFromContext(ctx)
	if rs == nil {
		http.Error(w, `{"error": "report session not available"}`, http.StatusInternalServerError)
		return nil
	}
	return rs.Session
}
