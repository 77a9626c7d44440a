package utils

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"lostluggage/models"
)

const SessionCookie = "session_token"

var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists sessions keyed by their token.
type SessionStore interface {
	Get(ctx context.Context, token string) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	Delete(ctx context.Context, token string) error
}

func CookieExists(r *http.Request, name string) bool {
	st, err := r.Cookie(name)
	return err == nil && st.Value != ""
}

// GetUserAgent returns the User-Agent string from the request
func GetUserAgent(r *http.Request) string {
	return r.Header.Get("User-Agent")
}

// GetIP returns the IP address of the client from the request
func GetIP(r *http.Request) string {
	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		ip = r.RemoteAddr
	}
	return ip
}

// NewSession builds an anonymous session with fresh session and CSRF tokens.
func NewSession(r *http.Request, ttl time.Duration) *models.Session {
	now := time.Now().UTC()
	return &models.Session{
		SessionToken: GenerateToken(32),
		CSRFToken:    GenerateToken(32),
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
		LastActivity: now,
		UserAgent:    GetUserAgent(r),
		IPAddress:    GetIP(r),
	}
}

// SetSessionCookie writes the session cookie. An empty token clears it.
func SetSessionCookie(w http.ResponseWriter, s *models.Session, secure bool) {
	c := &http.Cookie{
		Name:     SessionCookie,
		Value:    s.SessionToken,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		Expires:  s.ExpiresAt,
	}
	if s.SessionToken == "" {
		c.MaxAge = -1
	}
	http.SetCookie(w, c)
}

// MemorySessionStore keeps sessions in process memory. Used when no Redis URL
// is configured and in tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]models.Session),
		now:      time.Now,
	}
}

func (m *MemorySessionStore) Get(_ context.Context, token string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !m.now().Before(s.ExpiresAt) {
		delete(m.sessions, token)
		return nil, ErrSessionNotFound
	}
	s.Flashes = append([]models.Flash(nil), s.Flashes...)
	return &s, nil
}

func (m *MemorySessionStore) Save(_ context.Context, s *models.Session) error {
	if s.SessionToken == "" {
		return errors.New("session has no token")
	}
	cp := *s
	cp.Flashes = append([]models.Flash(nil), s.Flashes...)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.SessionToken] = cp
	return nil
}

func (m *MemorySessionStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

// Sweep drops expired sessions and returns how many were removed.
func (m *MemorySessionStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	n := 0
	for token, s := range m.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(m.sessions, token)
			n++
		}
	}
	return n
}

// Len reports the number of stored sessions, expired ones included.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
