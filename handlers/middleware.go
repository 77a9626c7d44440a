package handlers

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lostluggage/models"
	"lostluggage/utils"
)

type contextKey string

const (
	sessionKey   contextKey = "session"
	requestIDKey contextKey = "request_id"
)

// activityInterval limits how often a session is rewritten just to bump its
// last activity time.
const activityInterval = time.Minute

func currentSession(r *http.Request) *models.Session {
	if s, ok := r.Context().Value(sessionKey).(*models.Session); ok {
		return s
	}
	return &models.Session{}
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (a *App) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))

		a.logger.Info("request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

// loadSession attaches the visitor's session to the request context, starting
// an anonymous one when the cookie is missing or stale.
func (a *App) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var s *models.Session
		if utils.CookieExists(r, utils.SessionCookie) {
			st, _ := r.Cookie(utils.SessionCookie)
			var err error
			s, err = a.sessions.Get(r.Context(), st.Value)
			if err != nil && !errors.Is(err, utils.ErrSessionNotFound) {
				a.serverError(w, r, err)
				return
			}
		}

		if s == nil {
			s = utils.NewSession(r, a.sessionTTL)
			if err := a.sessions.Save(r.Context(), s); err != nil {
				a.serverError(w, r, err)
				return
			}
			utils.SetSessionCookie(w, s, a.secureCookies)
		} else if time.Since(s.LastActivity) > activityInterval {
			s.LastActivity = time.Now().UTC()
			if err := a.sessions.Save(r.Context(), s); err != nil {
				a.logger.Warn("update last activity", zap.Error(err))
			}
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, s)))
	})
}

// checkCSRF rejects state changing requests whose token does not match the
// session's.
func (a *App) checkCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		token := r.Header.Get("X-CSRF-Token")
		if token == "" {
			token = r.PostFormValue("csrf_token")
		}
		expected := currentSession(r).CSRFToken
		if token == "" || expected == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
			a.logger.Warn("csrf token mismatch",
				zap.String("request_id", requestID(r)),
				zap.String("path", r.URL.Path),
				zap.String("ip", utils.GetIP(r)))
			http.Error(w, "Invalid CSRF token", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireRole lets the request through only for a logged in user with the
// given role. Everyone else is bounced to redirectTo with a notice.
func (a *App) requireRole(role models.Role, redirectTo string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := currentSession(r)
		if !s.HasRole(role) {
			a.logger.Info("unauthorized access",
				zap.String("request_id", requestID(r)),
				zap.String("path", r.URL.Path),
				zap.Int64("user_id", s.UserID),
				zap.String("role", string(s.Role)))
			a.flash(r, "danger", "Unauthorized access!")
			a.redirect(w, r, redirectTo)
			return
		}
		next(w, r)
	}
}
