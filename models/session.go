package models

import "time"

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Session struct for storing session data
type Session struct {
	SessionToken string    `json:"session_token"`
	UserID       int64     `json:"user_id"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	LastActivity time.Time `json:"last_activity"`
	CSRFToken    string    `json:"csrf_token"`
	UserAgent    string    `json:"user_agent"`
	IPAddress    string    `json:"ip_address"`
	Flashes      []Flash   `json:"flashes"`
}

func (s *Session) IsAuthenticated() bool {
	return s != nil && s.UserID != 0
}

func (s *Session) HasRole(role Role) bool {
	return s.IsAuthenticated() && s.Role == role
}

func (s *Session) AddFlash(category, message string) {
	s.Flashes = append(s.Flashes, Flash{Category: category, Message: message})
}

// PopFlashes returns the pending flashes and clears them.
func (s *Session) PopFlashes() []Flash {
	f := s.Flashes
	s.Flashes = nil
	return f
}
