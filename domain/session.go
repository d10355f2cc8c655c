package domain

import "time"

// Session is the server-side state behind a session cookie.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Session) IsExpired(reference time.Time) bool {
	if s == nil {
		return true
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !s.ExpiresAt.After(reference)
}

// Remaining reports how long the session stays valid after reference.
func (s *Session) Remaining(reference time.Time) time.Duration {
	if s == nil {
		return 0
	}
	return s.ExpiresAt.Sub(reference)
}
