package domain

import "time"

// User represents a registered account that owns tasks.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

func (u *User) Touch(now time.Time) {
	if u == nil {
		return
	}
	u.UpdatedAt = &now
}
