package domain

import "time"

// DateLayout is the wire format of a task due date.
const DateLayout = "2006-01-02"

// Task represents a user-owned to-do item.
type Task struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Text      string     `json:"text"`
	Completed bool       `json:"completed"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	// OwnerUsername is only filled by due-date queries that join the owner.
	OwnerUsername string `json:"-"`
}

func (t *Task) IsOwnedBy(userID string) bool {
	return t != nil && userID != "" && t.UserID == userID
}

func (t *Task) Touch(now time.Time) {
	if t == nil {
		return
	}
	t.UpdatedAt = &now
}

// Clone returns a copy that shares no pointers with t.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	out := *t
	if t.DueDate != nil {
		due := *t.DueDate
		out.DueDate = &due
	}
	if t.UpdatedAt != nil {
		updated := *t.UpdatedAt
		out.UpdatedAt = &updated
	}
	return &out
}

// DateOf drops the clock part of t, keeping the calendar date as seen in t's location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD due date.
func ParseDate(value string) (time.Time, error) {
	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, WrapError(ErrCodeInvalid, ErrInvalidDate.Message, err)
	}
	return parsed, nil
}
