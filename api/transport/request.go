package transport

import (
	"bytes"
	"encoding/json"
)

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CreateTodoRequest struct {
	Text    string `json:"text"`
	DueDate string `json:"dueDate"`
}

// UpdateTodoRequest carries a partial update; absent fields are left untouched.
type UpdateTodoRequest struct {
	Text      *string      `json:"text"`
	DueDate   OptionalDate `json:"dueDate"`
	Completed *bool        `json:"completed"`
}

// OptionalDate distinguishes an absent dueDate from an explicit null or "".
type OptionalDate struct {
	Set   bool
	Value string
}

func (d *OptionalDate) UnmarshalJSON(data []byte) error {
	d.Set = true
	if bytes.Equal(data, []byte("null")) {
		d.Value = ""
		return nil
	}
	return json.Unmarshal(data, &d.Value)
}
