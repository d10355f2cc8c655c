package transport

import (
	"time"

	"github.com/fastygo/todo/domain"
)

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type UserView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type UserResponse struct {
	Success bool     `json:"success"`
	User    UserView `json:"user"`
}

type AuthCheckResponse struct {
	Authenticated bool      `json:"authenticated"`
	User          *UserView `json:"user,omitempty"`
}

type TodoView struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	Completed bool    `json:"completed"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt *string `json:"updatedAt,omitempty"`
	DueDate   *string `json:"dueDate,omitempty"`
}

type TodoListResponse struct {
	Success bool       `json:"success"`
	Todos   []TodoView `json:"todos"`
}

type TodoResponse struct {
	Success bool     `json:"success"`
	Todo    TodoView `json:"todo"`
}

type StatsResponse struct {
	Success   bool  `json:"success"`
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
	Pending   int64 `json:"pending"`
}

type HealthResponse struct {
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	Services  map[string]bool `json:"services"`
}

func NewUserView(user *domain.User) UserView {
	return UserView{ID: user.ID, Username: user.Username}
}

func NewTodoView(task *domain.Task) TodoView {
	view := TodoView{
		ID:        task.ID,
		Text:      task.Text,
		Completed: task.Completed,
		CreatedAt: task.CreatedAt.UTC().Format(time.RFC3339),
	}
	if task.UpdatedAt != nil {
		updated := task.UpdatedAt.UTC().Format(time.RFC3339)
		view.UpdatedAt = &updated
	}
	if task.DueDate != nil {
		due := task.DueDate.Format(domain.DateLayout)
		view.DueDate = &due
	}
	return view
}

func NewTodoViews(tasks []domain.Task) []TodoView {
	views := make([]TodoView, 0, len(tasks))
	for i := range tasks {
		views = append(views, NewTodoView(&tasks[i]))
	}
	return views
}
