package repository

import (
	"context"
	"time"

	"github.com/fastygo/todo/domain"
)

// TaskFilter narrows task queries. A nil Completed matches both states.
type TaskFilter struct {
	UserID    string
	Completed *bool
}

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	// List returns matching tasks, most recently created first.
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Count(ctx context.Context, filter TaskFilter) (int64, error)
	// ListDueOn returns incomplete tasks due on the given date with OwnerUsername set.
	ListDueOn(ctx context.Context, date time.Time) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
}
