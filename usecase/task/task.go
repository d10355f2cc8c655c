package task

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/repository"
)

// MaxTextLength is the longest accepted task text, counted in characters after trimming.
const MaxTextLength = 255

var (
	ErrTextRequired = domain.Invalid("todo text is required")
	ErrTextTooLong  = domain.Invalid(fmt.Sprintf("todo text must be %d characters or fewer", MaxTextLength))
)

// StatusFilter selects tasks by completion state.
type StatusFilter string

const (
	FilterAll       StatusFilter = "all"
	FilterCompleted StatusFilter = "completed"
	FilterPending   StatusFilter = "pending"
)

// ParseStatusFilter maps a query value to a filter; anything unknown means all.
func ParseStatusFilter(value string) StatusFilter {
	switch StatusFilter(strings.ToLower(strings.TrimSpace(value))) {
	case FilterCompleted:
		return FilterCompleted
	case FilterPending:
		return FilterPending
	default:
		return FilterAll
	}
}

func (f StatusFilter) completed() *bool {
	var v bool
	switch f {
	case FilterCompleted:
		v = true
	case FilterPending:
		v = false
	default:
		return nil
	}
	return &v
}

// Stats summarises a user's tasks.
type Stats struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
	Pending   int64 `json:"pending"`
}

type UseCase struct {
	tasks  repository.TaskRepository
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		logger: logger,
	}
}

// Create stores a new pending task for owner. dueDate must already be a parsed calendar date.
func (uc *UseCase) Create(ctx context.Context, text string, owner *domain.User, dueDate *time.Time) (*domain.Task, error) {
	if owner == nil || owner.ID == "" {
		return nil, domain.ErrUserNotFound
	}
	normalized, err := normalizeText(text)
	if err != nil {
		return nil, err
	}

	task := &domain.Task{
		UserID:    owner.ID,
		Text:      normalized,
		Completed: false,
		DueDate:   dateOnly(dueDate),
	}
	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return created, nil
}

func (uc *UseCase) ListByOwner(ctx context.Context, owner *domain.User, filter StatusFilter) ([]domain.Task, error) {
	if owner == nil {
		return nil, domain.ErrUserNotFound
	}
	return uc.tasks.List(ctx, repository.TaskFilter{UserID: owner.ID, Completed: filter.completed()})
}

func (uc *UseCase) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	return uc.tasks.GetByID(ctx, id)
}

// GetOwned loads a task and verifies that user owns it, before any mutation can happen.
func (uc *UseCase) GetOwned(ctx context.Context, id string, user *domain.User) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !uc.IsOwnedBy(task, user) {
		uc.logger.Warn("task access denied", zap.String("task_id", id))
		return nil, domain.ErrForbidden
	}
	return task, nil
}

func (uc *UseCase) UpdateText(ctx context.Context, task *domain.Task, text string) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}
	normalized, err := normalizeText(text)
	if err != nil {
		return nil, err
	}
	next := task.Clone()
	next.Text = normalized
	return uc.save(ctx, next)
}

// UpdateDueDate sets the due date, or clears it when dueDate is nil.
func (uc *UseCase) UpdateDueDate(ctx context.Context, task *domain.Task, dueDate *time.Time) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}
	next := task.Clone()
	next.DueDate = dateOnly(dueDate)
	return uc.save(ctx, next)
}

// ToggleCompleted flips the completion flag unconditionally.
func (uc *UseCase) ToggleCompleted(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}
	next := task.Clone()
	next.Completed = !next.Completed
	return uc.save(ctx, next)
}

// SetCompleted is the idempotent form of ToggleCompleted: nothing is written
// when the task already holds the requested value.
func (uc *UseCase) SetCompleted(ctx context.Context, task *domain.Task, completed bool) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}
	if task.Completed == completed {
		return task, nil
	}
	return uc.ToggleCompleted(ctx, task)
}

func (uc *UseCase) Delete(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrTaskNotFound
	}
	return uc.tasks.Delete(ctx, task.ID)
}

// IsOwnedBy compares the task owner with the user's identifier.
func (uc *UseCase) IsOwnedBy(task *domain.Task, user *domain.User) bool {
	return user != nil && task.IsOwnedBy(user.ID)
}

func (uc *UseCase) CountByOwner(ctx context.Context, owner *domain.User) (int64, error) {
	if owner == nil {
		return 0, domain.ErrUserNotFound
	}
	return uc.tasks.Count(ctx, repository.TaskFilter{UserID: owner.ID})
}

func (uc *UseCase) CountByOwnerAndStatus(ctx context.Context, owner *domain.User, completed bool) (int64, error) {
	if owner == nil {
		return 0, domain.ErrUserNotFound
	}
	return uc.tasks.Count(ctx, repository.TaskFilter{UserID: owner.ID, Completed: &completed})
}

func (uc *UseCase) Stats(ctx context.Context, owner *domain.User) (Stats, error) {
	var (
		stats Stats
		err   error
	)
	if stats.Total, err = uc.CountByOwner(ctx, owner); err != nil {
		return Stats{}, err
	}
	if stats.Completed, err = uc.CountByOwnerAndStatus(ctx, owner, true); err != nil {
		return Stats{}, err
	}
	if stats.Pending, err = uc.CountByOwnerAndStatus(ctx, owner, false); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

// DueOn lists incomplete tasks of every user due on the given calendar date.
func (uc *UseCase) DueOn(ctx context.Context, date time.Time) ([]domain.Task, error) {
	return uc.tasks.ListDueOn(ctx, domain.DateOf(date))
}

func (uc *UseCase) save(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

// ValidateText returns the trimmed text or the validation error Create and
// UpdateText would report.
func ValidateText(text string) (string, error) {
	return normalizeText(text)
}

func normalizeText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", ErrTextRequired
	}
	if utf8.RuneCountInString(trimmed) > MaxTextLength {
		return "", ErrTextTooLong
	}
	return trimmed, nil
}

func dateOnly(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := domain.DateOf(*t)
	return &d
}
