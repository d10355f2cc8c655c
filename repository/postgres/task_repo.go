package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/repository"
)

const taskColumns = `t.id, t.user_id, t.text, t.completed, t.due_date, t.created_at, t.updated_at`

type taskRepository struct {
	pool DB
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool DB) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrTaskNotFound
	}
	query := `SELECT ` + taskColumns + ` FROM tasks t WHERE t.id = $1`
	return scanTask(r.pool.QueryRow(ctx, query, id))
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM tasks t
	WHERE t.user_id = $1
	  AND ($2::boolean IS NULL OR t.completed = $2)
	ORDER BY t.created_at DESC, t.id
	`
	rows, err := r.pool.Query(ctx, query, filter.UserID, filter.Completed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Count(ctx context.Context, filter repository.TaskFilter) (int64, error) {
	const query = `
	SELECT COUNT(*)
	FROM tasks
	WHERE user_id = $1
	  AND ($2::boolean IS NULL OR completed = $2)
	`
	var count int64
	if err := r.pool.QueryRow(ctx, query, filter.UserID, filter.Completed).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *taskRepository) ListDueOn(ctx context.Context, date time.Time) ([]domain.Task, error) {
	query := `
	SELECT ` + taskColumns + `, u.username
	FROM tasks t
	JOIN users u ON u.id = t.user_id
	WHERE t.due_date = $1::date
	  AND t.completed = FALSE
	ORDER BY t.created_at, t.id
	`
	due := domain.DateOf(date)
	rows, err := r.pool.Query(ctx, query, nullDate(&due))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		var (
			task     domain.Task
			username string
		)
		if err := rows.Scan(
			&task.ID,
			&task.UserID,
			&task.Text,
			&task.Completed,
			&task.DueDate,
			&task.CreatedAt,
			&task.UpdatedAt,
			&username,
		); err != nil {
			return nil, err
		}
		task.OwnerUsername = username
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil || task.UserID == "" {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, user_id, text, completed, due_date, created_at)
	VALUES ($1, $2, $3, $4, $5::date, COALESCE($6, NOW()))
	RETURNING created_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.UserID,
		task.Text,
		task.Completed,
		nullDate(task.DueDate),
		nullTime(task.CreatedAt),
	).Scan(&task.CreatedAt); err != nil {
		return nil, err
	}

	return task, nil
}

// Update never touches user_id: ownership is fixed at creation.
func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	if _, err := uuid.Parse(task.ID); err != nil {
		return domain.ErrTaskNotFound
	}

	const query = `
	UPDATE tasks
	SET text = $2,
		completed = $3,
		due_date = $4::date,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`

	var updated time.Time
	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Text,
		task.Completed,
		nullDate(task.DueDate),
	).Scan(&updated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return err
	}
	task.UpdatedAt = &updated

	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrTaskNotFound
	}
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func scanTask(row scanner) (*domain.Task, error) {
	var task domain.Task
	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Text,
		&task.Completed,
		&task.DueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}
