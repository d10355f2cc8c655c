package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/repository"
)

const taskID = "0c9e6a4d-2b1f-4f7a-8d3e-5a6b7c8d9e01"

var taskRowColumns = []string{"id", "user_id", "text", "completed", "due_date", "created_at", "updated_at"}

func TestTaskRepository_ListFiltersAndOrders(t *testing.T) {
	newer := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	older := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	done := true

	cases := []struct {
		name      string
		completed *bool
	}{
		{name: "all", completed: nil},
		{name: "completed only", completed: &done},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mock := newMock(t)
			repo := NewTaskRepository(mock)

			mock.ExpectQuery(
				regexp.QuoteMeta("AND ($2::boolean IS NULL OR t.completed = $2)") + `\s+` +
					regexp.QuoteMeta("ORDER BY t.created_at DESC, t.id"),
			).
				WithArgs(userID, tc.completed).
				WillReturnRows(pgxmock.NewRows(taskRowColumns).
					AddRow(taskID, userID, "newer", true, (*time.Time)(nil), newer, (*time.Time)(nil)).
					AddRow("b", userID, "older", true, (*time.Time)(nil), older, (*time.Time)(nil)))

			tasks, err := repo.List(context.Background(), repository.TaskFilter{UserID: userID, Completed: tc.completed})
			require.NoError(t, err)
			require.Len(t, tasks, 2)
			assert.Equal(t, "newer", tasks[0].Text)
			assert.Equal(t, "older", tasks[1].Text)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTaskRepository_ListEmptyIsNotNil(t *testing.T) {
	mock := newMock(t)
	repo := NewTaskRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("FROM tasks t")).
		WithArgs(userID, (*bool)(nil)).
		WillReturnRows(pgxmock.NewRows(taskRowColumns))

	tasks, err := repo.List(context.Background(), repository.TaskFilter{UserID: userID})
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestTaskRepository_Count(t *testing.T) {
	mock := newMock(t)
	repo := NewTaskRepository(mock)
	open := false

	mock.ExpectQuery(regexp.QuoteMeta("($2::boolean IS NULL OR completed = $2)")).
		WithArgs(userID, &open).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))

	count, err := repo.Count(context.Background(), repository.TaskFilter{UserID: userID, Completed: &open})
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ListDueOnFillsOwner(t *testing.T) {
	mock := newMock(t)
	repo := NewTaskRepository(mock)
	due := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	created := due.Add(-48 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("JOIN users u ON u.id = t.user_id")).
		WithArgs(due).
		WillReturnRows(pgxmock.NewRows(append(taskRowColumns, "username")).
			AddRow(taskID, userID, "file taxes", false, &due, created, (*time.Time)(nil), "alice"))

	tasks, err := repo.ListDueOn(context.Background(), due.Add(17*time.Hour))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "alice", tasks[0].OwnerUsername)
	assert.Equal(t, "file taxes", tasks[0].Text)
	require.NotNil(t, tasks[0].DueDate)
	assert.True(t, due.Equal(*tasks[0].DueDate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_MalformedIDIsNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewTaskRepository(mock)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "42")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	err = repo.Update(ctx, &domain.Task{ID: "42", Text: "x"})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	err = repo.Delete(ctx, "42")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	assert.NoError(t, mock.ExpectationsWereMet(), "no query may reach the database")
}

func TestTaskRepository_GetByIDMissing(t *testing.T) {
	mock := newMock(t)
	repo := NewTaskRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE t.id = $1")).
		WithArgs(taskID).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), taskID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_UpdateMissing(t *testing.T) {
	mock := newMock(t)
	repo := NewTaskRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE tasks")).
		WithArgs(taskID, "renamed", true, nil).
		WillReturnError(pgx.ErrNoRows)

	err := repo.Update(context.Background(), &domain.Task{ID: taskID, Text: "renamed", Completed: true})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_UpdateStampsUpdatedAt(t *testing.T) {
	mock := newMock(t)
	repo := NewTaskRepository(mock)
	stamp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("RETURNING updated_at")).
		WithArgs(taskID, "renamed", false, nil).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(stamp))

	task := &domain.Task{ID: taskID, Text: "renamed"}
	require.NoError(t, repo.Update(context.Background(), task))
	require.NotNil(t, task.UpdatedAt)
	assert.Equal(t, stamp, *task.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_DeleteMissing(t *testing.T) {
	mock := newMock(t)
	repo := NewTaskRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks WHERE id = $1")).
		WithArgs(taskID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), taskID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
