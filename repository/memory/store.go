// Package memory keeps users, tasks and sessions in process memory. It backs
// the "memory" storage driver and the test suites.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/repository"
)

type taskEntry struct {
	task domain.Task
	seq  uint64
}

// Store holds users and their tasks. Tasks are indexed by owner so deleting a
// user removes its tasks in the same critical section.
type Store struct {
	mu        sync.RWMutex
	now       func() time.Time
	seq       uint64
	users     map[string]domain.User
	usernames map[string]string
	tasks     map[string]*taskEntry
	byOwner   map[string]map[string]struct{}
}

func NewStore() *Store {
	return &Store{
		now:       time.Now,
		users:     make(map[string]domain.User),
		usernames: make(map[string]string),
		tasks:     make(map[string]*taskEntry),
		byOwner:   make(map[string]map[string]struct{}),
	}
}

// WithClock replaces the timestamp source.
func (s *Store) WithClock(now func() time.Time) *Store {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *Store) Users() repository.UserRepository { return userRepository{s} }

func (s *Store) Tasks() repository.TaskRepository { return taskRepository{s} }

type userRepository struct{ s *Store }

func (r userRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &user, nil
}

func (r userRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.usernames[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user := r.s.users[id]
	return &user, nil
}

func (r userRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.usernames[username]
	return ok, nil
}

func (r userRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.usernames[user.Username]; taken {
		return nil, domain.ErrUsernameTaken
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.s.now()
	}
	r.s.users[user.ID] = *user
	r.s.usernames[user.Username] = user.ID
	return user, nil
}

func (r userRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	for taskID := range r.s.byOwner[id] {
		delete(r.s.tasks, taskID)
	}
	delete(r.s.byOwner, id)
	delete(r.s.usernames, user.Username)
	delete(r.s.users, id)
	return nil
}

type taskRepository struct{ s *Store }

func (r taskRepository) GetByID(_ context.Context, id string) (*domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	entry, ok := r.s.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return entry.task.Clone(), nil
}

func (r taskRepository) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	entries := r.s.matching(func(t *domain.Task) bool {
		return t.UserID == filter.UserID && (filter.Completed == nil || t.Completed == *filter.Completed)
	})
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.task.CreatedAt.Equal(b.task.CreatedAt) {
			return a.task.CreatedAt.After(b.task.CreatedAt)
		}
		return a.seq > b.seq
	})

	tasks := make([]domain.Task, 0, len(entries))
	for _, entry := range entries {
		tasks = append(tasks, *entry.task.Clone())
	}
	return tasks, nil
}

func (r taskRepository) Count(ctx context.Context, filter repository.TaskFilter) (int64, error) {
	tasks, err := r.List(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(tasks)), nil
}

func (r taskRepository) ListDueOn(_ context.Context, date time.Time) ([]domain.Task, error) {
	day := domain.DateOf(date)

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	entries := r.s.matching(func(t *domain.Task) bool {
		return !t.Completed && t.DueDate != nil && domain.DateOf(*t.DueDate).Equal(day)
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	tasks := make([]domain.Task, 0, len(entries))
	for _, entry := range entries {
		task := entry.task.Clone()
		task.OwnerUsername = r.s.users[task.UserID].Username
		tasks = append(tasks, *task)
	}
	return tasks, nil
}

func (r taskRepository) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil || task.UserID == "" {
		return nil, domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[task.UserID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = r.s.now()
	}
	r.s.seq++
	r.s.tasks[task.ID] = &taskEntry{task: *task.Clone(), seq: r.s.seq}
	if r.s.byOwner[task.UserID] == nil {
		r.s.byOwner[task.UserID] = make(map[string]struct{})
	}
	r.s.byOwner[task.UserID][task.ID] = struct{}{}
	return task, nil
}

func (r taskRepository) Update(_ context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	entry, ok := r.s.tasks[task.ID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	task.Touch(r.s.now())

	stored := task.Clone()
	stored.UserID = entry.task.UserID
	stored.CreatedAt = entry.task.CreatedAt
	stored.OwnerUsername = ""
	entry.task = *stored
	return nil
}

func (r taskRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	entry, ok := r.s.tasks[id]
	if !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.s.byOwner[entry.task.UserID], id)
	delete(r.s.tasks, id)
	return nil
}

// matching must be called with s.mu held.
func (s *Store) matching(keep func(*domain.Task) bool) []*taskEntry {
	var out []*taskEntry
	for _, entry := range s.tasks {
		if keep(&entry.task) {
			out = append(out, entry)
		}
	}
	return out
}
