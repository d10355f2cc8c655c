package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/repository/memory"
	taskUC "github.com/fastygo/todo/usecase/task"
)

type recordingNotifier struct {
	enabled bool
	digests [][]domain.Task
}

func (n *recordingNotifier) Enabled() bool { return n.enabled }

func (n *recordingNotifier) SendDueTomorrowDigest(_ context.Context, tasks []domain.Task) {
	n.digests = append(n.digests, tasks)
}

func (n *recordingNotifier) SendTest(context.Context) {}

type failingSource struct{ panic bool }

func (f failingSource) DueOn(context.Context, time.Time) ([]domain.Task, error) {
	if f.panic {
		panic("boom")
	}
	return nil, errors.New("database unavailable")
}

var today = time.Date(2024, 12, 24, 9, 0, 0, 0, time.UTC)

func newReminder(t *testing.T, source DueTaskSource, notifier *recordingNotifier, logger *zap.Logger) *Reminder {
	t.Helper()
	r, err := NewReminder(source, notifier, logger, ReminderConfig{Hour: 9, Minute: 0, Location: time.UTC})
	require.NoError(t, err)
	r.now = func() time.Time { return today }
	return r
}

func seedTasks(t *testing.T) *taskUC.UseCase {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	alice, err := store.Users().Create(ctx, &domain.User{Username: "alice"})
	require.NoError(t, err)
	tasks := taskUC.New(store.Tasks(), nil)

	tomorrow := today.AddDate(0, 0, 1)
	for _, text := range []string{"pack bags", "print tickets"} {
		_, err := tasks.Create(ctx, text, alice, &tomorrow)
		require.NoError(t, err)
	}
	_, err = tasks.Create(ctx, "due today", alice, &today)
	require.NoError(t, err)
	return tasks
}

func TestReminder_SendsOnlyTomorrowsTasks(t *testing.T) {
	notifier := &recordingNotifier{enabled: true}
	r := newReminder(t, seedTasks(t), notifier, nil)

	r.CheckDueTomorrow(context.Background())

	require.Len(t, notifier.digests, 1)
	digest := notifier.digests[0]
	require.Len(t, digest, 2)
	assert.Equal(t, "pack bags", digest[0].Text)
	assert.Equal(t, "print tickets", digest[1].Text)
	for _, task := range digest {
		assert.Equal(t, "alice", task.OwnerUsername)
	}
}

func TestReminder_NothingDueMeansNoDispatch(t *testing.T) {
	notifier := &recordingNotifier{enabled: true}
	r := newReminder(t, taskUC.New(memory.NewStore().Tasks(), nil), notifier, nil)

	r.CheckDueTomorrow(context.Background())
	assert.Empty(t, notifier.digests)
}

func TestReminder_DisabledNotifierSkipsQuery(t *testing.T) {
	notifier := &recordingNotifier{enabled: false}
	r := newReminder(t, failingSource{panic: true}, notifier, nil)

	assert.NotPanics(t, func() { r.CheckDueTomorrow(context.Background()) })
	assert.Empty(t, notifier.digests)
}

func TestReminder_ContainsFailures(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	notifier := &recordingNotifier{enabled: true}

	r := newReminder(t, failingSource{}, notifier, zap.New(core))
	r.CheckDueTomorrow(context.Background())
	assert.Equal(t, 1, logs.FilterMessage("due-tomorrow query failed").Len())

	r = newReminder(t, failingSource{panic: true}, notifier, zap.New(core))
	assert.NotPanics(t, func() { r.CheckDueTomorrow(context.Background()) })
	assert.Equal(t, 1, logs.FilterMessage("due-tomorrow check panicked").Len())
	assert.Empty(t, notifier.digests)
}

func TestReminder_TomorrowUsesConfiguredLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	r, err := NewReminder(failingSource{}, &recordingNotifier{}, nil, ReminderConfig{Hour: 9, Location: tokyo})
	require.NoError(t, err)
	// 20:00 UTC on Dec 24 is already Dec 25 in Tokyo.
	r.now = func() time.Time { return time.Date(2024, 12, 24, 20, 0, 0, 0, time.UTC) }

	assert.Equal(t, "2024-12-26", r.Tomorrow().Format(domain.DateLayout))
}

func TestReminder_Spec(t *testing.T) {
	r, err := NewReminder(failingSource{}, &recordingNotifier{}, nil, ReminderConfig{Hour: 7, Minute: 30})
	require.NoError(t, err)
	assert.Equal(t, "30 7 * * *", r.Spec())

	_, err = NewReminder(failingSource{}, &recordingNotifier{}, nil, ReminderConfig{Hour: 24})
	assert.Error(t, err)
	_, err = NewReminder(failingSource{}, &recordingNotifier{}, nil, ReminderConfig{Minute: -1})
	assert.Error(t, err)
}

func TestReminder_StartStop(t *testing.T) {
	r, err := NewReminder(failingSource{}, &recordingNotifier{}, nil, ReminderConfig{Hour: 9})
	require.NoError(t, err)
	r.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r.Stop(ctx)
}

type countingPurger struct {
	calls int
	err   error
}

func (p *countingPurger) Purge(context.Context) (int, error) {
	p.calls++
	return 3, p.err
}

func TestSessionSweeper_Sweep(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	purger := &countingPurger{}
	s, err := NewSessionSweeper(purger, time.Minute, zap.New(core))
	require.NoError(t, err)

	s.Sweep(context.Background())
	assert.Equal(t, 1, purger.calls)
	assert.Equal(t, 1, logs.FilterMessage("expired sessions purged").Len())

	purger.err = errors.New("disk full")
	s.Sweep(context.Background())
	assert.Equal(t, 1, logs.FilterMessage("session purge failed").Len())
}

func TestSessionSweeper_Schedule(t *testing.T) {
	s, err := NewSessionSweeper(&countingPurger{}, 90*time.Second, nil)
	require.NoError(t, err)
	require.Len(t, s.cron.Entries(), 1)
	assert.Equal(t, 90*time.Second, s.interval)

	s.Start()
	s.Stop(context.Background())

	short, err := NewSessionSweeper(&countingPurger{}, time.Millisecond, nil)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, short.interval, "sub-second intervals fall back to hourly")
}
