package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tusing/reddit-ffn-bot/internal/dedupe"
)

type scriptedPasser struct {
	steps []func(ctx context.Context) error
	calls int
}

func (p *scriptedPasser) Pass(ctx context.Context) error {
	step := p.steps[p.calls]
	p.calls++
	return step(ctx)
}

type countingStore struct {
	mu    sync.Mutex
	saves int
	err   error
}

func (s *countingStore) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	return s.err
}

func (s *countingStore) Len() int {
	return 0
}

func noSleep(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}

func TestRunStopsOnCancelAndFlushes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	passer := &scriptedPasser{steps: []func(context.Context) error{
		func(context.Context) error { return nil },
		func(context.Context) error { cancel(); return nil },
	}}
	store := &countingStore{}
	r, err := New(passer, store, Config{Sleep: noSleep}, nil)
	require.NoError(t, err)

	err = r.Run(ctx)
	assert.ErrorIs(t, err, ErrStopped)
	assert.Equal(t, 0, ExitCode(err))
	assert.Equal(t, 2, passer.calls)
	assert.Equal(t, 3, store.saves, "one flush per pass plus the final flush")
}

func TestRunRecoversPanicsAndRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var delays []time.Duration
	passer := &scriptedPasser{steps: []func(context.Context) error{
		func(context.Context) error { panic("boom") },
		func(context.Context) error { return errors.New("fetch failed") },
		func(context.Context) error { cancel(); return nil },
	}}
	store := &countingStore{}
	r, err := New(passer, store, Config{
		ErrorDelay: time.Second,
		Sleep: func(ctx context.Context, d time.Duration) error {
			delays = append(delays, d)
			return nil
		},
	}, nil)
	require.NoError(t, err)

	require.ErrorIs(t, r.Run(ctx), ErrStopped)
	assert.Equal(t, 3, passer.calls)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, delays)
	assert.Equal(t, int64(2), r.failures.Load())
	assert.Equal(t, 4, store.saves)

	status := r.Status()
	assert.Equal(t, int64(3), status.Passes)
	assert.Equal(t, int64(2), status.FailedPasses)
	assert.Equal(t, "fetch failed", status.LastFailure)
}

func TestRunReturnsStopErrorFromPass(t *testing.T) {
	passer := &scriptedPasser{steps: []func(context.Context) error{
		func(context.Context) error { return &StopError{Code: 3} },
	}}
	store := &countingStore{}
	r, err := New(passer, store, Config{Sleep: noSleep}, nil)
	require.NoError(t, err)

	err = r.Run(context.Background())
	var stop *StopError
	require.ErrorAs(t, err, &stop)
	assert.Equal(t, 3, stop.Code)
	assert.Equal(t, 3, ExitCode(err))
	assert.False(t, errors.Is(err, ErrStopped))
	assert.Equal(t, 2, store.saves)
}

func TestCanceledPassIsRetriedWhileRunning(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	passer := &scriptedPasser{steps: []func(context.Context) error{
		func(context.Context) error { return context.Canceled },
		func(context.Context) error { cancel(); return context.Canceled },
	}}
	r, err := New(passer, &countingStore{}, Config{Sleep: noSleep}, nil)
	require.NoError(t, err)

	require.ErrorIs(t, r.Run(ctx), ErrStopped)
	assert.Equal(t, 2, passer.calls)
	assert.Equal(t, int64(1), r.failures.Load())
}

func TestSaveFailureIsNotFatal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	passer := &scriptedPasser{steps: []func(context.Context) error{
		func(context.Context) error { return nil },
		func(context.Context) error { cancel(); return nil },
	}}
	store := &countingStore{err: errors.New("disk full")}
	r, err := New(passer, store, Config{Sleep: noSleep}, nil)
	require.NoError(t, err)

	require.ErrorIs(t, r.Run(ctx), ErrStopped)
	assert.Equal(t, 2, passer.calls)
}

func TestItemsHandledBeforeCrashSurviveRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CHECKED_COMMENTS.txt")
	store, err := dedupe.NewFileStore(path, false, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	passer := &scriptedPasser{steps: []func(context.Context) error{
		func(context.Context) error {
			store.Add("SUBMISSION_abc")
			store.Add("c1")
			panic("crash mid pass")
		},
		func(context.Context) error { cancel(); return nil },
	}}
	r, err := New(passer, store, Config{Sleep: noSleep}, nil)
	require.NoError(t, err)
	require.ErrorIs(t, r.Run(ctx), ErrStopped)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"SUBMISSION_abc", "c1"}, strings.Fields(string(data)))

	reopened, err := dedupe.NewFileStore(path, false, nil)
	require.NoError(t, err)
	assert.True(t, reopened.Contains("SUBMISSION_abc"))
	assert.True(t, reopened.Contains("c1"))
}

func TestNewValidatesStatusSchedule(t *testing.T) {
	_, err := New(&scriptedPasser{}, &countingStore{}, Config{StatusSchedule: "not a schedule"}, nil)
	require.Error(t, err)

	r, err := New(&scriptedPasser{}, &countingStore{}, Config{StatusSchedule: "@every 10m"}, nil)
	require.NoError(t, err)
	stop := r.startStatus()
	r.reportStatus()
	stop()
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 0, ExitCode(ErrStopped))
	assert.Equal(t, 1, ExitCode(errors.New("login failed")))
	assert.Equal(t, 2, ExitCode(&StopError{Code: 2}))
}
