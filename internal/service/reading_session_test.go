package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/readtrack/readtrack-server/internal/errors"
)

func TestStart_UnknownBook(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	createTestUser(t, env, "user-1", "alice")

	_, err := env.sessions.Start(ctx, "user-1", 42)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	assert.Contains(t, err.Error(), MsgBookNotFound)

	active, err := env.sessions.Active(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestStart_NewSession(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	createTestUser(t, env, "user-1", "alice")
	createTestBook(t, env, 1, "Dune", "Frank Herbert")

	res, err := env.sessions.Start(ctx, "user-1", 1)
	require.NoError(t, err)
	assert.Equal(t, StartStarted, res.Outcome)
	assert.Equal(t, MsgSessionStarted, res.Outcome.Message())
	require.NotNil(t, res.Session)
	assert.Equal(t, testNow, res.Session.StartTime)
	assert.True(t, res.Session.IsActive())
	assert.Nil(t, res.Ended)

	active, err := env.sessions.Active(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, res.Session.ID, active.ID)
}

func TestStart_SameBookIsNoOp(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	createTestUser(t, env, "user-1", "alice")
	createTestBook(t, env, 1, "Dune", "Frank Herbert")

	first, err := env.sessions.Start(ctx, "user-1", 1)
	require.NoError(t, err)

	env.clock.Advance(10 * time.Minute)
	second, err := env.sessions.Start(ctx, "user-1", 1)
	require.NoError(t, err)
	assert.Equal(t, StartAlreadyActive, second.Outcome)
	assert.Equal(t, MsgSessionActive, second.Outcome.Message())
	assert.Equal(t, first.Session.ID, second.Session.ID)
	assert.Equal(t, testNow, second.Session.StartTime)

	sessions, err := env.sessions.History(ctx, "user-1", 0)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestStart_SwitchesBooks(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	createTestUser(t, env, "user-1", "alice")
	createTestBook(t, env, 1, "Dune", "Frank Herbert")
	createTestBook(t, env, 2, "Neuromancer", "William Gibson")

	first, err := env.sessions.Start(ctx, "user-1", 1)
	require.NoError(t, err)

	env.clock.Advance(45 * time.Minute)
	res, err := env.sessions.Start(ctx, "user-1", 2)
	require.NoError(t, err)
	assert.Equal(t, StartSwitched, res.Outcome)
	assert.Equal(t, MsgSessionSwitched, res.Outcome.Message())
	require.NotNil(t, res.Ended)
	assert.Equal(t, first.Session.ID, res.Ended.ID)
	assert.Equal(t, 45*time.Minute, res.Ended.Duration)
	assert.Equal(t, int64(2), res.Session.BookID)

	active, err := env.sessions.Active(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, int64(2), active.BookID)

	bookStats, err := env.stats.BookStatistics(ctx, "user-1", 1)
	require.NoError(t, err)
	assert.Equal(t, "45 min 0 sec", bookStats.TotalReadingTime)

	userStats, err := env.stats.UserStatistics(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "45 min 0 sec", userStats.TotalReadingTime)
}

func TestEnd_NothingToEnd(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	createTestUser(t, env, "user-1", "alice")

	res, err := env.sessions.End(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, EndNothingToEnd, res.Outcome)
	assert.Equal(t, MsgNothingToEnd, res.Outcome.Message())
	assert.Nil(t, res.Session)

	stats, err := env.stats.UserStatistics(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "0 min 0 sec", stats.TotalReadingTime)
}

func TestEnd_TwoHourSession(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	createTestUser(t, env, "user-1", "alice")
	createTestBook(t, env, 1, "Dune", "Frank Herbert")

	_, err := env.sessions.Start(ctx, "user-1", 1)
	require.NoError(t, err)

	env.clock.Advance(2 * time.Hour)
	res, err := env.sessions.End(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, EndEnded, res.Outcome)
	assert.Equal(t, MsgSessionEnded, res.Outcome.Message())
	assert.Equal(t, 2*time.Hour, res.Session.Duration)

	bookStats, err := env.stats.BookStatistics(ctx, "user-1", 1)
	require.NoError(t, err)
	assert.Equal(t, "2 hours, 0 min 0 sec", bookStats.TotalReadingTime)
	assert.Equal(t, "Dune", bookStats.Book.Title)

	userStats, err := env.stats.UserStatistics(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "2 hours, 0 min 0 sec", userStats.TotalReadingTime)
	// Windows are only refreshed by the recompute job.
	assert.Equal(t, "0 min 0 sec", userStats.Last7Days)

	_, err = env.stats.RecomputeRollingWindows(ctx)
	require.NoError(t, err)

	userStats, err = env.stats.UserStatistics(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "2 hours, 0 min 0 sec", userStats.Last7Days)
	assert.Equal(t, "2 hours, 0 min 0 sec", userStats.Last30Days)

	// Ending again is a no-op and does not double count.
	again, err := env.sessions.End(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, EndNothingToEnd, again.Outcome)

	userStats, err = env.stats.UserStatistics(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "2 hours, 0 min 0 sec", userStats.TotalReadingTime)
}

func TestEnd_ClockMovedBackwards(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	createTestUser(t, env, "user-1", "alice")
	createTestBook(t, env, 1, "Dune", "Frank Herbert")

	_, err := env.sessions.Start(ctx, "user-1", 1)
	require.NoError(t, err)

	env.clock.Set(testNow.Add(-time.Minute))
	res, err := env.sessions.End(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), res.Session.Duration)

	stats, err := env.stats.UserStatistics(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "0 min 0 sec", stats.TotalReadingTime)
}

func TestTotalsEqualSumOfSessions(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	createTestUser(t, env, "user-1", "alice")
	createTestBook(t, env, 1, "Dune", "Frank Herbert")
	createTestBook(t, env, 2, "Neuromancer", "William Gibson")

	steps := []struct {
		bookID int64
		read   time.Duration
	}{
		{1, 20 * time.Minute},
		{2, 5 * time.Minute},
		{1, time.Hour},
		{2, 90 * time.Second},
	}
	for _, step := range steps {
		_, err := env.sessions.Start(ctx, "user-1", step.bookID)
		require.NoError(t, err)
		env.clock.Advance(step.read)
	}
	_, err := env.sessions.End(ctx, "user-1")
	require.NoError(t, err)

	book1, err := env.stats.BookStatistics(ctx, "user-1", 1)
	require.NoError(t, err)
	assert.Equal(t, 80*time.Minute, book1.Total)

	book2, err := env.stats.BookStatistics(ctx, "user-1", 2)
	require.NoError(t, err)
	assert.Equal(t, 6*time.Minute+30*time.Second, book2.Total)

	user, err := env.stats.UserStatistics(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "1 hours, 26 min 30 sec", user.TotalReadingTime)

	sessions, err := env.sessions.History(ctx, "user-1", 0)
	require.NoError(t, err)
	var sum time.Duration
	for _, s := range sessions {
		assert.False(t, s.IsActive())
		sum += s.Duration
	}
	assert.Equal(t, book1.Total+book2.Total, sum)
}

func TestStart_ConcurrentRequestsKeepOneOpenSession(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	createTestUser(t, env, "user-1", "alice")
	for i := int64(1); i <= 4; i++ {
		createTestBook(t, env, i, "Book", "Author")
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := range 8 {
		wg.Add(1)
		go func(bookID int64) {
			defer wg.Done()
			if _, err := env.sessions.Start(ctx, "user-1", bookID); err != nil {
				errs <- err
			}
		}(int64(i%4) + 1)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		// Losing a race twice surfaces as a conflict; anything else is a bug.
		assert.ErrorIs(t, err, domainerrors.ErrConflict)
	}

	sessions, err := env.sessions.History(ctx, "user-1", 0)
	require.NoError(t, err)
	open := 0
	for _, s := range sessions {
		if s.IsActive() {
			open++
		}
	}
	assert.Equal(t, 1, open)
}

func TestHistory_Limit(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	createTestUser(t, env, "user-1", "alice")
	createTestBook(t, env, 1, "Dune", "Frank Herbert")

	for range 3 {
		_, err := env.sessions.Start(ctx, "user-1", 1)
		require.NoError(t, err)
		env.clock.Advance(time.Minute)
		_, err = env.sessions.End(ctx, "user-1")
		require.NoError(t, err)
	}

	sessions, err := env.sessions.History(ctx, "user-1", 2)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)

	empty, err := env.sessions.History(ctx, "user-nobody", 0)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
