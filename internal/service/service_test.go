package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/readtrack/readtrack-server/internal/auth"
	"github.com/readtrack/readtrack-server/internal/clock"
	"github.com/readtrack/readtrack-server/internal/domain"
	"github.com/readtrack/readtrack-server/internal/search"
	"github.com/readtrack/readtrack-server/internal/store/sqlite"
	"github.com/readtrack/readtrack-server/internal/validation"
)

var testNow = time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)

type testEnv struct {
	store    *sqlite.Store
	clock    *clock.Mock
	index    *search.Index
	sessions *ReadingSessionService
	stats    *StatsService
	books    *BookService
	auth     *AuthService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	testStore, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { testStore.Close() })

	index, err := search.NewIndex(logger)
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	clk := clock.NewMock(testNow)
	tokens, err := auth.NewTokenService(strings.Repeat("ab", 32), time.Hour, clk)
	require.NoError(t, err)

	return &testEnv{
		store:    testStore,
		clock:    clk,
		index:    index,
		sessions: NewReadingSessionService(testStore, clk, logger),
		stats:    NewStatsService(testStore, clk, logger),
		books:    NewBookService(testStore, index, logger),
		auth:     NewAuthService(testStore, tokens, validation.New(), clk, logger),
	}
}

func createTestBook(t *testing.T, env *testEnv, id int64, title, author string) *domain.Book {
	t.Helper()
	b := &domain.Book{
		ID:               id,
		Title:            title,
		Author:           author,
		YearPublished:    1965,
		ShortDescription: "About " + title,
		FullDescription:  "The full story of " + title,
	}
	require.NoError(t, env.store.UpsertBook(context.Background(), b))
	return b
}

func createTestUser(t *testing.T, env *testEnv, id, username string) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:           id,
		Username:     username,
		PasswordHash: "$argon2id$unused",
		FirstName:    "Test",
		LastName:     "Reader",
		DateJoined:   time.Date(2024, 3, 1, 21, 5, 0, 0, time.UTC),
	}
	require.NoError(t, env.store.CreateUser(context.Background(), u))
	return u
}
