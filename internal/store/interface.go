// Package store defines the persistence interface for the reading tracker.
package store

import (
	"context"
	"iter"
	"time"

	"github.com/readtrack/readtrack-server/internal/domain"
)

// Store defines all persistence operations used by the services.
type Store interface {
	Close() error
	Ping(ctx context.Context) error

	// Books
	UpsertBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id int64) (*domain.Book, error)
	ListBooks(ctx context.Context) ([]*domain.Book, error)
	GetBooksByIDs(ctx context.Context, ids []int64) ([]*domain.Book, error)
	CountBooks(ctx context.Context) (int, error)

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	StreamUsers(ctx context.Context) iter.Seq2[*domain.User, error]

	// Reading sessions
	GetActiveReadingSession(ctx context.Context, userID string) (*domain.ReadingSession, error)
	CreateReadingSession(ctx context.Context, session *domain.ReadingSession) error
	EndReadingSession(ctx context.Context, session *domain.ReadingSession) error
	SwitchReadingSession(ctx context.Context, closing, opening *domain.ReadingSession) error
	ListReadingSessions(ctx context.Context, userID string, limit int) ([]*domain.ReadingSession, error)
	SumReadingTimeSince(ctx context.Context, userID string, since time.Time) (time.Duration, error)

	// Statistics
	EnsureReadingStatistics(ctx context.Context, userID string, bookID int64) (*domain.ReadingStatistics, error)
	EnsureUserStatistics(ctx context.Context, userID string) (*domain.UserStatistics, error)
	SetRollingWindows(ctx context.Context, userID string, last7, last30 time.Duration, updatedAt time.Time) error
}
