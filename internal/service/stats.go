package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/readtrack/readtrack-server/internal/clock"
	"github.com/readtrack/readtrack-server/internal/domain"
	domainerrors "github.com/readtrack/readtrack-server/internal/errors"
	"github.com/readtrack/readtrack-server/internal/metrics"
	"github.com/readtrack/readtrack-server/internal/store"
)

// BookStatistics is a user's formatted reading time for one book.
type BookStatistics struct {
	Book             domain.BookSummary
	TotalReadingTime string
	Total            time.Duration
}

// UserStatistics is a user's identity plus formatted reading totals.
// The rolling windows reflect the last recompute run, not the current moment.
type UserStatistics struct {
	Username         string
	FirstName        string
	LastName         string
	DateJoined       string
	TotalReadingTime string
	Last7Days        string
	Last30Days       string
	UpdatedAt        time.Time
}

// JobReport summarizes one rolling window recompute run.
type JobReport struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Took      time.Duration `json:"took"`
	Processed int           `json:"processed"`
	Failed    int           `json:"failed"`
}

// StatsService aggregates reading time and serves statistics queries.
type StatsService struct {
	store  store.Store
	clock  clock.Clock
	logger *slog.Logger
}

// NewStatsService creates a new stats service.
func NewStatsService(store store.Store, clk clock.Clock, logger *slog.Logger) *StatsService {
	return &StatsService{
		store:  store,
		clock:  clk,
		logger: logger,
	}
}

// RollingWindow sums the durations of the user's sessions that started
// within the last days days. days <= 0 yields zero.
func (s *StatsService) RollingWindow(ctx context.Context, userID string, days int) (time.Duration, error) {
	return s.rollingWindowAt(ctx, userID, days, s.clock.Now())
}

func (s *StatsService) rollingWindowAt(ctx context.Context, userID string, days int, now time.Time) (time.Duration, error) {
	if days <= 0 {
		return 0, nil
	}
	total, err := s.store.SumReadingTimeSince(ctx, userID, domain.WindowStart(now, days))
	if err != nil {
		return 0, fmt.Errorf("sum reading time: %w", err)
	}
	return total, nil
}

// RecomputeRollingWindows overwrites every user's 7 and 30 day windows.
// A failure for one user is logged and counted; the run continues with the
// next user. Running it twice with no new sessions leaves the same values.
func (s *StatsService) RecomputeRollingWindows(ctx context.Context) (*JobReport, error) {
	now := s.clock.Now()
	started := time.Now()
	report := &JobReport{
		RunID:     uuid.NewString(),
		StartedAt: now,
	}
	logger := s.logger.With("run_id", report.RunID)
	logger.Info("recomputing rolling windows")

	var runErr error
	for user, err := range s.store.StreamUsers(ctx) {
		if err != nil {
			runErr = fmt.Errorf("stream users: %w", err)
			break
		}
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		if err := s.recomputeUser(ctx, user.ID, now); err != nil {
			report.Failed++
			logger.Warn("failed to recompute rolling windows",
				"user_id", user.ID,
				"error", err,
			)
			continue
		}
		report.Processed++
	}

	report.Took = time.Since(started)
	metrics.RecordRecompute(report.Processed, report.Failed, report.Took, runErr)

	if runErr != nil {
		logger.Error("rolling window recompute aborted",
			"processed", report.Processed,
			"failed", report.Failed,
			"error", runErr,
		)
		return report, runErr
	}

	logger.Info("rolling windows recomputed",
		"processed", report.Processed,
		"failed", report.Failed,
		"took", report.Took,
	)
	return report, nil
}

func (s *StatsService) recomputeUser(ctx context.Context, userID string, now time.Time) error {
	week, err := s.rollingWindowAt(ctx, userID, domain.WindowWeekDays, now)
	if err != nil {
		return err
	}
	month, err := s.rollingWindowAt(ctx, userID, domain.WindowMonthDays, now)
	if err != nil {
		return err
	}
	if err := s.store.SetRollingWindows(ctx, userID, week, month, now); err != nil {
		return fmt.Errorf("set rolling windows: %w", err)
	}
	return nil
}

// BookStatistics returns the user's total reading time for a book, creating
// an empty statistics row on first access.
func (s *StatsService) BookStatistics(ctx context.Context, userID string, bookID int64) (*BookStatistics, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound(MsgBookNotFound)
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	stats, err := s.store.EnsureReadingStatistics(ctx, userID, bookID)
	if err != nil {
		return nil, fmt.Errorf("ensure reading statistics: %w", err)
	}

	return &BookStatistics{
		Book:             book.Summary(),
		TotalReadingTime: domain.FormatDuration(stats.TotalReadingTime),
		Total:            stats.TotalReadingTime,
	}, nil
}

// UserStatistics returns the user's profile fields and reading totals,
// creating an empty statistics row on first access.
func (s *StatsService) UserStatistics(ctx context.Context, userID string) (*UserStatistics, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	stats, err := s.store.EnsureUserStatistics(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ensure user statistics: %w", err)
	}

	return &UserStatistics{
		Username:         user.Username,
		FirstName:        user.FirstName,
		LastName:         user.LastName,
		DateJoined:       user.DateJoinedDisplay(),
		TotalReadingTime: domain.FormatDuration(stats.TotalReadingTime),
		Last7Days:        domain.FormatDuration(stats.Last7Days),
		Last30Days:       domain.FormatDuration(stats.Last30Days),
		UpdatedAt:        stats.UpdatedAt,
	}, nil
}
