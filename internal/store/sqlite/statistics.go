package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/readtrack/readtrack-server/internal/domain"
)

// addReadingTime increments the (user, book) and user totals, creating
// either row on first use.
func addReadingTime(ctx context.Context, tx *sql.Tx, userID string, bookID int64, d time.Duration, at time.Time) error {
	ms := d.Milliseconds()

	_, err := tx.ExecContext(ctx,
		`INSERT INTO reading_statistics (user_id, book_id, total_reading_ms)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, book_id) DO UPDATE SET
			total_reading_ms = total_reading_ms + excluded.total_reading_ms`,
		userID, bookID, ms,
	)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO user_statistics (user_id, total_reading_ms, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			total_reading_ms = total_reading_ms + excluded.total_reading_ms,
			updated_at = excluded.updated_at`,
		userID, ms, formatTime(at),
	)
	return err
}

// EnsureReadingStatistics returns the (user, book) totals, creating a zero
// row if none exists yet.
func (s *Store) EnsureReadingStatistics(ctx context.Context, userID string, bookID int64) (*domain.ReadingStatistics, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reading_statistics (user_id, book_id) VALUES (?, ?)
		ON CONFLICT(user_id, book_id) DO NOTHING`,
		userID, bookID,
	)
	if err != nil {
		return nil, err
	}

	var totalMs int64
	err = s.db.QueryRowContext(ctx,
		`SELECT total_reading_ms FROM reading_statistics WHERE user_id = ? AND book_id = ?`,
		userID, bookID,
	).Scan(&totalMs)
	if err != nil {
		return nil, err
	}

	return &domain.ReadingStatistics{
		UserID:           userID,
		BookID:           bookID,
		TotalReadingTime: time.Duration(totalMs) * time.Millisecond,
	}, nil
}

// EnsureUserStatistics returns the user's aggregate statistics, creating a
// zero row if none exists yet.
func (s *Store) EnsureUserStatistics(ctx context.Context, userID string) (*domain.UserStatistics, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_statistics (user_id, updated_at) VALUES (?, ?)
		ON CONFLICT(user_id) DO NOTHING`,
		userID, formatTime(time.Now()),
	)
	if err != nil {
		return nil, err
	}

	var (
		totalMs, last7Ms, last30Ms int64
		updatedAt                  string
	)
	err = s.db.QueryRowContext(ctx,
		`SELECT total_reading_ms, last_7_days_ms, last_30_days_ms, updated_at
		FROM user_statistics WHERE user_id = ?`,
		userID,
	).Scan(&totalMs, &last7Ms, &last30Ms, &updatedAt)
	if err != nil {
		return nil, err
	}

	stats := &domain.UserStatistics{
		UserID:           userID,
		TotalReadingTime: time.Duration(totalMs) * time.Millisecond,
		Last7Days:        time.Duration(last7Ms) * time.Millisecond,
		Last30Days:       time.Duration(last30Ms) * time.Millisecond,
	}
	stats.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// SetRollingWindows overwrites the user's 7 and 30 day windows. The total
// is left untouched; a missing row is created with a zero total.
func (s *Store) SetRollingWindows(ctx context.Context, userID string, last7, last30 time.Duration, updatedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_statistics (user_id, last_7_days_ms, last_30_days_ms, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			last_7_days_ms = excluded.last_7_days_ms,
			last_30_days_ms = excluded.last_30_days_ms,
			updated_at = excluded.updated_at`,
		userID, last7.Milliseconds(), last30.Milliseconds(), formatTime(updatedAt),
	)
	return err
}
