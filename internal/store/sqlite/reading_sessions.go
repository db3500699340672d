package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/readtrack/readtrack-server/internal/domain"
	"github.com/readtrack/readtrack-server/internal/store"
)

const readingSessionColumns = `id, user_id, book_id, start_time, end_time, duration_ms`

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func scanReadingSession(scanner interface{ Scan(dest ...any) error }) (*domain.ReadingSession, error) {
	var (
		rs         domain.ReadingSession
		startTime  string
		endTime    sql.NullString
		durationMs int64
	)
	err := scanner.Scan(
		&rs.ID,
		&rs.UserID,
		&rs.BookID,
		&startTime,
		&endTime,
		&durationMs,
	)
	if err != nil {
		return nil, err
	}

	rs.StartTime, err = parseTime(startTime)
	if err != nil {
		return nil, err
	}
	rs.EndTime, err = parseNullableTime(endTime)
	if err != nil {
		return nil, err
	}
	rs.Duration = time.Duration(durationMs) * time.Millisecond
	return &rs, nil
}

// GetActiveReadingSession returns the user's open session.
// Returns nil, nil if no session is open.
func (s *Store) GetActiveReadingSession(ctx context.Context, userID string) (*domain.ReadingSession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+readingSessionColumns+` FROM reading_sessions
		WHERE user_id = ? AND end_time IS NULL`,
		userID,
	)

	rs, err := scanReadingSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rs, nil
}

// CreateReadingSession opens a new session.
// Returns store.ErrActiveSessionExists if the user already has an open session.
func (s *Store) CreateReadingSession(ctx context.Context, session *domain.ReadingSession) error {
	return insertReadingSession(ctx, s.db, session)
}

func insertReadingSession(ctx context.Context, db execer, session *domain.ReadingSession) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO reading_sessions (`+readingSessionColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		session.BookID,
		formatTime(session.StartTime),
		nullTimeString(session.EndTime),
		session.Duration.Milliseconds(),
	)
	if isUniqueViolation(err) {
		if strings.Contains(err.Error(), "reading_sessions.user_id") {
			return store.ErrActiveSessionExists
		}
		return store.ErrAlreadyExists
	}
	return err
}

// EndReadingSession persists a closed session and folds its duration into
// the book-level and user-level totals in a single transaction.
// Returns store.ErrSessionNotFound if the session is not open in the database,
// so a session can never be counted twice.
func (s *Store) EndReadingSession(ctx context.Context, session *domain.ReadingSession) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := closeReadingSession(ctx, tx, session); err != nil {
		return err
	}
	return tx.Commit()
}

// SwitchReadingSession ends closing and opens opening atomically.
// Either both changes are applied or neither is.
func (s *Store) SwitchReadingSession(ctx context.Context, closing, opening *domain.ReadingSession) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := closeReadingSession(ctx, tx, closing); err != nil {
		return err
	}
	if err := insertReadingSession(ctx, tx, opening); err != nil {
		return err
	}
	return tx.Commit()
}

func closeReadingSession(ctx context.Context, tx *sql.Tx, session *domain.ReadingSession) error {
	if session.EndTime == nil {
		return errors.New("close reading session: end time not set")
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE reading_sessions SET end_time = ?, duration_ms = ?
		WHERE id = ? AND end_time IS NULL`,
		formatTime(*session.EndTime),
		session.Duration.Milliseconds(),
		session.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrSessionNotFound
	}

	return addReadingTime(ctx, tx, session.UserID, session.BookID, session.Duration, *session.EndTime)
}

// ListReadingSessions returns a user's sessions, most recent first.
// If limit > 0, at most limit sessions are returned.
func (s *Store) ListReadingSessions(ctx context.Context, userID string, limit int) ([]*domain.ReadingSession, error) {
	query := `SELECT ` + readingSessionColumns + ` FROM reading_sessions
		WHERE user_id = ?
		ORDER BY start_time DESC`

	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.ReadingSession
	for rows.Next() {
		rs, err := scanReadingSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// SumReadingTimeSince totals the durations of the user's sessions that
// started at or after since. Open sessions contribute zero.
func (s *Store) SumReadingTimeSince(ctx context.Context, userID string, since time.Time) (time.Duration, error) {
	var totalMs int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(duration_ms), 0) FROM reading_sessions
		WHERE user_id = ? AND start_time >= ?`,
		userID, formatTime(since),
	).Scan(&totalMs)
	if err != nil {
		return 0, err
	}
	return time.Duration(totalMs) * time.Millisecond, nil
}
