package domain

import "time"

// ReadingSession is one contiguous interval of a user reading a book.
// A session with a nil EndTime is open; each user has at most one open session.
type ReadingSession struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	BookID    int64         `json:"book_id"`
	StartTime time.Time     `json:"start_time"`
	EndTime   *time.Time    `json:"end_time,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// NewReadingSession opens a session started at now.
func NewReadingSession(id, userID string, bookID int64, now time.Time) *ReadingSession {
	return &ReadingSession{
		ID:        id,
		UserID:    userID,
		BookID:    bookID,
		StartTime: now,
	}
}

// IsActive reports whether the session is still open.
func (s *ReadingSession) IsActive() bool {
	return s.EndTime == nil
}

// Close ends the session at the given time and records its duration.
// A clock that moved backwards yields a zero duration rather than a negative one.
func (s *ReadingSession) Close(at time.Time) {
	end := at
	s.EndTime = &end
	s.Duration = max(at.Sub(s.StartTime), 0)
}
