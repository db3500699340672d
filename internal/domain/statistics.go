package domain

import "time"

// Rolling window lengths maintained by the recompute job.
const (
	WindowWeekDays  = 7
	WindowMonthDays = 30
)

// ReadingStatistics is the running total for one (user, book) pair.
type ReadingStatistics struct {
	UserID           string        `json:"user_id"`
	BookID           int64         `json:"book_id"`
	TotalReadingTime time.Duration `json:"total_reading_time"`
}

// UserStatistics aggregates reading time across all books for a user.
// TotalReadingTime is incremented on every session end; the rolling windows
// are overwritten by the periodic recompute and may lag behind.
type UserStatistics struct {
	UserID           string        `json:"user_id"`
	TotalReadingTime time.Duration `json:"total_reading_time"`
	Last7Days        time.Duration `json:"last_7_days_reading_time"`
	Last30Days       time.Duration `json:"last_30_days_reading_time"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// WindowStart returns the inclusive lower bound of a rolling window of days ending at now.
func WindowStart(now time.Time, days int) time.Time {
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}
