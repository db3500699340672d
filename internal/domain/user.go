package domain

import "time"

// DateJoinedLayout renders a join date as "2024-03-01 09:05 AM".
const DateJoinedLayout = "2006-01-02 03:04 PM"

// User is an account that owns reading sessions and statistics.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	DateJoined   time.Time `json:"date_joined"`
}

// DateJoinedDisplay formats the join date for statistics output.
func (u *User) DateJoinedDisplay() string {
	return u.DateJoined.Format(DateJoinedLayout)
}
