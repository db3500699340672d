package sqlite

import (
	"context"
	"testing"
	"time"
)

func TestEnsureReadingStatistics_CreatesZeroRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestUser(t, s, "user-1", "alice")
	insertTestBook(t, s, 1, "Dune", "Frank Herbert")

	stats, err := s.EnsureReadingStatistics(ctx, "user-1", 1)
	if err != nil {
		t.Fatalf("EnsureReadingStatistics: %v", err)
	}
	if stats.TotalReadingTime != 0 {
		t.Errorf("expected zero total, got %v", stats.TotalReadingTime)
	}

	var rows int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM reading_statistics`).Scan(&rows); err != nil {
		t.Fatalf("count: %v", err)
	}
	if rows != 1 {
		t.Errorf("expected 1 row, got %d", rows)
	}

	// A second call reuses the row.
	if _, err := s.EnsureReadingStatistics(ctx, "user-1", 1); err != nil {
		t.Fatalf("EnsureReadingStatistics again: %v", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM reading_statistics`).Scan(&rows); err != nil {
		t.Fatalf("count: %v", err)
	}
	if rows != 1 {
		t.Errorf("expected 1 row after second call, got %d", rows)
	}
}

func TestEnsureUserStatistics_CreatesZeroRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestUser(t, s, "user-1", "alice")

	stats, err := s.EnsureUserStatistics(ctx, "user-1")
	if err != nil {
		t.Fatalf("EnsureUserStatistics: %v", err)
	}
	if stats.TotalReadingTime != 0 || stats.Last7Days != 0 || stats.Last30Days != 0 {
		t.Errorf("expected zeroed stats, got %+v", stats)
	}
	if stats.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt to be set")
	}
}

func TestSetRollingWindows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestUser(t, s, "user-1", "alice")
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	// Works before any statistics row exists.
	if err := s.SetRollingWindows(ctx, "user-1", time.Hour, 3*time.Hour, at); err != nil {
		t.Fatalf("SetRollingWindows: %v", err)
	}

	stats, err := s.EnsureUserStatistics(ctx, "user-1")
	if err != nil {
		t.Fatalf("EnsureUserStatistics: %v", err)
	}
	if stats.Last7Days != time.Hour || stats.Last30Days != 3*time.Hour {
		t.Errorf("windows: got 7d=%v 30d=%v", stats.Last7Days, stats.Last30Days)
	}
	if stats.TotalReadingTime != 0 {
		t.Errorf("total must be untouched, got %v", stats.TotalReadingTime)
	}
	if !stats.UpdatedAt.Equal(at) {
		t.Errorf("UpdatedAt: got %v, want %v", stats.UpdatedAt, at)
	}

	// Overwrites rather than accumulates.
	if err := s.SetRollingWindows(ctx, "user-1", 0, time.Minute, at.Add(24*time.Hour)); err != nil {
		t.Fatalf("SetRollingWindows again: %v", err)
	}
	stats, err = s.EnsureUserStatistics(ctx, "user-1")
	if err != nil {
		t.Fatalf("EnsureUserStatistics: %v", err)
	}
	if stats.Last7Days != 0 || stats.Last30Days != time.Minute {
		t.Errorf("windows after overwrite: got 7d=%v 30d=%v", stats.Last7Days, stats.Last30Days)
	}
}
