package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/readtrack/readtrack-server/internal/clock"
	"github.com/readtrack/readtrack-server/internal/domain"
	domainerrors "github.com/readtrack/readtrack-server/internal/errors"
	"github.com/readtrack/readtrack-server/internal/id"
	"github.com/readtrack/readtrack-server/internal/metrics"
	"github.com/readtrack/readtrack-server/internal/store"
)

// User-facing messages for session operations.
const (
	MsgSessionStarted  = "Book reading session started successfully"
	MsgSessionActive   = "A reading session for this book is already active"
	MsgSessionSwitched = "The previous book reading session was ended successfully, and the new book reading session started successfully"
	MsgSessionEnded    = "Book reading session ended successfully"
	MsgNothingToEnd    = "There is currently no book reading session started"
	MsgBookNotFound    = "There is no book with this ID"
)

// maxStartAttempts bounds retries when a concurrent request changes the
// user's open session between our read and write.
const maxStartAttempts = 2

// History page sizes.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

// StartOutcome describes what Start did.
type StartOutcome string

// Start outcomes.
const (
	StartStarted       StartOutcome = "started"
	StartAlreadyActive StartOutcome = "already_active"
	StartSwitched      StartOutcome = "switched"
)

// Message returns the user-facing message for the outcome.
func (o StartOutcome) Message() string {
	switch o {
	case StartAlreadyActive:
		return MsgSessionActive
	case StartSwitched:
		return MsgSessionSwitched
	default:
		return MsgSessionStarted
	}
}

// StartResult is returned by Start.
type StartResult struct {
	Outcome StartOutcome
	// Session is the user's open session after the call.
	Session *domain.ReadingSession
	// Ended is the session closed by a switch, if any.
	Ended *domain.ReadingSession
}

// EndOutcome describes what End did.
type EndOutcome string

// End outcomes.
const (
	EndEnded        EndOutcome = "ended"
	EndNothingToEnd EndOutcome = "nothing_to_end"
)

// Message returns the user-facing message for the outcome.
func (o EndOutcome) Message() string {
	if o == EndEnded {
		return MsgSessionEnded
	}
	return MsgNothingToEnd
}

// EndResult is returned by End.
type EndResult struct {
	Outcome EndOutcome
	Session *domain.ReadingSession
}

// ReadingSessionService starts and ends reading sessions. Each user has at
// most one open session; starting a different book closes the current one.
type ReadingSessionService struct {
	store  store.Store
	clock  clock.Clock
	logger *slog.Logger
}

// NewReadingSessionService creates a new reading session service.
func NewReadingSessionService(store store.Store, clk clock.Clock, logger *slog.Logger) *ReadingSessionService {
	return &ReadingSessionService{
		store:  store,
		clock:  clk,
		logger: logger,
	}
}

// Start opens a reading session for bookID.
//
// If the user is already reading that book nothing changes. If they are
// reading another book, that session is closed and its time counted in the
// same transaction that opens the new one.
func (s *ReadingSessionService) Start(ctx context.Context, userID string, bookID int64) (*StartResult, error) {
	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound(MsgBookNotFound)
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxStartAttempts; attempt++ {
		result, err := s.tryStart(ctx, userID, bookID)
		if err == nil {
			metrics.RecordSessionOutcome("start", string(result.Outcome))
			return result, nil
		}
		if !isSessionRace(err) {
			return nil, err
		}

		s.logger.Debug("reading session changed concurrently, retrying",
			"user_id", userID,
			"book_id", bookID,
			"attempt", attempt,
			"error", err,
		)
		lastErr = err
	}

	return nil, domainerrors.Conflict("reading session changed concurrently, please retry").WithCause(lastErr)
}

func (s *ReadingSessionService) tryStart(ctx context.Context, userID string, bookID int64) (*StartResult, error) {
	active, err := s.store.GetActiveReadingSession(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get active session: %w", err)
	}

	if active != nil && active.BookID == bookID {
		return &StartResult{Outcome: StartAlreadyActive, Session: active}, nil
	}

	sessionID, err := id.Generate(id.PrefixReadingSession)
	if err != nil {
		return nil, fmt.Errorf("generate session ID: %w", err)
	}

	now := s.clock.Now()
	opening := domain.NewReadingSession(sessionID, userID, bookID, now)

	if active == nil {
		if err := s.store.CreateReadingSession(ctx, opening); err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		s.logger.Info("reading session started",
			"session_id", opening.ID,
			"user_id", userID,
			"book_id", bookID,
		)
		return &StartResult{Outcome: StartStarted, Session: opening}, nil
	}

	closing := *active
	closing.Close(now)
	if err := s.store.SwitchReadingSession(ctx, &closing, opening); err != nil {
		return nil, fmt.Errorf("switch session: %w", err)
	}
	metrics.RecordReadingTime(closing.Duration)

	s.logger.Info("reading session switched",
		"ended_session_id", closing.ID,
		"ended_book_id", closing.BookID,
		"duration", closing.Duration,
		"session_id", opening.ID,
		"user_id", userID,
		"book_id", bookID,
	)
	return &StartResult{Outcome: StartSwitched, Session: opening, Ended: &closing}, nil
}

// isSessionRace reports whether err came from another request opening or
// closing the user's session between our read and write.
func isSessionRace(err error) bool {
	return errors.Is(err, store.ErrActiveSessionExists) || errors.Is(err, store.ErrSessionNotFound)
}

// End closes the user's open session and adds its duration to the book and
// user totals. With no open session it reports EndNothingToEnd.
func (s *ReadingSessionService) End(ctx context.Context, userID string) (*EndResult, error) {
	active, err := s.store.GetActiveReadingSession(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get active session: %w", err)
	}
	if active == nil {
		metrics.RecordSessionOutcome("end", string(EndNothingToEnd))
		return &EndResult{Outcome: EndNothingToEnd}, nil
	}

	active.Close(s.clock.Now())
	if err := s.store.EndReadingSession(ctx, active); err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			// Closed by a concurrent request; its time was counted there.
			metrics.RecordSessionOutcome("end", string(EndNothingToEnd))
			return &EndResult{Outcome: EndNothingToEnd}, nil
		}
		return nil, fmt.Errorf("end session: %w", err)
	}

	metrics.RecordSessionOutcome("end", string(EndEnded))
	metrics.RecordReadingTime(active.Duration)
	s.logger.Info("reading session ended",
		"session_id", active.ID,
		"user_id", userID,
		"book_id", active.BookID,
		"duration", active.Duration,
	)
	return &EndResult{Outcome: EndEnded, Session: active}, nil
}

// Active returns the user's open session, or nil if there is none.
func (s *ReadingSessionService) Active(ctx context.Context, userID string) (*domain.ReadingSession, error) {
	active, err := s.store.GetActiveReadingSession(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get active session: %w", err)
	}
	return active, nil
}

// History lists the user's sessions, most recent first.
func (s *ReadingSessionService) History(ctx context.Context, userID string, limit int) ([]*domain.ReadingSession, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	limit = min(limit, MaxHistoryLimit)

	sessions, err := s.store.ListReadingSessions(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if sessions == nil {
		sessions = []*domain.ReadingSession{}
	}
	return sessions, nil
}
