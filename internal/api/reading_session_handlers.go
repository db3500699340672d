package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readtrack/readtrack-server/internal/domain"
	domainerrors "github.com/readtrack/readtrack-server/internal/errors"
)

func (s *Server) registerReadingSessionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "startReadingSession",
		Method:      http.MethodGet,
		Path:        "/api/v1/start-reading-session/{bookId}/",
		Summary:     "Start reading session",
		Description: "Starts reading a book. An open session for a different book is ended first; an open session for the same book is left running.",
		Tags:        []string{"Reading Sessions"},
		Security:    []map[string][]string{{"token": {}}},
	}, s.handleStartReadingSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "endReadingSession",
		Method:      http.MethodGet,
		Path:        "/api/v1/end-reading-session/",
		Summary:     "End reading session",
		Description: "Ends the open reading session and adds its duration to the reading totals",
		Tags:        []string{"Reading Sessions"},
		Security:    []map[string][]string{{"token": {}}},
	}, s.handleEndReadingSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "listReadingSessions",
		Method:      http.MethodGet,
		Path:        "/api/v1/reading-sessions/",
		Summary:     "List reading sessions",
		Description: "Returns the user's reading sessions, most recent first",
		Tags:        []string{"Reading Sessions"},
		Security:    []map[string][]string{{"token": {}}},
	}, s.handleListReadingSessions)
}

// === DTOs ===

// StartReadingSessionInput contains parameters for starting a session.
type StartReadingSessionInput struct {
	BookID int64 `path:"bookId" doc:"Book ID"`
}

// SessionMessageResponse carries a human-readable outcome. Exactly one of
// the fields is set: Message on success, Error when the book is unknown.
type SessionMessageResponse struct {
	Message string `json:"message,omitempty" doc:"Outcome message"`
	Error   string `json:"Error,omitempty" doc:"Reason the request could not be applied"`
}

// SessionMessageOutput wraps the message response for Huma.
type SessionMessageOutput struct {
	Body SessionMessageResponse
}

// ListReadingSessionsInput contains pagination for the history listing.
type ListReadingSessionsInput struct {
	Limit int `query:"limit" minimum:"0" maximum:"500" doc:"Max sessions to return (default 50)"`
}

// ReadingSessionResponse describes one reading session.
type ReadingSessionResponse struct {
	ID              string     `json:"id" doc:"Session ID"`
	BookID          int64      `json:"book_id" doc:"Book ID"`
	StartTime       time.Time  `json:"start_time" doc:"When reading started"`
	EndTime         *time.Time `json:"end_time,omitempty" doc:"When reading ended; absent while active"`
	Active          bool       `json:"active" doc:"Whether the session is still open"`
	Duration        string     `json:"duration" doc:"Formatted session length"`
	DurationSeconds int64      `json:"duration_seconds" doc:"Session length in seconds"`
}

// ListReadingSessionsOutput wraps the session list for Huma.
type ListReadingSessionsOutput struct {
	Body []ReadingSessionResponse
}

// === Handlers ===

func (s *Server) handleStartReadingSession(ctx context.Context, input *StartReadingSessionInput) (*SessionMessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.services.ReadingSession.Start(ctx, userID, input.BookID)
	if err != nil {
		if msg, ok := notFoundMessage(err); ok {
			return &SessionMessageOutput{Body: SessionMessageResponse{Error: msg}}, nil
		}
		return nil, err
	}

	return &SessionMessageOutput{Body: SessionMessageResponse{Message: res.Outcome.Message()}}, nil
}

func (s *Server) handleEndReadingSession(ctx context.Context, _ *struct{}) (*SessionMessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.services.ReadingSession.End(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &SessionMessageOutput{Body: SessionMessageResponse{Message: res.Outcome.Message()}}, nil
}

func (s *Server) handleListReadingSessions(ctx context.Context, input *ListReadingSessionsInput) (*ListReadingSessionsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	sessions, err := s.services.ReadingSession.History(ctx, userID, input.Limit)
	if err != nil {
		return nil, err
	}

	resp := make([]ReadingSessionResponse, len(sessions))
	for i, rs := range sessions {
		resp[i] = mapReadingSession(rs)
	}
	return &ListReadingSessionsOutput{Body: resp}, nil
}

// === Helpers ===

func mapReadingSession(rs *domain.ReadingSession) ReadingSessionResponse {
	return ReadingSessionResponse{
		ID:              rs.ID,
		BookID:          rs.BookID,
		StartTime:       rs.StartTime,
		EndTime:         rs.EndTime,
		Active:          rs.IsActive(),
		Duration:        domain.FormatDuration(rs.Duration),
		DurationSeconds: int64(rs.Duration / time.Second),
	}
}

// notFoundMessage extracts the message of a domain not-found error. The
// session and statistics endpoints report these in the body with 200 OK.
func notFoundMessage(err error) (string, bool) {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) && domainErr.Code == domainerrors.CodeNotFound {
		return domainErr.Message, true
	}
	return "", false
}
