package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readtrack/readtrack-server/internal/domain"
)

func (s *Server) registerStatisticsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getUserStatistics",
		Method:      http.MethodGet,
		Path:        "/api/v1/user-statistics/",
		Summary:     "Get user statistics",
		Description: "Returns the user's profile and total, 7 day and 30 day reading time. The rolling windows are refreshed by a periodic job.",
		Tags:        []string{"Statistics"},
		Security:    []map[string][]string{{"token": {}}},
	}, s.handleGetUserStatistics)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookReadingStatistics",
		Method:      http.MethodGet,
		Path:        "/api/v1/book-reading-statistics/{bookId}/",
		Summary:     "Get book reading statistics",
		Description: "Returns the user's total reading time for one book",
		Tags:        []string{"Statistics"},
		Security:    []map[string][]string{{"token": {}}},
	}, s.handleGetBookReadingStatistics)
}

// === DTOs ===

// UserStatisticsResponse uses the display keys clients already consume.
type UserStatisticsResponse struct {
	Username         string `json:"Username" doc:"Username"`
	FirstName        string `json:"First name" doc:"First name"`
	LastName         string `json:"Last name" doc:"Last name"`
	DateJoined       string `json:"Date joined" doc:"Join date, formatted YYYY-MM-DD hh:mm AM/PM"`
	TotalReadingTime string `json:"Total reading time" doc:"All-time reading time"`
	Last7Days        string `json:"Last 7 days reading time" doc:"Reading time over the last 7 days"`
	Last30Days       string `json:"Last 30 days reading time" doc:"Reading time over the last 30 days"`
}

// UserStatisticsOutput wraps the user statistics for Huma.
type UserStatisticsOutput struct {
	Body UserStatisticsResponse
}

// BookReadingStatisticsInput contains parameters for per-book statistics.
type BookReadingStatisticsInput struct {
	BookID int64 `path:"bookId" doc:"Book ID"`
}

// BookReadingStatisticsResponse is either the book summary with its total
// reading time, or an Error message when the book is unknown.
type BookReadingStatisticsResponse struct {
	Book             *domain.BookSummary `json:"Book,omitempty" doc:"Book without its full description"`
	TotalReadingTime string              `json:"Total reading time,omitempty" doc:"User's total reading time for the book"`
	Error            string              `json:"Error,omitempty" doc:"Reason the statistics could not be returned"`
}

// BookReadingStatisticsOutput wraps the book statistics for Huma.
type BookReadingStatisticsOutput struct {
	Body BookReadingStatisticsResponse
}

// === Handlers ===

func (s *Server) handleGetUserStatistics(ctx context.Context, _ *struct{}) (*UserStatisticsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := s.services.Stats.UserStatistics(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &UserStatisticsOutput{
		Body: UserStatisticsResponse{
			Username:         stats.Username,
			FirstName:        stats.FirstName,
			LastName:         stats.LastName,
			DateJoined:       stats.DateJoined,
			TotalReadingTime: stats.TotalReadingTime,
			Last7Days:        stats.Last7Days,
			Last30Days:       stats.Last30Days,
		},
	}, nil
}

func (s *Server) handleGetBookReadingStatistics(ctx context.Context, input *BookReadingStatisticsInput) (*BookReadingStatisticsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := s.services.Stats.BookStatistics(ctx, userID, input.BookID)
	if err != nil {
		if msg, ok := notFoundMessage(err); ok {
			return &BookReadingStatisticsOutput{Body: BookReadingStatisticsResponse{Error: msg}}, nil
		}
		return nil, err
	}

	return &BookReadingStatisticsOutput{
		Body: BookReadingStatisticsResponse{
			Book:             &stats.Book,
			TotalReadingTime: stats.TotalReadingTime,
		},
	}, nil
}
