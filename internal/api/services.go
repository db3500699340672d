package api

import (
	"github.com/readtrack/readtrack-server/internal/service"
)

// Services groups all business logic services used by the API server.
type Services struct {
	Auth           *service.AuthService
	Book           *service.BookService
	ReadingSession *service.ReadingSessionService
	Stats          *service.StatsService
}
