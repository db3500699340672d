package api

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/readtrack/readtrack-server/internal/errors"
	"github.com/readtrack/readtrack-server/internal/service"
)

func (s *Server) registerAdminRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "recomputeStatistics",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/recompute-statistics",
		Summary:     "Recompute rolling windows",
		Description: "Runs the 7 and 30 day reading time recompute immediately. Requires the X-Admin-Token header; disabled when no admin token is configured.",
		Tags:        []string{"Admin"},
	}, s.handleRecomputeStatistics)
}

// RecomputeInput carries the static admin token.
type RecomputeInput struct {
	AdminToken string `header:"X-Admin-Token" doc:"Configured admin token"`
}

// RecomputeOutput wraps the job report for Huma.
type RecomputeOutput struct {
	Body service.JobReport
}

func (s *Server) handleRecomputeStatistics(ctx context.Context, input *RecomputeInput) (*RecomputeOutput, error) {
	if err := s.requireAdminToken(input.AdminToken); err != nil {
		return nil, err
	}

	report, err := s.services.Stats.RecomputeRollingWindows(ctx)
	if err != nil {
		return nil, err
	}

	return &RecomputeOutput{Body: *report}, nil
}

// requireAdminToken compares the supplied token in constant time.
func (s *Server) requireAdminToken(token string) error {
	if s.adminToken == "" {
		return domainerrors.Forbidden("Admin endpoints are disabled")
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) != 1 {
		return domainerrors.Forbidden("Admin access required")
	}
	return nil
}
