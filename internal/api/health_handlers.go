package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

const (
	healthOK       = "ok"
	healthDegraded = "degraded"
	healthDown     = "down"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Reports database reachability and whether the search index covers the whole catalog. Responds 503 when the database is down.",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// HealthCheck is the result of one probe.
type HealthCheck struct {
	Name   string `json:"name" example:"database"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// HealthResponse summarizes the probes.
type HealthResponse struct {
	Status  string        `json:"status" enum:"ok,degraded,down"`
	Books   int           `json:"books" doc:"Books in the catalog"`
	Indexed uint64        `json:"indexed" doc:"Books in the search index"`
	Checks  []HealthCheck `json:"checks"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Status int
	Body   HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	resp := HealthResponse{Status: healthOK}

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Error("health: database ping failed", "error", err)
		resp.Status = healthDown
		resp.Checks = append(resp.Checks, HealthCheck{Name: "database", Detail: "ping failed"})
		return &HealthOutput{Status: http.StatusServiceUnavailable, Body: resp}, nil
	}
	resp.Checks = append(resp.Checks, HealthCheck{Name: "database", OK: true})

	books, err := s.store.CountBooks(ctx)
	if err != nil {
		resp.Status = healthDown
		resp.Checks = append(resp.Checks, HealthCheck{Name: "catalog", Detail: "count failed"})
		return &HealthOutput{Status: http.StatusServiceUnavailable, Body: resp}, nil
	}
	resp.Books = books

	resp.Checks = append(resp.Checks, s.checkSearchIndex(&resp))

	return &HealthOutput{Status: http.StatusOK, Body: resp}, nil
}

// checkSearchIndex flags an index that lags behind the catalog, e.g. after
// rows were written to the database by another process.
func (s *Server) checkSearchIndex(resp *HealthResponse) HealthCheck {
	indexed, err := s.services.Book.IndexedCount()
	if err != nil {
		resp.Status = healthDegraded
		return HealthCheck{Name: "search", Detail: "index unreadable"}
	}
	resp.Indexed = indexed

	if indexed != uint64(resp.Books) {
		resp.Status = healthDegraded
		return HealthCheck{
			Name:   "search",
			Detail: fmt.Sprintf("index holds %d of %d books", indexed, resp.Books),
		}
	}
	return HealthCheck{Name: "search", OK: true}
}
