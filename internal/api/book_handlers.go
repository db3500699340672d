package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readtrack/readtrack-server/internal/domain"
	"github.com/readtrack/readtrack-server/internal/search"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/",
		Summary:     "List books",
		Description: "Returns every book in the catalog without its full description",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/book-details/{id}/",
		Summary:     "Get book",
		Description: "Returns the full catalog record for a book",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/search",
		Summary:     "Search books",
		Description: "Full-text search over title, author and description, accent and case insensitive",
		Tags:        []string{"Books"},
	}, s.handleSearchBooks)
}

// === DTOs ===

// ListBooksOutput wraps the book list for Huma.
type ListBooksOutput struct {
	Body []domain.BookSummary
}

// GetBookInput contains parameters for getting a book.
type GetBookInput struct {
	ID int64 `path:"id" doc:"Book ID"`
}

// BookOutput wraps a full book record for Huma.
type BookOutput struct {
	Body *domain.Book
}

// SearchBooksInput contains parameters for searching the catalog.
type SearchBooksInput struct {
	Query   string `query:"q" maxLength:"200" doc:"Search query; empty matches every book"`
	MinYear int    `query:"min_year" minimum:"0" doc:"Earliest publication year"`
	MaxYear int    `query:"max_year" minimum:"0" doc:"Latest publication year"`
	Limit   int    `query:"limit" minimum:"0" maximum:"100" doc:"Max results (default 20)"`
	Offset  int    `query:"offset" minimum:"0" doc:"Pagination offset"`
}

// SearchHit is one matching book.
type SearchHit struct {
	Book  domain.BookSummary `json:"book" doc:"Matching book"`
	Score float64            `json:"score" doc:"Search relevance score"`
}

// SearchResponse contains one page of search results.
type SearchResponse struct {
	Query string      `json:"query" doc:"Original search query"`
	Total uint64      `json:"total" doc:"Total matches"`
	Hits  []SearchHit `json:"hits" doc:"Search results"`
}

// SearchBooksOutput wraps the search response for Huma.
type SearchBooksOutput struct {
	Body SearchResponse
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, _ *struct{}) (*ListBooksOutput, error) {
	books, err := s.services.Book.ListBooks(ctx)
	if err != nil {
		return nil, err
	}

	return &ListBooksOutput{Body: books}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
	book, err := s.services.Book.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: book}, nil
}

func (s *Server) handleSearchBooks(ctx context.Context, input *SearchBooksInput) (*SearchBooksOutput, error) {
	s.logger.Debug("Search request received",
		"query", input.Query,
		"limit", input.Limit,
	)

	res, err := s.services.Book.SearchBooks(ctx, search.Params{
		Query:   input.Query,
		MinYear: input.MinYear,
		MaxYear: input.MaxYear,
		Limit:   input.Limit,
		Offset:  input.Offset,
	})
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHit, len(res.Hits))
	for i, h := range res.Hits {
		hits[i] = SearchHit{Book: h.Book, Score: h.Score}
	}

	return &SearchBooksOutput{
		Body: SearchResponse{
			Query: res.Query,
			Total: res.Total,
			Hits:  hits,
		},
	}, nil
}
