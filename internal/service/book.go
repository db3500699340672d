package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/readtrack/readtrack-server/internal/domain"
	domainerrors "github.com/readtrack/readtrack-server/internal/errors"
	"github.com/readtrack/readtrack-server/internal/search"
	"github.com/readtrack/readtrack-server/internal/store"
)

// BookSearchHit is a catalog entry matched by a search.
type BookSearchHit struct {
	Book  domain.BookSummary `json:"book"`
	Score float64            `json:"score"`
}

// BookSearchResult is one page of search results.
type BookSearchResult struct {
	Query string          `json:"query"`
	Total uint64          `json:"total"`
	Hits  []BookSearchHit `json:"hits"`
}

// BookService serves the read-only book catalog and keeps the search index
// in step with it.
type BookService struct {
	store  store.Store
	index  *search.Index
	logger *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(store store.Store, index *search.Index, logger *slog.Logger) *BookService {
	return &BookService{
		store:  store,
		index:  index,
		logger: logger,
	}
}

// ListBooks returns every book without its full description.
func (s *BookService) ListBooks(ctx context.Context) ([]domain.BookSummary, error) {
	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	summaries := make([]domain.BookSummary, len(books))
	for i, b := range books {
		summaries[i] = b.Summary()
	}
	return summaries, nil
}

// GetBook returns the full record for a book.
func (s *BookService) GetBook(ctx context.Context, bookID int64) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound(MsgBookNotFound)
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// SearchBooks runs a full-text query and resolves hits against the store,
// dropping any hit whose book no longer exists.
func (s *BookService) SearchBooks(ctx context.Context, params search.Params) (*BookSearchResult, error) {
	res, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}

	ids := make([]int64, len(res.Hits))
	scores := make(map[int64]float64, len(res.Hits))
	for i, h := range res.Hits {
		ids[i] = h.BookID
		scores[h.BookID] = h.Score
	}

	books, err := s.store.GetBooksByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve search hits: %w", err)
	}

	result := &BookSearchResult{
		Query: params.Query,
		Total: res.Total,
		Hits:  make([]BookSearchHit, 0, len(books)),
	}
	for _, b := range books {
		result.Hits = append(result.Hits, BookSearchHit{Book: b.Summary(), Score: scores[b.ID]})
	}
	return result, nil
}

// ImportBooks upserts books into the catalog and indexes them.
// It returns the number of books written.
func (s *BookService) ImportBooks(ctx context.Context, books []*domain.Book) (int, error) {
	for i, b := range books {
		if b.Title == "" || b.Author == "" {
			return i, domainerrors.Validation(fmt.Sprintf("book %d: title and author are required", i))
		}
		if err := s.store.UpsertBook(ctx, b); err != nil {
			return i, fmt.Errorf("upsert book %q: %w", b.Title, err)
		}
	}

	if err := s.index.IndexBooks(books); err != nil {
		return len(books), fmt.Errorf("index books: %w", err)
	}

	s.logger.Info("imported books", "count", len(books))
	return len(books), nil
}

// ReindexCatalog rebuilds the search index from the store.
func (s *BookService) ReindexCatalog(ctx context.Context) (int, error) {
	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return 0, fmt.Errorf("list books: %w", err)
	}
	if err := s.index.Rebuild(books); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}
	return len(books), nil
}

// IndexedCount reports how many books the search index holds.
func (s *BookService) IndexedCount() (uint64, error) {
	return s.index.DocumentCount()
}
