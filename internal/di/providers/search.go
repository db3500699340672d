package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/readtrack/readtrack-server/internal/logger"
	"github.com/readtrack/readtrack-server/internal/search"
	"github.com/readtrack/readtrack-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the in-memory bleve index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewIndex(log.Logger)
	if err != nil {
		return nil, err
	}

	return &SearchIndexHandle{Index: index}, nil
}

// IndexCatalog fills the search index from the store. The index lives in
// memory, so this runs on every start.
func IndexCatalog(i do.Injector) error {
	bookService := do.MustInvoke[*service.BookService](i)
	log := do.MustInvoke[*logger.Logger](i)

	count, err := bookService.ReindexCatalog(context.Background())
	if err != nil {
		return err
	}

	log.Info("Search index initialized", "documents", count)
	return nil
}
