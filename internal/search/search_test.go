package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readtrack/readtrack-server/internal/domain"
)

func testCatalog() []*domain.Book {
	return []*domain.Book{
		{ID: 1, Title: "Dune", Author: "Frank Herbert", YearPublished: 1965, ShortDescription: "Spice, sandworms and politics on Arrakis"},
		{ID: 2, Title: "Neuromancer", Author: "William Gibson", YearPublished: 1984, ShortDescription: "Cyberpunk heist in the matrix"},
		{ID: 3, Title: "Jane Eyre", Author: "Charlotte Brontë", YearPublished: 1847, ShortDescription: "A governess at Thornfield Hall"},
		{ID: 4, Title: "Children of Dune", Author: "Frank Herbert", YearPublished: 1976, ShortDescription: "The twins of Paul Atreides"},
	}
}

// setupTestIndex creates an index populated with testCatalog.
func setupTestIndex(t *testing.T) *Index {
	t.Helper()

	index, err := NewIndex(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	require.NoError(t, index.IndexBooks(testCatalog()))
	return index
}

func hitIDs(res *Result) []int64 {
	ids := make([]int64, len(res.Hits))
	for i, h := range res.Hits {
		ids[i] = h.BookID
	}
	return ids
}

func TestNewIndex_Empty(t *testing.T) {
	index, err := NewIndex(nil)
	require.NoError(t, err)
	defer index.Close()

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndexBooks(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), count)
}

func TestSearch_ByTitle(t *testing.T) {
	index := setupTestIndex(t)

	res, err := index.Search(context.Background(), Params{Query: "dune"})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), res.Total)
	assert.ElementsMatch(t, []int64{1, 4}, hitIDs(res))
	// The exact title ranks first.
	assert.Equal(t, int64(1), res.Hits[0].BookID)
}

func TestSearch_ByAuthor(t *testing.T) {
	index := setupTestIndex(t)

	res, err := index.Search(context.Background(), Params{Query: "Gibson"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Hits)
	assert.Equal(t, int64(2), res.Hits[0].BookID)
	assert.Equal(t, "William Gibson", res.Hits[0].Author)
}

func TestSearch_FoldsDiacritics(t *testing.T) {
	index := setupTestIndex(t)

	for _, q := range []string{"Bronte", "Brontë"} {
		res, err := index.Search(context.Background(), Params{Query: q})
		require.NoError(t, err, q)
		require.NotEmpty(t, res.Hits, q)
		assert.Equal(t, int64(3), res.Hits[0].BookID, q)
	}
}

func TestSearch_Typo(t *testing.T) {
	index := setupTestIndex(t)

	res, err := index.Search(context.Background(), Params{Query: "neuromancr"})
	require.NoError(t, err)
	assert.Contains(t, hitIDs(res), int64(2))
}

func TestSearch_YearRange(t *testing.T) {
	index := setupTestIndex(t)

	res, err := index.Search(context.Background(), Params{Query: "dune", MinYear: 1970})
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, hitIDs(res))

	res, err = index.Search(context.Background(), Params{MaxYear: 1900})
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, hitIDs(res))
}

func TestSearch_EmptyQueryMatchesAll(t *testing.T) {
	index := setupTestIndex(t)

	res, err := index.Search(context.Background(), Params{})
	require.NoError(t, err)
	assert.Equal(t, uint64(4), res.Total)
}

func TestSearch_Pagination(t *testing.T) {
	index := setupTestIndex(t)

	page1, err := index.Search(context.Background(), Params{Limit: 2})
	require.NoError(t, err)
	page2, err := index.Search(context.Background(), Params{Limit: 2, Offset: 2})
	require.NoError(t, err)

	assert.Len(t, page1.Hits, 2)
	assert.Len(t, page2.Hits, 2)
	assert.NotEqual(t, hitIDs(page1), hitIDs(page2))
}

func TestDeleteBook(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.DeleteBook(2))

	res, err := index.Search(context.Background(), Params{Query: "Neuromancer"})
	require.NoError(t, err)
	assert.NotContains(t, hitIDs(res), int64(2))
}

func TestRebuild(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.Rebuild([]*domain.Book{
		{ID: 10, Title: "Hyperion", Author: "Dan Simmons", YearPublished: 1989},
	}))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	res, err := index.Search(context.Background(), Params{Query: "hyperion"})
	require.NoError(t, err)
	assert.Equal(t, []int64{10}, hitIDs(res))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "Bronte", Fold(" Brontë "))
	assert.Equal(t, "Garcia Marquez", Fold("García Márquez"))
	assert.Equal(t, "Dune", Fold("Dune"))
}
