// Package search provides full-text search over the book catalog using an
// in-memory Bleve index rebuilt from the store at startup.
package search

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/readtrack/readtrack-server/internal/domain"
)

// BookDocument is the indexed form of a catalog entry.
type BookDocument struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Year        int    `json:"year"`
}

// DocumentFromBook converts a book into its indexed form. Text fields are
// folded so that "Brontë" and "Bronte" index to the same terms.
func DocumentFromBook(b *domain.Book) *BookDocument {
	return &BookDocument{
		ID:          DocID(b.ID),
		Title:       Fold(b.Title),
		Author:      Fold(b.Author),
		Description: Fold(b.ShortDescription),
		Year:        b.YearPublished,
	}
}

// ToMap returns the document keyed by mapped field names.
func (d *BookDocument) ToMap() map[string]any {
	return map[string]any{
		"id":          d.ID,
		"title":       d.Title,
		"author":      d.Author,
		"description": d.Description,
		"year":        float64(d.Year),
	}
}

// DocID is the index identifier for a book.
func DocID(bookID int64) string {
	return strconv.FormatInt(bookID, 10)
}

// ParseDocID is the inverse of DocID.
func ParseDocID(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}

// Fold strips diacritics and surrounding whitespace.
func Fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(out)
}
