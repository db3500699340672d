// Package domain holds the core entities of the reading tracker and the pure rules that operate on them.
package domain

// Book is immutable catalog reference data.
type Book struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	Author           string `json:"author"`
	YearPublished    int    `json:"year_published"`
	ShortDescription string `json:"short_description"`
	FullDescription  string `json:"full_description"`
}

// BookSummary is a Book without its full description, used for listings and statistics.
type BookSummary struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	Author           string `json:"author"`
	YearPublished    int    `json:"year_published"`
	ShortDescription string `json:"short_description"`
}

// Summary drops the full description.
func (b *Book) Summary() BookSummary {
	return BookSummary{
		ID:               b.ID,
		Title:            b.Title,
		Author:           b.Author,
		YearPublished:    b.YearPublished,
		ShortDescription: b.ShortDescription,
	}
}
