package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/readtrack/readtrack-server/internal/domain"
	"github.com/readtrack/readtrack-server/internal/store"
)

const bookColumns = `id, title, author, year_published, short_description, full_description`

func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book
	err := scanner.Scan(
		&b.ID,
		&b.Title,
		&b.Author,
		&b.YearPublished,
		&b.ShortDescription,
		&b.FullDescription,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// UpsertBook inserts a book or replaces the catalog fields of an existing one.
// A zero ID lets SQLite assign one, which is written back to book.ID.
func (s *Store) UpsertBook(ctx context.Context, book *domain.Book) error {
	if book.ID == 0 {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO books (title, author, year_published, short_description, full_description)
			VALUES (?, ?, ?, ?, ?)`,
			book.Title, book.Author, book.YearPublished, book.ShortDescription, book.FullDescription,
		)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		book.ID = id
		return nil
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO books (`+bookColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			author = excluded.author,
			year_published = excluded.year_published,
			short_description = excluded.short_description,
			full_description = excluded.full_description`,
		book.ID, book.Title, book.Author, book.YearPublished, book.ShortDescription, book.FullDescription,
	)
	return err
}

// GetBook retrieves a book by ID.
// Returns store.ErrBookNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, id)

	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListBooks returns the whole catalog ordered by ID.
func (s *Store) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

// GetBooksByIDs returns the books for the given IDs in the order requested.
// IDs with no matching book are skipped.
func (s *Store) GetBooksByIDs(ctx context.Context, ids []int64) ([]*domain.Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[int64]*domain.Book, len(ids))
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		byID[b.ID] = b
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	books := make([]*domain.Book, 0, len(byID))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			books = append(books, b)
		}
	}
	return books, nil
}

// CountBooks returns the number of books in the catalog.
func (s *Store) CountBooks(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&n)
	return n, err
}
