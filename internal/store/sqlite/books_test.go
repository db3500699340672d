package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/readtrack/readtrack-server/internal/domain"
	"github.com/readtrack/readtrack-server/internal/store"
)

func TestUpsertAndGetBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestBook(t, s, 7, "Dune", "Frank Herbert")

	got, err := s.GetBook(ctx, 7)
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Title != "Dune" || got.Author != "Frank Herbert" {
		t.Errorf("unexpected book: %+v", got)
	}
	if got.FullDescription != "full Dune" {
		t.Errorf("FullDescription: got %q", got.FullDescription)
	}

	// Upsert replaces fields in place.
	got.Title = "Dune (Deluxe)"
	if err := s.UpsertBook(ctx, got); err != nil {
		t.Fatalf("UpsertBook update: %v", err)
	}
	updated, err := s.GetBook(ctx, 7)
	if err != nil {
		t.Fatalf("GetBook after update: %v", err)
	}
	if updated.Title != "Dune (Deluxe)" {
		t.Errorf("Title: got %q", updated.Title)
	}

	n, err := s.CountBooks(ctx)
	if err != nil {
		t.Fatalf("CountBooks: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 book, got %d", n)
	}
}

func TestUpsertBook_AssignsID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := &domain.Book{Title: "Hyperion", Author: "Dan Simmons", YearPublished: 1989}
	if err := s.UpsertBook(ctx, b); err != nil {
		t.Fatalf("UpsertBook: %v", err)
	}
	if b.ID == 0 {
		t.Fatal("expected ID to be assigned")
	}
	if _, err := s.GetBook(ctx, b.ID); err != nil {
		t.Fatalf("GetBook: %v", err)
	}
}

func TestGetBook_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetBook(context.Background(), 404)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListBooks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	books, err := s.ListBooks(ctx)
	if err != nil {
		t.Fatalf("ListBooks empty: %v", err)
	}
	if len(books) != 0 {
		t.Errorf("expected empty catalog, got %d", len(books))
	}

	insertTestBook(t, s, 2, "Neuromancer", "William Gibson")
	insertTestBook(t, s, 1, "Dune", "Frank Herbert")

	books, err = s.ListBooks(ctx)
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("expected 2 books, got %d", len(books))
	}
	if books[0].ID != 1 || books[1].ID != 2 {
		t.Errorf("expected ID order [1 2], got [%d %d]", books[0].ID, books[1].ID)
	}
}

func TestGetBooksByIDs_PreservesOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestBook(t, s, 1, "Dune", "Frank Herbert")
	insertTestBook(t, s, 2, "Neuromancer", "William Gibson")
	insertTestBook(t, s, 3, "Hyperion", "Dan Simmons")

	books, err := s.GetBooksByIDs(ctx, []int64{3, 99, 1})
	if err != nil {
		t.Fatalf("GetBooksByIDs: %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("expected 2 books, got %d", len(books))
	}
	if books[0].ID != 3 || books[1].ID != 1 {
		t.Errorf("expected order [3 1], got [%d %d]", books[0].ID, books[1].ID)
	}

	none, err := s.GetBooksByIDs(ctx, nil)
	if err != nil {
		t.Fatalf("GetBooksByIDs nil: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no books, got %d", len(none))
	}
}
