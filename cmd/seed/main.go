// Package main loads books into the catalog from a JSON file.
//
// The file holds an array of books in the same shape the book-details
// endpoint returns. Books without an id are inserted; books with an id
// replace the stored row.
//
// Usage:
//
//	go run ./cmd/seed -file books.json
//	go run ./cmd/seed -file books.json -- -data-path ~/readtrack
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/readtrack/readtrack-server/internal/config"
	"github.com/readtrack/readtrack-server/internal/di"
	"github.com/readtrack/readtrack-server/internal/domain"
	"github.com/readtrack/readtrack-server/internal/service"
)

func main() {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	file := fs.String("file", "", "Path to a JSON array of books")
	_ = fs.Parse(os.Args[1:])

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: seed -file books.json [-- config flags]")
		os.Exit(2)
	}

	if err := run(*file, fs.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run(path string, configArgs []string) error {
	books, err := readBooks(path)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configArgs)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	injector := di.NewContainerWithConfig(cfg)
	defer func() { _ = injector.Shutdown() }()

	bookService, err := do.Invoke[*service.BookService](injector)
	if err != nil {
		return fmt.Errorf("init book service: %w", err)
	}

	n, err := bookService.ImportBooks(context.Background(), books)
	if err != nil {
		return fmt.Errorf("import stopped after %d books: %w", n, err)
	}

	fmt.Printf("Imported %d books into %s\n", n, cfg.Data.DatabasePath())
	return nil
}

func readBooks(path string) ([]*domain.Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var books []*domain.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return books, nil
}
