// Package main prints a summary of the reading tracker database.
//
// Usage:
//
//	go run ./cmd/dbinspect
//	go run ./cmd/dbinspect -data-path ~/readtrack
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/samber/do/v2"

	"github.com/readtrack/readtrack-server/internal/config"
	"github.com/readtrack/readtrack-server/internal/di"
	"github.com/readtrack/readtrack-server/internal/di/providers"
	"github.com/readtrack/readtrack-server/internal/service"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	injector := di.NewContainerWithConfig(cfg)
	defer func() { _ = injector.Shutdown() }()

	storeHandle, err := do.Invoke[*providers.StoreHandle](injector)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	statsService := do.MustInvoke[*service.StatsService](injector)

	ctx := context.Background()

	fmt.Println("=== Database Inspection ===")
	fmt.Printf("Path: %s\n\n", cfg.Data.DatabasePath())

	bookCount, err := storeHandle.CountBooks(ctx)
	if err != nil {
		log.Fatalf("Failed to count books: %v", err)
	}

	userCount := 0
	activeCount := 0
	for user, err := range storeHandle.StreamUsers(ctx) {
		if err != nil {
			log.Fatalf("Error iterating users: %v", err)
		}
		userCount++

		stats, err := statsService.UserStatistics(ctx, user.ID)
		if err != nil {
			log.Printf("Error reading statistics for %s: %v", user.Username, err)
			continue
		}

		fmt.Printf("User: %s (%s)\n", stats.Username, user.ID)
		fmt.Printf("  Joined: %s\n", stats.DateJoined)
		fmt.Printf("  Total: %s\n", stats.TotalReadingTime)
		fmt.Printf("  Last 7 days: %s\n", stats.Last7Days)
		fmt.Printf("  Last 30 days: %s\n", stats.Last30Days)
		if !stats.UpdatedAt.IsZero() {
			fmt.Printf("  Windows updated: %s\n", stats.UpdatedAt.Format("2006-01-02 15:04"))
		}

		active, err := storeHandle.GetActiveReadingSession(ctx, user.ID)
		if err != nil {
			log.Printf("Error reading active session for %s: %v", user.Username, err)
		} else if active != nil {
			activeCount++
			fmt.Printf("  Reading book %d since %s\n", active.BookID, active.StartTime.Format("2006-01-02 15:04"))
		}
		fmt.Println()
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Total books: %d\n", bookCount)
	fmt.Printf("Total users: %d\n", userCount)
	fmt.Printf("Active sessions: %d\n", activeCount)
}
