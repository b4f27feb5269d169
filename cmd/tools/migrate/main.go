// Command migrate applies the recipe store schema and optionally prunes old runs.
//
// Usage:
//
//	go run ./cmd/tools/migrate [-prune-older-than 720h]
//
// Requires DATABASE_URL environment variable to be set.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonathan/fragrance-customizer/internal/db"
)

func main() {
	_ = godotenv.Load()

	pruneOlderThan := flag.Duration("prune-older-than", 0, "Delete recipe runs older than this duration (0 keeps everything)")
	timeout := flag.Duration("timeout", 30*time.Second, "Overall timeout")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "ERROR: DATABASE_URL environment variable not set")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, dsn, *pruneOlderThan); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, dsn string, pruneOlderThan time.Duration) error {
	database, err := db.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer database.Close()

	fmt.Println("=== Recipe Store Migration ===")

	if err := database.EnsureSchema(ctx); err != nil {
		return err
	}
	fmt.Println("  ✓ Schema applied")

	if pruneOlderThan <= 0 {
		return nil
	}

	cutoff := time.Now().Add(-pruneOlderThan)
	removed, err := database.PruneRecipeRuns(ctx, cutoff)
	if err != nil {
		return err
	}
	fmt.Printf("  ✓ Pruned %d runs created before %s\n", removed, cutoff.Format(time.RFC3339))
	return nil
}
