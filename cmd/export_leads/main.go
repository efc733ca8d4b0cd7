package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"leadforms/internal/config"
	"leadforms/internal/repository"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Printf("export_leads: %v", err)
		os.Exit(1)
	}
}

// run prints the most recent leads as indented JSON to out. The store is
// always closed before it returns.
func run(ctx context.Context, args []string, out io.Writer) (err error) {
	flags := flag.NewFlagSet("export_leads", flag.ContinueOnError)
	limit := flags.Int("limit", repository.RecentLeadsLimit, "number of leads to print (at most 50)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	// never create tables from a read-only tool
	cfg.Database.AutoMigrate = false

	repo, closeStore, err := repository.Open(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize lead store: %w", err)
	}
	defer func() {
		if closeErr := closeStore(ctx); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close lead store: %w", closeErr)
		}
	}()

	leads, err := repo.FindRecent(ctx, *limit)
	if err != nil {
		return fmt.Errorf("failed to fetch leads: %w", err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(leads); err != nil {
		return fmt.Errorf("failed to write leads: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Exported %d leads\n", len(leads))
	return nil
}
