package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"cinelog/internal/config"
	"cinelog/internal/importer"
	"cinelog/internal/log"
	"cinelog/internal/store"
)

func main() {
	var file string
	flag.StringVar(&file, "file", "", "CSV file to import (nombre, año, poster_url)")
	flag.Parse()

	if file == "" {
		fmt.Fprintln(os.Stderr, "Usage: cinelog-import -file movies.csv")
		os.Exit(1)
	}

	if err := run(file); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(file string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.IsConfigured() {
		return fmt.Errorf("no store configured; run cinelog once to set up")
	}

	logger, err := log.SetupLogger(cfg.Logging.File, cfg.Logging.Level)
	if err != nil {
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	docStore, err := store.Open(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open document store: %w", err)
	}
	defer docStore.Close()

	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", file, err)
	}
	defer f.Close()

	fmt.Printf("Importing from %s...\n\n", file)

	report, err := importer.Run(context.Background(), docStore, f, logger, func(row importer.RowStatus) {
		if row.Err != nil {
			fmt.Printf("✗ row %d: %v\n", row.Row, row.Err)
			return
		}
		fmt.Printf("✓ %s (%d)\n", row.Name, row.Year)
	})
	if err != nil {
		return err
	}

	fmt.Printf("\nDone: %d imported, %d failed, %d total\n",
		report.Imported, report.Failed, report.Total)
	return nil
}
