package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/tritrack/tritrack/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "TriTrack server URL (e.g. https://tritrack.example.com)")
	token := flag.String("token", os.Getenv("TRITRACK_TOKEN"), "bearer token (defaults to $TRITRACK_TOKEN)")
	apiKey := flag.String("api-key", os.Getenv("TRITRACK_API_KEY"), "API key, used when no token is given")
	path := flag.String("path", "", "CSV file or directory of CSV files")
	dryRun := flag.Bool("dry-run", false, "parse files but don't send to server")
	stateDir := flag.String("state-dir", "", "directory for the import state database (default ~/.tritrack-import)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("tritrack-import", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *path == "" {
		fmt.Fprintf(os.Stderr, "Usage: tritrack-import -server <URL> -token <token> -path <file or dir> [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if !*dryRun {
		if *serverURL == "" {
			fmt.Fprintf(os.Stderr, "Error: -server is required (or use -dry-run)\n")
			os.Exit(1)
		}
		if *token == "" && *apiKey == "" {
			fmt.Fprintf(os.Stderr, "Error: -token or -api-key is required (or use -dry-run)\n")
			os.Exit(1)
		}
	}
	*serverURL = strings.TrimRight(*serverURL, "/")

	dir := *stateDir
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}
		dir = filepath.Join(homeDir, ".tritrack-import")
	}
	state, err := upload.OpenStateDB(dir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	var client *upload.Client
	if !*dryRun {
		client = upload.NewClient(*serverURL, *token, *apiKey)
	} else {
		log.Info("DRY RUN mode: files will be parsed but not sent")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stats, err := upload.New(client, state, *path, *dryRun, log).Run(ctx)
	printStats(stats)
	if err != nil {
		log.Error("import failed", "error", err)
		os.Exit(1)
	}
	if stats.FilesErrored > 0 {
		os.Exit(1)
	}
	log.Info("import complete")
}

func printStats(stats *upload.Stats) {
	fmt.Println()
	fmt.Println("=== Import Summary ===")
	fmt.Printf("  Files total:      %d\n", stats.FilesTotal)
	fmt.Printf("  Files imported:   %d\n", stats.FilesImported)
	fmt.Printf("  Files skipped:    %d (already imported)\n", stats.FilesSkipped)
	fmt.Printf("  Files errored:    %d\n", stats.FilesErrored)
	fmt.Println()
	fmt.Printf("  Workouts sent:    %d\n", stats.WorkoutsSent)
	fmt.Printf("  Workouts failed:  %d\n", stats.WorkoutsFailed)
	fmt.Printf("  Already sent:     %d (skipped)\n", stats.RowsAlreadySent)
	fmt.Printf("  Planned rows:     %d (ignored)\n", stats.RowsPlanned)
	fmt.Printf("  Invalid rows:     %d\n", stats.RowsInvalid)
	fmt.Println()
}
