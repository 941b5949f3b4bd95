// Package upload imports completed workouts from CSV files into a TriTrack
// server. Files already imported unchanged are skipped using a local SQLite
// state database.
package upload

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/tritrack/tritrack/internal/models"
)

// Stats tracks import progress.
type Stats struct {
	FilesTotal    int
	FilesImported int
	FilesSkipped  int
	FilesErrored  int

	WorkoutsSent    int
	WorkoutsFailed  int
	RowsInvalid     int
	RowsPlanned     int
	RowsAlreadySent int
}

// workoutSender is the part of Client the uploader needs.
type workoutSender interface {
	SendWorkout(ctx context.Context, in models.CompletedWorkoutInput) error
}

// Uploader walks a file or directory of CSV exports and logs every completed
// workout row through the REST API.
type Uploader struct {
	client workoutSender
	state  *StateDB
	path   string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader. client may be nil in dry-run mode.
func New(client *Client, state *StateDB, path string, dryRun bool, log *slog.Logger) *Uploader {
	u := &Uploader{
		state:  state,
		path:   path,
		dryRun: dryRun,
		log:    log,
	}
	if client != nil {
		u.client = client
	}
	return u
}

// Run imports every pending file. Each accepted row is recorded as it is
// sent; a file with any failed row stays unmarked and the next run resends
// only the rows the server has not accepted yet.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	files, err := FindCSVFiles(u.path)
	if err != nil {
		return &u.stats, err
	}
	u.stats.FilesTotal = len(files)

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return &u.stats, err
		}
		if err := u.processFile(ctx, path); err != nil {
			u.stats.FilesErrored++
			u.log.Error("import failed", "file", path, "error", err)
		}
	}
	return &u.stats, nil
}

func (u *Uploader) processFile(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	hash, err := HashFile(path)
	if err != nil {
		return fmt.Errorf("hashing: %w", err)
	}

	done, err := u.state.IsImported(path, info.Size(), hash)
	if err != nil {
		return err
	}
	if done {
		u.stats.FilesSkipped++
		u.log.Debug("already imported", "file", path)
		return nil
	}

	f, err := openCSV(path)
	if err != nil {
		return err
	}
	res, err := ParseCSV(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("parsing: %w", err)
	}

	u.stats.RowsPlanned += res.Planned
	u.stats.RowsInvalid += len(res.Invalid)
	for _, rowErr := range res.Invalid {
		u.log.Warn("skipping row", "file", path, "line", rowErr.Line, "error", rowErr.Err)
	}

	if u.dryRun {
		u.log.Info("dry run", "file", path, "workouts", len(res.Rows), "planned", res.Planned, "invalid", len(res.Invalid))
		return nil
	}

	sent, err := u.state.SentRows(path)
	if err != nil {
		return err
	}

	failed := 0
	seen := map[string]int{}
	for _, row := range res.Rows {
		key := row.Key()
		seen[key]++
		if seen[key] <= sent[key] {
			u.stats.RowsAlreadySent++
			continue
		}

		w := row.Workout
		if err := u.client.SendWorkout(ctx, w); err != nil {
			failed++
			u.stats.WorkoutsFailed++
			u.log.Warn("workout rejected", "file", path, "line", row.Line, "date", w.WorkoutDate, "discipline", w.Discipline, "error", err)
			continue
		}
		u.stats.WorkoutsSent++
		if err := u.state.MarkRowSent(path, row, seen[key]); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d workouts failed", failed, len(res.Rows))
	}

	if err := u.state.MarkImported(path, info.Size(), hash, len(res.Rows)); err != nil {
		return err
	}
	u.stats.FilesImported++
	u.log.Info("imported", "file", path, "workouts", len(res.Rows))
	return nil
}

// FindCSVFiles returns path itself when it is a file, or every *.csv and
// *.csv.gz file below it in lexical order when it is a directory.
func FindCSVFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isCSVFile(d.Name()) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", path, err)
	}
	sort.Strings(files)
	return files, nil
}
