package upload

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func openTestState(t *testing.T) *StateDB {
	t.Helper()
	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStateDB: %v", err)
	}
	t.Cleanup(func() { state.Close() })
	return state
}

// TestStateDB verifies that a file counts as imported only with the same
// size and hash it was recorded with.
func TestStateDB(t *testing.T) {
	state := openTestState(t)

	ok, err := state.IsImported("a.csv", 10, "abc")
	if err != nil || ok {
		t.Fatalf("IsImported before mark = %v, %v", ok, err)
	}
	if err := state.MarkImported("a.csv", 10, "abc", 3); err != nil {
		t.Fatalf("MarkImported: %v", err)
	}
	if ok, _ := state.IsImported("a.csv", 10, "abc"); !ok {
		t.Error("expected a.csv to be imported")
	}
	if ok, _ := state.IsImported("a.csv", 11, "abd"); ok {
		t.Error("changed file should not count as imported")
	}
}

func TestFindCSVFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.csv"), "")
	writeFile(t, filepath.Join(dir, "nested", "a.CSV"), "")
	writeFile(t, filepath.Join(dir, "notes.txt"), "")
	writeFile(t, filepath.Join(dir, "older.csv.gz"), "")

	files, err := FindCSVFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(dir, "b.csv"),
		filepath.Join(dir, "nested", "a.CSV"),
		filepath.Join(dir, "older.csv.gz"),
	}
	if len(files) != len(want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %s, want %s", i, files[i], want[i])
		}
	}

	single, err := FindCSVFiles(filepath.Join(dir, "b.csv"))
	if err != nil || len(single) != 1 {
		t.Errorf("single file = %v, %v", single, err)
	}

	if _, err := FindCSVFiles(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing path")
	}
}

const sampleCSV = `date,discipline,status,actual_duration_minutes
2024-03-12,swim,planned,
2024-03-13,run,completed,50
2024-03-14,bike,completed,90
`

// TestUploaderRun verifies a full import followed by a rerun that skips the
// unchanged file.
func TestUploaderRun(t *testing.T) {
	var posts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts.Add(1)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "march.csv"), sampleCSV)
	state := openTestState(t)
	client := newTestClient(srv.URL, "tok", "")

	stats, err := New(client, state, dir, false, discardLogger()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.FilesImported != 1 || stats.WorkoutsSent != 2 || stats.RowsPlanned != 1 {
		t.Errorf("first run stats = %+v", stats)
	}
	if n := posts.Load(); n != 2 {
		t.Errorf("server received %d workouts, want 2", n)
	}

	stats, err = New(client, state, dir, false, discardLogger()).Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if stats.FilesSkipped != 1 || stats.WorkoutsSent != 0 {
		t.Errorf("second run stats = %+v", stats)
	}
	if n := posts.Load(); n != 2 {
		t.Errorf("server received %d workouts after rerun, want 2", n)
	}
}

// TestUploaderRunFailureLeavesFileUnmarked verifies that a file with a
// rejected workout is retried on the next run.
func TestUploaderRunFailureLeavesFileUnmarked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "march.csv")
	writeFile(t, path, sampleCSV)
	state := openTestState(t)

	stats, err := New(newTestClient(srv.URL, "tok", ""), state, dir, false, discardLogger()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.FilesErrored != 1 || stats.WorkoutsFailed != 2 || stats.FilesImported != 0 {
		t.Errorf("stats = %+v", stats)
	}

	info, _ := os.Stat(path)
	hash, _ := HashFile(path)
	if ok, _ := state.IsImported(path, info.Size(), hash); ok {
		t.Error("failed file should not be marked imported")
	}
}

func TestUploaderDryRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "march.csv"), sampleCSV+"bad-date,run,completed,10\n")
	state := openTestState(t)

	stats, err := New(nil, state, dir, true, discardLogger()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.FilesTotal != 1 || stats.RowsInvalid != 1 || stats.WorkoutsSent != 0 || stats.FilesImported != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

// TestUploaderReadsGzip verifies that compressed exports are imported like
// plain ones.
func TestUploaderReadsGzip(t *testing.T) {
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "march.csv.gz"))
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte(sampleCSV)); err != nil {
		t.Fatal(err)
	}
	zw.Close()
	f.Close()

	stats, err := New(nil, openTestState(t), dir, true, discardLogger()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.FilesTotal != 1 || stats.FilesErrored != 0 || stats.RowsPlanned != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

// TestUploaderRerunSkipsAcceptedRows verifies that rerunning a file whose
// rows were partly rejected resends only the rejected rows, while identical
// rows in the file are each sent exactly once.
func TestUploaderRerunSkipsAcceptedRows(t *testing.T) {
	var accepted, rejected atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Discipline string `json:"discipline"`
		}
		json.NewDecoder(r.Body).Decode(&in)
		if in.Discipline == "swim" {
			rejected.Add(1)
			http.Error(w, `{"error":"rejected"}`, http.StatusBadRequest)
			return
		}
		accepted.Add(1)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.csv"), `date,discipline,duration
2024-03-01,run,30
2024-03-01,run,30
2024-03-02,swim,99
`)
	state := openTestState(t)
	client := newTestClient(srv.URL, "tok", "")

	for run := 1; run <= 3; run++ {
		stats, err := New(client, state, dir, false, discardLogger()).Run(context.Background())
		if err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		if stats.FilesErrored != 1 || stats.WorkoutsFailed != 1 {
			t.Errorf("run %d stats = %+v", run, stats)
		}
		if run > 1 && (stats.RowsAlreadySent != 2 || stats.WorkoutsSent != 0) {
			t.Errorf("run %d resent accepted rows: %+v", run, stats)
		}
	}

	if n := accepted.Load(); n != 2 {
		t.Errorf("server accepted %d run workouts over 3 runs, want 2", n)
	}
	if n := rejected.Load(); n != 3 {
		t.Errorf("rejected row tried %d times, want 3", n)
	}
}

func TestStateDBSentRows(t *testing.T) {
	state := openTestState(t)
	row := Row{Line: 2, Workout: testWorkout()}

	sent, err := state.SentRows("a.csv")
	if err != nil || len(sent) != 0 {
		t.Fatalf("SentRows before mark = %v, %v", sent, err)
	}
	for _, occurrence := range []int{1, 2, 2} {
		if err := state.MarkRowSent("a.csv", row, occurrence); err != nil {
			t.Fatalf("MarkRowSent: %v", err)
		}
	}
	sent, err = state.SentRows("a.csv")
	if err != nil {
		t.Fatal(err)
	}
	if sent[row.Key()] != 2 {
		t.Errorf("sent[%s] = %d, want 2", row.Key(), sent[row.Key()])
	}
	if other, _ := state.SentRows("b.csv"); len(other) != 0 {
		t.Errorf("rows leaked to another file: %v", other)
	}
}
