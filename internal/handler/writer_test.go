package handler

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"testing"
	"time"
)

// tickingClock advances one second per call so every rotation gets a
// distinct filename.
func tickingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func newTestWriter(t *testing.T, opts WriterOptions) *Writer {
	t.Helper()
	timeNow = tickingClock(time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC))
	t.Cleanup(func() { timeNow = time.Now })

	if opts.Subdir == "" {
		opts.Subdir = filepath.Join(t.TempDir(), "twitter-files")
	}
	w, err := NewWriter(opts)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	return w
}

func readLines(t *testing.T, path string, gzipped bool) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer func() { _ = f.Close() }()

	var scanner *bufio.Scanner
	if gzipped {
		gz, err := gzip.NewReader(f)
		if err != nil {
			t.Fatalf("gzip reader: %v", err)
		}
		defer func() { _ = gz.Close() }()
		scanner = bufio.NewScanner(gz)
	} else {
		scanner = bufio.NewScanner(f)
	}

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return lines
}

func TestWriter_CapsAtLimit(t *testing.T) {
	w := newTestWriter(t, WriterOptions{Limit: 3})
	now := time.Now()

	offered, dispatched := 5, 0
	for i := 0; i < offered; i++ {
		cont, err := Dispatch(w, makeRecord(int64(i+1), now))
		if err != nil {
			t.Fatalf("dispatch: %v", err)
		}
		dispatched++

		wantCont := w.Counter < 3
		if cont != wantCont {
			t.Errorf("after %d records: doContinue = %v, want %v", w.Counter, cont, wantCont)
		}
		if !cont {
			break
		}
	}
	path := w.Path()
	w.OnFinish()

	if dispatched != 3 {
		t.Fatalf("dispatched %d records, want 3", dispatched)
	}
	lines := readLines(t, path, false)
	if len(lines) != 3 {
		t.Fatalf("wrote %d lines, want 3", len(lines))
	}
}

func TestWriter_PathPattern(t *testing.T) {
	subdir := filepath.Join(t.TempDir(), "out")
	w := newTestWriter(t, WriterOptions{Limit: 1, Subdir: subdir, Prefix: "tweets"})

	want := regexp.MustCompile(`^tweets\.\d{8}-\d{6}\.json$`)
	if base := filepath.Base(w.Path()); !want.MatchString(base) {
		t.Errorf("filename %q does not match pattern", base)
	}
	if filepath.Dir(w.Path()) != subdir {
		t.Errorf("dir = %q, want %q", filepath.Dir(w.Path()), subdir)
	}
	if _, err := os.Stat(subdir); err != nil {
		t.Errorf("subdir not created: %v", err)
	}
}

func TestWriter_RepeatRotates(t *testing.T) {
	subdir := filepath.Join(t.TempDir(), "out")
	w := newTestWriter(t, WriterOptions{Limit: 2, Repeat: true, Subdir: subdir})
	now := time.Now()

	for i := 0; i < 6; i++ {
		cont, err := Dispatch(w, makeRecord(int64(i+1), now))
		if err != nil {
			t.Fatalf("dispatch: %v", err)
		}
		if !cont {
			t.Fatalf("doContinue turned false at record %d; repeat must not stop on count", i+1)
		}
	}

	// The sixth record triggered a rotation, so the counter is fresh.
	if w.Counter != 0 {
		t.Errorf("counter = %d, want 0 after rotation", w.Counter)
	}

	entries, err := os.ReadDir(subdir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	if len(names) != 3 {
		t.Fatalf("got %d files (%v), want 3", len(names), names)
	}
	for _, name := range names {
		lines := readLines(t, filepath.Join(subdir, name), false)
		if len(lines) != 2 {
			t.Errorf("%s: %d lines, want 2", name, len(lines))
		}
	}
}

func TestWriter_DateLimitStream(t *testing.T) {
	boundary := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	w := newTestWriter(t, WriterOptions{Limit: 10, Repeat: true, Stream: true, DateLimit: boundary})

	// Still inside the boundary: collection goes on.
	if cont, err := Dispatch(w, makeRecord(1, boundary.Add(-time.Hour))); err != nil || !cont {
		t.Fatalf("in-range record: cont %v, err %v", cont, err)
	}

	// Newer than the boundary: stream mode stops.
	cont, err := Dispatch(w, makeRecord(2, boundary.Add(time.Hour)))
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if cont {
		t.Fatal("doContinue must be false after the boundary is crossed")
	}
	if !w.DoStop {
		t.Fatal("doStop not set")
	}

	// The flag is sticky: further records cannot clear it.
	if cont, _ := Dispatch(w, makeRecord(3, boundary.Add(-time.Hour))); cont {
		t.Fatal("doStop must remain set")
	}
	if !w.DoStop {
		t.Fatal("doStop was cleared")
	}
}

func TestWriter_DateLimitSearch(t *testing.T) {
	boundary := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	w := newTestWriter(t, WriterOptions{Limit: 10, Stream: false, DateLimit: boundary})

	if cont, err := Dispatch(w, makeRecord(1, boundary.Add(time.Hour))); err != nil || !cont {
		t.Fatalf("in-range record: cont %v, err %v", cont, err)
	}

	// Older than the boundary: search mode stops.
	cont, err := Dispatch(w, makeRecord(2, boundary.Add(-time.Hour)))
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if cont {
		t.Fatal("doContinue must be false after the boundary is crossed")
	}
}

func TestWriter_StopWinsOverRotation(t *testing.T) {
	w := newTestWriter(t, WriterOptions{Limit: 2, Repeat: true})
	w.Counter = 2
	w.DoStop = true
	before := w.Path()

	if w.DoContinue() {
		t.Fatal("doContinue must be false when doStop is set")
	}
	if w.Path() != before || w.Counter != 2 {
		t.Fatal("rotation must not run once doStop is set")
	}
}

func TestWriter_Gzip(t *testing.T) {
	w := newTestWriter(t, WriterOptions{Limit: 2, Gzip: true})
	now := time.Now()

	for i := 0; i < 2; i++ {
		if _, err := Dispatch(w, makeRecord(int64(i+1), now)); err != nil {
			t.Fatalf("dispatch: %v", err)
		}
	}
	path := w.Path()
	w.OnFinish()

	if filepath.Ext(path) != ".gz" {
		t.Errorf("path %q should end in .gz", path)
	}
	lines := readLines(t, path, true)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	var decoded struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &decoded); err != nil || decoded.ID != 1 {
		t.Errorf("line[0] = %q (err %v)", lines[0], err)
	}
}
