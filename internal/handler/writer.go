package handler

import (
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/larkerhq/larker/internal/twitter"
)

const (
	defaultWriterLimit = 2000
	defaultSubdir      = "twitter-files"
	defaultPrefix      = "tweets"
	fileTimestamp      = "20060102-150405"
)

// timeNow stamps output filenames. It defaults to time.Now but can be
// overridden in tests.
var timeNow = time.Now

// WriterOptions configures a file writer.
type WriterOptions struct {
	Limit     int
	DateLimit time.Time

	// Stream flips the direction of the date-limit comparison: a live
	// feed stops once records get newer than the limit, a historical
	// search stops once they get older.
	Stream bool

	// Repeat rotates to a fresh output file every Limit records
	// instead of stopping.
	Repeat bool

	Gzip   bool
	Subdir string
	Prefix string
}

// Writer persists each record as one line of JSON in a timestamped
// file, optionally gzip-compressed, rotating files in repeat mode.
type Writer struct {
	State

	prefix     string
	subdir     string
	gzip       bool
	stream     bool
	fname      string
	startingup bool

	file *os.File
	gzw  *gzip.Writer
}

// NewWriter creates a file writer, creating the output directory if it
// does not exist yet.
func NewWriter(opts WriterOptions) (*Writer, error) {
	if opts.Limit == 0 {
		opts.Limit = defaultWriterLimit
	}
	if opts.Subdir == "" {
		opts.Subdir = defaultSubdir
	}
	if opts.Prefix == "" {
		opts.Prefix = defaultPrefix
	}

	if err := os.MkdirAll(opts.Subdir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	w := &Writer{
		State: State{
			Limit:     opts.Limit,
			Repeat:    opts.Repeat,
			DateLimit: opts.DateLimit,
		},
		prefix:     opts.Prefix,
		subdir:     opts.Subdir,
		gzip:       opts.Gzip,
		stream:     opts.Stream,
		startingup: true,
	}
	w.fname = w.timestampedPath()
	return w, nil
}

// Path returns the current output file path.
func (w *Writer) Path() string { return w.fname }

func (w *Writer) timestampedPath() string {
	suffix := ".json"
	if w.gzip {
		suffix += ".gz"
	}
	name := fmt.Sprintf("%s.%s%s", w.prefix, timeNow().Format(fileTimestamp), suffix)
	return filepath.Join(w.subdir, name)
}

func (w *Writer) open() error {
	f, err := os.Create(w.fname)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	w.file = f
	if w.gzip {
		w.gzw = gzip.NewWriter(f)
	}
	fmt.Printf("Writing to %s\n", w.fname)
	return nil
}

func (w *Writer) write(line []byte) error {
	var err error
	if w.gzw != nil {
		_, err = w.gzw.Write(line)
	} else {
		_, err = w.file.Write(line)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", w.fname, err)
	}
	return nil
}

func (w *Writer) Handle(rec twitter.Record) error {
	if w.startingup {
		if err := w.open(); err != nil {
			return err
		}
	}

	doc, err := rec.JSON()
	if err != nil {
		return err
	}
	if err := w.write(append(doc, '\n')); err != nil {
		return err
	}

	if !w.DateLimit.IsZero() {
		ts, err := rec.Time()
		if err != nil {
			return err
		}
		if (w.stream && ts.After(w.DateLimit)) || (!w.stream && ts.Before(w.DateLimit)) {
			relation := "later"
			if w.stream {
				relation = "earlier"
			}
			fmt.Printf("Date limit %v is %s than date of current tweet %v\n", w.DateLimit, relation, ts)
			w.DoStop = true
			return nil
		}
	}

	w.startingup = false
	return nil
}

func (w *Writer) DoContinue() bool {
	if !w.Repeat {
		return w.State.DoContinue()
	}

	// A functional stop (date limit) always wins over rotation.
	if w.DoStop {
		return false
	}

	if w.Counter == w.Limit {
		w.rotate()
	}
	return true
}

// rotate closes the current file and primes the next Handle call to
// open a fresh one.
func (w *Writer) rotate() {
	w.OnFinish()
	w.fname = w.timestampedPath()
	w.startingup = true
	w.Counter = 0
}

func (w *Writer) OnFinish() {
	fmt.Printf("Written %d tweets\n", w.Counter)
	if w.gzw != nil {
		_ = w.gzw.Close()
		w.gzw = nil
	}
	if w.file != nil {
		_ = w.file.Close()
		w.file = nil
	}
}
