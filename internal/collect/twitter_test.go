package collect

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

func TestTweets_SearchRequiresKeywords(t *testing.T) {
	tw := New(testClient(t, func(_ *http.Request) (*http.Response, error) {
		t.Error("no request expected")
		return nil, nil
	}), nopLog())

	err := tw.Tweets(context.Background(), TweetsOptions{ToScreen: true, Limit: 5})
	if !errors.Is(err, ErrNoKeywords) {
		t.Fatalf("err = %v, want ErrNoKeywords", err)
	}
}

func TestTweets_FilterStreamToFile(t *testing.T) {
	tw := New(testClient(t, func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/1.1/statuses/filter.json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("track"); got != "nltk" {
			t.Errorf("track = %q, want nltk", got)
		}
		return response(http.StatusOK, streamBody(statusJSON(1), statusJSON(2))), nil
	}), nopLog())

	subdir := filepath.Join(t.TempDir(), "out")
	err := tw.Tweets(context.Background(), TweetsOptions{
		Keywords: "nltk",
		Stream:   true,
		Limit:    2,
		Subdir:   subdir,
		Prefix:   "captured",
	})
	if err != nil {
		t.Fatalf("tweets: %v", err)
	}

	entries, err := os.ReadDir(subdir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d output files, want 1", len(entries))
	}

	data, err := os.ReadFile(filepath.Join(subdir, entries[0].Name()))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if lines := bytes.Count(data, []byte("\n")); lines != 2 {
		t.Errorf("wrote %d lines, want 2", lines)
	}
}
