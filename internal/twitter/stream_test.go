package twitter

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestSample_ReadsRecords(t *testing.T) {
	body := strings.Join([]string{
		statusJSON(1, "first"),
		"", // keep-alive
		statusJSON(2, "second"),
	}, "\n") + "\n"

	c := clientWithTransport(t, func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/1.1/statuses/sample.json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		return response(http.StatusOK, body), nil
	})

	conn, err := c.Sample(context.Background())
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	defer func() { _ = conn.Close() }()

	rec, err := conn.Next()
	if err != nil || rec.ID != 1 {
		t.Fatalf("first record = %+v, err %v", rec, err)
	}
	rec, err = conn.Next()
	if err != nil || rec.ID != 2 {
		t.Fatalf("second record = %+v, err %v", rec, err)
	}

	if _, err := conn.Next(); !errors.Is(err, ErrStreamClosed) {
		t.Fatalf("expected ErrStreamClosed, got %v", err)
	}
}

func TestFilter_Params(t *testing.T) {
	c := clientWithTransport(t, func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/1.1/statuses/filter.json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("track") != "nltk" {
			t.Errorf("track = %q", q.Get("track"))
		}
		if q.Get("follow") != "123" {
			t.Errorf("follow = %q", q.Get("follow"))
		}
		if q.Get("language") != "en" {
			t.Errorf("language = %q", q.Get("language"))
		}
		return response(http.StatusOK, ""), nil
	})

	conn, err := c.Filter(context.Background(), FilterQuery{Track: "nltk", Follow: "123", Lang: "en"})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	_ = conn.Close()
}

func TestFilter_RateLimitedDial(t *testing.T) {
	c := clientWithTransport(t, func(_ *http.Request) (*http.Response, error) {
		return response(420, ""), nil
	})
	_, err := c.Filter(context.Background(), FilterQuery{Track: "nltk"})
	if !IsRateLimit(err) {
		t.Fatalf("expected rate-limit error, got %v", err)
	}
}
