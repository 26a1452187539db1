package twitter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const maxStreamLine = 1 << 20 // 1 MiB per streamed record

// FilterQuery selects which records the push feed delivers. At least one
// of Track or Follow must be set.
type FilterQuery struct {
	Track  string
	Follow string
	Lang   string
}

// StreamConn is one long-lived connection to the push feed. Records
// arrive as newline-delimited JSON; blank lines are keep-alives.
type StreamConn struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

// Sample opens a connection to the unfiltered sample feed.
func (c *Client) Sample(ctx context.Context) (*StreamConn, error) {
	return c.dialStream(ctx, "statuses/sample", url.Values{})
}

// Filter opens a connection to the filtered feed.
func (c *Client) Filter(ctx context.Context, q FilterQuery) (*StreamConn, error) {
	params := url.Values{}
	if q.Track != "" {
		params.Set("track", q.Track)
	}
	if q.Follow != "" {
		params.Set("follow", q.Follow)
	}
	if q.Lang != "" {
		params.Set("language", q.Lang)
	}
	return c.dialStream(ctx, "statuses/filter", params)
}

func (c *Client) dialStream(ctx context.Context, endpoint string, params url.Values) (*StreamConn, error) {
	u := fmt.Sprintf("%s/%s.json", c.StreamURL, endpoint)
	if encoded := params.Encode(); encoded != "" {
		u += "?" + encoded
	}

	// No request timeout here: the feed is open-ended. The context
	// bounds connection lifetime instead.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", endpoint, err)
	}

	transport := c.HTTPClient.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	resp, err := (&http.Client{Transport: transport}).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}

	if err := statusError(endpoint, resp.StatusCode); err != nil {
		_ = resp.Body.Close()
		return nil, err
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, maxStreamLine), maxStreamLine)

	return &StreamConn{body: resp.Body, scanner: scanner}, nil
}

// ErrStreamClosed is returned by Next when the feed ends without a
// transport error. The platform never closes the feed voluntarily, so
// callers treat it like any other broken connection.
var ErrStreamClosed = errors.New("stream closed by remote")

// Next blocks until the next record arrives. Keep-alive lines are
// skipped; malformed lines are reported as errors.
func (s *StreamConn) Next() (Record, error) {
	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			continue
		}
		return decodeRecord([]byte(line))
	}
	if err := s.scanner.Err(); err != nil {
		return Record{}, fmt.Errorf("read stream: %w", err)
	}
	return Record{}, ErrStreamClosed
}

// Close tears the connection down.
func (s *StreamConn) Close() error {
	return s.body.Close()
}
