package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL   = "https://api.twitter.com/1.1"
	defaultStreamURL = "https://stream.twitter.com/1.1"
	requestTimeout   = 30 * time.Second
	userAgent        = "larker/1.0"

	// MaxLookupIDs is the largest id batch one lookup call accepts.
	MaxLookupIDs = 100
)

// Credentials are the four opaque tokens the platform issues per
// application. They are attached to every request as-is; larker does not
// implement the signing protocol itself.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
}

func (c Credentials) validate() error {
	if strings.TrimSpace(c.ConsumerKey) == "" || strings.TrimSpace(c.ConsumerSecret) == "" ||
		strings.TrimSpace(c.AccessToken) == "" || strings.TrimSpace(c.AccessSecret) == "" {
		return errors.New("credentials: all four tokens are required")
	}
	return nil
}

// Client talks to the platform's REST and streaming endpoints. The
// exported fields exist so tests can point the client at a fake
// transport; production code leaves the defaults alone.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	StreamURL  string
}

// NewClient creates a platform client from four credential tokens.
func NewClient(creds Credentials) (*Client, error) {
	if err := creds.validate(); err != nil {
		return nil, err
	}
	return &Client{
		HTTPClient: &http.Client{
			Timeout:   requestTimeout,
			Transport: &authTransport{creds: creds, base: http.DefaultTransport},
		},
		BaseURL:   defaultBaseURL,
		StreamURL: defaultStreamURL,
	}, nil
}

// authTransport attaches the credential tokens to every outgoing request.
type authTransport struct {
	creds Credentials
	base  http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Authorization", fmt.Sprintf(
		"OAuth oauth_consumer_key=%q, oauth_token=%q",
		t.creds.ConsumerKey, t.creds.AccessToken,
	))
	return t.base.RoundTrip(req)
}

// SearchQuery describes one page request against the historical search
// endpoint. A zero MaxID means "newest first, no upper bound".
type SearchQuery struct {
	Query string
	Count int
	Lang  string
	MaxID int64
}

// SearchPage fetches a single page of historical results, newest first.
func (c *Client) SearchPage(ctx context.Context, q SearchQuery) ([]Record, error) {
	params := url.Values{}
	params.Set("q", q.Query)
	params.Set("count", strconv.Itoa(q.Count))
	params.Set("result_type", "recent")
	if q.Lang != "" {
		params.Set("lang", q.Lang)
	}
	if q.MaxID > 0 {
		params.Set("max_id", strconv.FormatInt(q.MaxID, 10))
	}

	var page struct {
		Statuses []json.RawMessage `json:"statuses"`
	}
	if err := c.getJSON(ctx, "search/tweets", params, &page); err != nil {
		return nil, err
	}
	return decodeRecords(page.Statuses)
}

// Lookup fetches full records for up to MaxLookupIDs ids in one call.
// Ids deleted upstream are silently absent from the result.
func (c *Client) Lookup(ctx context.Context, ids []int64) ([]Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > MaxLookupIDs {
		return nil, fmt.Errorf("lookup: %d ids exceeds the %d per-call maximum", len(ids), MaxLookupIDs)
	}

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	params := url.Values{}
	params.Set("id", strings.Join(parts, ","))

	var items []json.RawMessage
	if err := c.getJSON(ctx, "statuses/lookup", params, &items); err != nil {
		return nil, err
	}
	return decodeRecords(items)
}

// UserTimeline fetches up to limit most-recent records posted by the
// named account.
func (c *Client) UserTimeline(ctx context.Context, screenName string, limit int, includeRetweets bool) ([]Record, error) {
	if strings.TrimSpace(screenName) == "" {
		return nil, errors.New("user timeline: screen name is required")
	}

	params := url.Values{}
	params.Set("screen_name", screenName)
	params.Set("count", strconv.Itoa(limit))
	params.Set("include_rts", strconv.FormatBool(includeRetweets))

	var items []json.RawMessage
	if err := c.getJSON(ctx, "statuses/user_timeline", params, &items); err != nil {
		return nil, err
	}
	return decodeRecords(items)
}

// UserInfo fetches profile metadata for each of the given user ids.
func (c *Client) UserInfo(ctx context.Context, userIDs []string) ([]json.RawMessage, error) {
	users := make([]json.RawMessage, 0, len(userIDs))
	for _, id := range userIDs {
		params := url.Values{}
		params.Set("user_id", id)

		var user json.RawMessage
		if err := c.getJSON(ctx, "users/show", params, &user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	u := fmt.Sprintf("%s/%s.json?%s", c.BaseURL, endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", endpoint, err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := statusError(endpoint, resp.StatusCode); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", endpoint, err)
	}
	return nil
}

// statusError maps a response status onto the error taxonomy. 420 is the
// platform's legacy "enhance your calm" rate-limit status.
func statusError(endpoint string, status int) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusTooManyRequests || status == 420:
		return &RateLimitError{Endpoint: endpoint}
	default:
		return &APIError{Endpoint: endpoint, StatusCode: status}
	}
}
