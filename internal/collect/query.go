package collect

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/larkerhq/larker/internal/handler"
	"github.com/larkerhq/larker/internal/twitter"
)

const (
	// Search rate limits are granted in 15-minute windows, so a
	// rejected page request waits out a full window before retrying.
	rateLimitCooldown = 15 * time.Minute

	maxPageSize = 100
)

// sleepFunc is the function used to wait out rate-limit windows.
// It defaults to time.Sleep but can be overridden in tests.
var sleepFunc = time.Sleep

// SearchOptions parameterizes one search run.
type SearchOptions struct {
	Keywords string
	Limit    int
	Lang     string

	// MaxID resumes pagination below a known cursor. Zero starts from
	// the newest records.
	MaxID int64

	// RetriesAfterError bounds retries of page requests that fail with
	// something other than a rate limit before the error is fatal.
	RetriesAfterError int
}

// Query performs paginated historical searches and related REST lookups,
// tracking a descending id cursor across pages.
type Query struct {
	client  *twitter.Client
	handler handler.Handler
	log     *zap.SugaredLogger
}

// NewQuery creates a search engine.
func NewQuery(client *twitter.Client, log *zap.SugaredLogger) *Query {
	return &Query{client: client, log: log}
}

// Register binds the handler that consumes records. Calling it again
// replaces the previous handler.
func (q *Query) Register(h handler.Handler) {
	q.handler = h
}

// Search pages through historical results and passes each record to
// emit, stopping when emit returns false, the handler's continuation
// predicate turns false, the limit is reached, or history runs out.
// Each call starts fresh from opts.MaxID; the advancing cursor is stored
// on the handler state after every successful page.
//
// The next cursor is computed as the last id in the page minus one,
// which assumes ids are strictly descending within a page.
func (q *Query) Search(ctx context.Context, opts SearchOptions, emit func(twitter.Record) bool) error {
	if q.handler == nil {
		q.handler = handler.NewBasic(opts.Limit)
	}
	st := q.handler.HandlerState()

	total := 0
	maxID := opts.MaxID

	if maxID == 0 {
		page, err := q.client.SearchPage(ctx, twitter.SearchQuery{
			Query: opts.Keywords,
			Count: min(maxPageSize, opts.Limit),
			Lang:  opts.Lang,
		})
		if err != nil {
			return err
		}
		if len(page) == 0 {
			fmt.Println("No tweets available through the search API for this query")
			return nil
		}

		total = len(page)
		maxID = page[len(page)-1].ID - 1
		st.MaxID = maxID

		for _, rec := range page {
			st.Counter++
			if !emit(rec) {
				return nil
			}
			if !q.handler.DoContinue() {
				return nil
			}
		}
	}

	retries := 0
	for total < opts.Limit {
		page, err := q.client.SearchPage(ctx, twitter.SearchQuery{
			Query: opts.Keywords,
			Count: min(maxPageSize, opts.Limit-total),
			Lang:  opts.Lang,
			MaxID: maxID,
		})
		if err != nil {
			if twitter.IsRateLimit(err) {
				q.log.Infow("rate limited, waiting out the window", "cooldown", rateLimitCooldown, "error", err)
				sleepFunc(rateLimitCooldown)
				continue
			}
			q.log.Errorw("search page request failed", "error", err, "retries", retries)
			if retries == opts.RetriesAfterError {
				return err
			}
			retries++
			continue
		}

		if len(page) == 0 {
			fmt.Println("No more tweets available through the search API")
			return nil
		}

		total += len(page)
		maxID = page[len(page)-1].ID - 1
		st.MaxID = maxID

		for _, rec := range page {
			st.Counter++
			if !emit(rec) {
				return nil
			}
			if !q.handler.DoContinue() {
				return nil
			}
		}
	}

	return nil
}

// SearchAndDispatch drives Search, feeding every record to the
// registered handler. When the handler's repeat flag is set and its
// continuation predicate still holds, a new search round is issued from
// the handler's stored cursor. OnFinish runs exactly once on normal
// termination.
func (q *Query) SearchAndDispatch(ctx context.Context, keywords string, limit int, lang string, retriesAfterError int) error {
	if q.handler == nil {
		return ErrNoHandler
	}
	st := q.handler.HandlerState()

	for {
		var handleErr error
		err := q.Search(ctx, SearchOptions{
			Keywords:          keywords,
			Limit:             limit,
			Lang:              lang,
			MaxID:             st.MaxID,
			RetriesAfterError: retriesAfterError,
		}, func(rec twitter.Record) bool {
			if err := q.handler.Handle(rec); err != nil {
				handleErr = err
				return false
			}
			return true
		})
		if err != nil {
			return err
		}
		if handleErr != nil {
			return handleErr
		}

		if !(q.handler.DoContinue() && st.Repeat) {
			break
		}
	}

	q.handler.OnFinish()
	return nil
}

// ExpandIDs fetches full records for a sequence of record ids,
// partitioning them into batch lookups of at most 100 ids. Records
// deleted upstream are silently absent. Emission stops when emit
// returns false.
func (q *Query) ExpandIDs(ctx context.Context, ids []int64, emit func(twitter.Record) bool) error {
	for start := 0; start < len(ids); start += twitter.MaxLookupIDs {
		end := min(start+twitter.MaxLookupIDs, len(ids))

		records, err := q.client.Lookup(ctx, ids[start:end])
		if err != nil {
			return err
		}
		for _, rec := range records {
			if !emit(rec) {
				return nil
			}
		}
	}
	return nil
}

// UserTimeline fetches up to limit most-recent records for the named
// account and dispatches the batch to the registered handler.
func (q *Query) UserTimeline(ctx context.Context, screenName string, limit int, includeRetweets bool) error {
	if q.handler == nil {
		return ErrNoHandler
	}

	records, err := q.client.UserTimeline(ctx, screenName, limit, includeRetweets)
	if err != nil {
		return err
	}

	for _, rec := range records {
		cont, err := handler.Dispatch(q.handler, rec)
		if err != nil {
			return err
		}
		if !cont {
			break
		}
	}
	return nil
}
