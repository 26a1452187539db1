package collect

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/larkerhq/larker/internal/handler"
	"github.com/larkerhq/larker/internal/twitter"
)

// Twitter composes the streaming and search engines behind one simple
// entry point.
type Twitter struct {
	Streamer *Streamer
	Query    *Query
}

// New creates the facade around a platform client.
func New(client *twitter.Client, log *zap.SugaredLogger) *Twitter {
	return &Twitter{
		Streamer: NewStreamer(client, log),
		Query:    NewQuery(client, log),
	}
}

// TweetsOptions selects what to retrieve and where it goes.
type TweetsOptions struct {
	Keywords string
	Follow   string

	// ToScreen prints record texts instead of writing files.
	ToScreen bool

	// Stream reads the live push feed instead of searching history.
	Stream bool

	Limit     int
	DateLimit time.Time
	Lang      string
	Repeat    bool
	Gzip      bool
	Subdir    string
	Prefix    string
}

// Tweets retrieves records in a simple manner: it picks a view or file
// handler from ToScreen, then either follows the live feed (sampled, or
// filtered when keywords/follow are given) or pages through historical
// search results.
func (t *Twitter) Tweets(ctx context.Context, opts TweetsOptions) error {
	var h handler.Handler
	if opts.ToScreen {
		h = handler.NewView(opts.Limit)
	} else {
		w, err := handler.NewWriter(handler.WriterOptions{
			Limit:     opts.Limit,
			DateLimit: opts.DateLimit,
			Stream:    opts.Stream,
			Repeat:    opts.Repeat,
			Gzip:      opts.Gzip,
			Subdir:    opts.Subdir,
			Prefix:    opts.Prefix,
		})
		if err != nil {
			return err
		}
		h = w
	}

	if opts.Stream {
		t.Streamer.Register(h)
		if opts.Keywords == "" && opts.Follow == "" {
			return t.Streamer.Sample(ctx)
		}
		return t.Streamer.Filter(ctx, opts.Keywords, opts.Follow, opts.Lang)
	}

	if opts.Keywords == "" {
		return ErrNoKeywords
	}
	t.Query.Register(h)
	return t.Query.SearchAndDispatch(ctx, opts.Keywords, opts.Limit, opts.Lang, 0)
}
