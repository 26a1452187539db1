// Package collect drives record retrieval: a streaming engine for the
// live push feed and a search engine for paginated history, both feeding
// a registered handler.
package collect

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/larkerhq/larker/internal/handler"
	"github.com/larkerhq/larker/internal/twitter"
)

// Configuration errors. These are fatal and never retried.
var (
	ErrNoHandler     = errors.New("no record handler has been registered")
	ErrNoFilterTerms = errors.New("filter: supply a value for track or follow")
	ErrNoKeywords    = errors.New("search: supply at least one keyword")
)

// Streamer maintains a long-lived connection to the push feed and
// dispatches each inbound record to the registered handler.
type Streamer struct {
	client  *twitter.Client
	handler handler.Handler
	log     *zap.SugaredLogger
}

// NewStreamer creates a streaming engine.
func NewStreamer(client *twitter.Client, log *zap.SugaredLogger) *Streamer {
	return &Streamer{client: client, log: log}
}

// Register binds the handler that consumes records. Calling it again
// replaces the previous handler.
func (s *Streamer) Register(h handler.Handler) {
	s.handler = h
}

// Sample reads the unfiltered sample feed until the handler signals stop.
func (s *Streamer) Sample(ctx context.Context) error {
	return s.run(ctx, func(ctx context.Context) (*twitter.StreamConn, error) {
		return s.client.Sample(ctx)
	})
}

// Filter reads the filtered feed until the handler signals stop. At
// least one of track or follow is required; this is checked before any
// network activity.
func (s *Streamer) Filter(ctx context.Context, track, follow, lang string) error {
	if track == "" && follow == "" {
		return ErrNoFilterTerms
	}
	q := twitter.FilterQuery{Track: track, Follow: follow, Lang: lang}
	return s.run(ctx, func(ctx context.Context) (*twitter.StreamConn, error) {
		return s.client.Filter(ctx, q)
	})
}

// run is the reconnect loop. A broken connection mid-stream is logged
// and retried; dial failures and handler errors are fatal. OnFinish runs
// exactly once, when the handler's continuation predicate turns false.
func (s *Streamer) run(ctx context.Context, dial func(context.Context) (*twitter.StreamConn, error)) error {
	if s.handler == nil {
		return ErrNoHandler
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		conn, err := dial(ctx)
		if err != nil {
			return err
		}

		transient, err := s.consume(conn)
		_ = conn.Close()
		if !transient {
			return err
		}
		s.log.Warnw("stream error, reconnecting", "error", err)
	}
}

// consume reads records off one connection. It returns transient=true
// when the connection broke and the loop should reconnect.
func (s *Streamer) consume(conn *twitter.StreamConn) (transient bool, err error) {
	for {
		rec, err := conn.Next()
		if err != nil {
			return true, err
		}

		// Keep-alive and non-status payloads carry no text.
		if rec.Text == "" {
			continue
		}

		cont, err := handler.Dispatch(s.handler, rec)
		if err != nil {
			return false, err
		}
		if !cont {
			s.handler.OnFinish()
			return false, nil
		}
	}
}
