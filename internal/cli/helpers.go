package cli

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/larkerhq/larker/internal/config"
	"github.com/larkerhq/larker/internal/logger"
	"github.com/larkerhq/larker/internal/twitter"
)

// setup loads the config, builds the logger, and constructs the
// platform client from the configured credential tokens.
func setup() (*config.Config, *twitter.Client, *zap.SugaredLogger, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.Logger.Level)

	client, err := twitter.NewClient(twitter.Credentials{
		ConsumerKey:    cfg.Twitter.ConsumerKey,
		ConsumerSecret: cfg.Twitter.ConsumerSecret,
		AccessToken:    cfg.Twitter.AccessToken,
		AccessSecret:   cfg.Twitter.AccessSecret,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create client: %w", err)
	}

	return cfg, client, log, nil
}

// dateLimitLayouts are the accepted forms of the --date-limit flag.
var dateLimitLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseDateLimit(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLimitLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q (want e.g. 2015-04-01T12:40)", s)
}
