package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/larkerhq/larker/internal/collect"
	"github.com/larkerhq/larker/internal/handler"
	"github.com/larkerhq/larker/internal/store"
)

var (
	streamTrack     string
	streamFollow    string
	streamLang      string
	streamLimit     int
	streamToFile    bool
	streamGzip      bool
	streamRepeat    bool
	streamDateLimit string
	streamArchive   bool
)

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Follow the live tweet stream",
	Long: "stream follows the live push feed, sampled by default or filtered when " +
		"--track or --follow is given, until the configured limit is reached.",
	RunE: streamAction,
}

func init() {
	streamCmd.Flags().StringVar(&streamTrack, "track", "", "comma-separated keywords to filter on")
	streamCmd.Flags().StringVar(&streamFollow, "follow", "", "comma-separated user ids to filter on")
	streamCmd.Flags().StringVar(&streamLang, "lang", "", "language filter (default from config)")
	streamCmd.Flags().IntVar(&streamLimit, "limit", 0, "number of tweets to collect (default from config)")
	streamCmd.Flags().BoolVar(&streamToFile, "to-file", false, "write NDJSON files instead of printing")
	streamCmd.Flags().BoolVar(&streamGzip, "gzip", false, "gzip-compress output files")
	streamCmd.Flags().BoolVar(&streamRepeat, "repeat", false, "rotate to a new file every limit tweets (implies --to-file)")
	streamCmd.Flags().StringVar(&streamDateLimit, "date-limit", "", "stop once tweets get newer than this date")
	streamCmd.Flags().BoolVar(&streamArchive, "archive", false, "insert tweets into the SQLite archive instead")
	rootCmd.AddCommand(streamCmd)
}

func streamAction(cmd *cobra.Command, _ []string) error {
	cfg, client, log, err := setup()
	if err != nil {
		return err
	}

	lang := streamLang
	if lang == "" {
		lang = cfg.Defaults.Lang
	}
	limit := streamLimit
	if limit == 0 {
		limit = cfg.Defaults.Limit
	}

	dateLimit, err := parseDateLimit(streamDateLimit)
	if err != nil {
		return fmt.Errorf("parse --date-limit: %w", err)
	}

	ctx := cmd.Context()

	if streamArchive {
		db, err := store.Open(cfg.Storage.Path)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer func() { _ = db.Close() }()

		streamer := collect.NewStreamer(client, log)
		streamer.Register(handler.NewArchive(ctx, db, limit))
		if streamTrack == "" && streamFollow == "" {
			return streamer.Sample(ctx)
		}
		return streamer.Filter(ctx, streamTrack, streamFollow, lang)
	}

	return collect.New(client, log).Tweets(ctx, collect.TweetsOptions{
		Keywords:  streamTrack,
		Follow:    streamFollow,
		ToScreen:  !streamToFile && !streamRepeat,
		Stream:    true,
		Limit:     limit,
		DateLimit: dateLimit,
		Lang:      lang,
		Repeat:    streamRepeat,
		Gzip:      streamGzip,
		Subdir:    cfg.Storage.Subdir,
		Prefix:    cfg.Storage.Prefix,
	})
}
