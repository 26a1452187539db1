package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/larkerhq/larker/internal/collect"
	"github.com/larkerhq/larker/internal/handler"
	"github.com/larkerhq/larker/internal/store"
)

var (
	searchLang      string
	searchLimit     int
	searchToFile    bool
	searchGzip      bool
	searchRepeat    bool
	searchDateLimit string
	searchArchive   bool
	searchRetries   int
)

var searchCmd = &cobra.Command{
	Use:   "search <keywords...>",
	Short: "Search historical tweets",
	Long: "search pages backwards through historical tweets matching the keywords, " +
		"waiting out rate-limit windows as needed.",
	Args: cobra.MinimumNArgs(1),
	RunE: searchAction,
}

func init() {
	searchCmd.Flags().StringVar(&searchLang, "lang", "", "language filter (default from config)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "number of tweets to collect (default from config)")
	searchCmd.Flags().BoolVar(&searchToFile, "to-file", false, "write NDJSON files instead of printing")
	searchCmd.Flags().BoolVar(&searchGzip, "gzip", false, "gzip-compress output files")
	searchCmd.Flags().BoolVar(&searchRepeat, "repeat", false, "rotate to a new file every limit tweets (implies --to-file)")
	searchCmd.Flags().StringVar(&searchDateLimit, "date-limit", "", "stop once tweets get older than this date")
	searchCmd.Flags().BoolVar(&searchArchive, "archive", false, "insert tweets into the SQLite archive instead")
	searchCmd.Flags().IntVar(&searchRetries, "retries", 0, "retries per page request after a non-rate-limit error")
	rootCmd.AddCommand(searchCmd)
}

func searchAction(cmd *cobra.Command, args []string) error {
	cfg, client, log, err := setup()
	if err != nil {
		return err
	}

	keywords := strings.Join(args, ",")
	lang := searchLang
	if lang == "" {
		lang = cfg.Defaults.Lang
	}
	limit := searchLimit
	if limit == 0 {
		limit = cfg.Defaults.Limit
	}

	dateLimit, err := parseDateLimit(searchDateLimit)
	if err != nil {
		return fmt.Errorf("parse --date-limit: %w", err)
	}

	ctx := cmd.Context()

	if searchArchive {
		db, err := store.Open(cfg.Storage.Path)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer func() { _ = db.Close() }()

		query := collect.NewQuery(client, log)
		query.Register(handler.NewArchive(ctx, db, limit))
		return query.SearchAndDispatch(ctx, keywords, limit, lang, searchRetries)
	}

	if searchToFile || searchRepeat {
		w, err := handler.NewWriter(handler.WriterOptions{
			Limit:     limit,
			DateLimit: dateLimit,
			Stream:    false,
			Repeat:    searchRepeat,
			Gzip:      searchGzip,
			Subdir:    cfg.Storage.Subdir,
			Prefix:    cfg.Storage.Prefix,
		})
		if err != nil {
			return err
		}
		query := collect.NewQuery(client, log)
		query.Register(w)
		return query.SearchAndDispatch(ctx, keywords, limit, lang, searchRetries)
	}

	return collect.New(client, log).Tweets(ctx, collect.TweetsOptions{
		Keywords: keywords,
		ToScreen: true,
		Stream:   false,
		Limit:    limit,
		Lang:     lang,
	})
}
