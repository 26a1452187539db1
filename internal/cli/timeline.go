package cli

import (
	"github.com/spf13/cobra"

	"github.com/larkerhq/larker/internal/collect"
	"github.com/larkerhq/larker/internal/handler"
)

var (
	timelineLimit    int
	timelineRetweets bool
	timelineToFile   bool
	timelineGzip     bool
)

var timelineCmd = &cobra.Command{
	Use:   "timeline <screen_name>",
	Short: "Fetch a user's most recent tweets",
	Args:  cobra.ExactArgs(1),
	RunE:  timelineAction,
}

func init() {
	timelineCmd.Flags().IntVar(&timelineLimit, "limit", 20, "number of tweets to fetch (200 maximum)")
	timelineCmd.Flags().BoolVar(&timelineRetweets, "include-rts", false, "include the user's retweets")
	timelineCmd.Flags().BoolVar(&timelineToFile, "to-file", false, "write NDJSON files instead of printing")
	timelineCmd.Flags().BoolVar(&timelineGzip, "gzip", false, "gzip-compress output files")
	rootCmd.AddCommand(timelineCmd)
}

func timelineAction(cmd *cobra.Command, args []string) error {
	cfg, client, log, err := setup()
	if err != nil {
		return err
	}

	var h handler.Handler
	if timelineToFile {
		w, err := handler.NewWriter(handler.WriterOptions{
			Limit:  timelineLimit,
			Gzip:   timelineGzip,
			Subdir: cfg.Storage.Subdir,
			Prefix: cfg.Storage.Prefix,
		})
		if err != nil {
			return err
		}
		h = w
	} else {
		h = handler.NewView(timelineLimit)
	}

	query := collect.NewQuery(client, log)
	query.Register(h)
	if err := query.UserTimeline(cmd.Context(), args[0], timelineLimit, timelineRetweets); err != nil {
		return err
	}

	h.OnFinish()
	return nil
}
