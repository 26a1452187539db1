package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/larkerhq/larker/internal/config"
	"github.com/larkerhq/larker/internal/store"
)

var statsRecent int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show archive contents",
	RunE:  statsAction,
}

func init() {
	statsCmd.Flags().IntVar(&statsRecent, "recent", 0, "also print the N most recent archived tweets")
	rootCmd.AddCommand(statsCmd)
}

func statsAction(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx := cmd.Context()

	stats, err := db.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	if stats.Total == 0 {
		fmt.Fprintln(os.Stdout, "Archive is empty. Run 'larker stream --archive' or 'larker search --archive' first.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "larker archive: %d tweets, %s to %s\n",
		stats.Total,
		stats.Earliest.Format("2006-01-02 15:04"),
		stats.Latest.Format("2006-01-02 15:04"),
	)

	if statsRecent > 0 {
		records, err := db.Recent(ctx, statsRecent)
		if err != nil {
			return fmt.Errorf("get recent: %w", err)
		}
		fmt.Fprintln(os.Stdout)
		for _, rec := range records {
			fmt.Fprintf(os.Stdout, "  %s  %s\n", rec.CreatedAt.Format("2006-01-02 15:04"), rec.Text)
		}
	}

	return nil
}
