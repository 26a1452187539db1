package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/larkerhq/larker/internal/collect"
	"github.com/larkerhq/larker/internal/handler"
	"github.com/larkerhq/larker/internal/twitter"
)

var (
	hydrateToFile bool
	hydrateGzip   bool
)

var hydrateCmd = &cobra.Command{
	Use:   "hydrate <ids-file>",
	Short: "Fetch full tweets for a file of tweet ids",
	Long: "hydrate reads tweet ids (one per line) and fetches the full tweet for each " +
		"via batch lookups. Tweets deleted upstream are silently omitted.",
	Args: cobra.ExactArgs(1),
	RunE: hydrateAction,
}

func init() {
	hydrateCmd.Flags().BoolVar(&hydrateToFile, "to-file", false, "write NDJSON files instead of printing")
	hydrateCmd.Flags().BoolVar(&hydrateGzip, "gzip", false, "gzip-compress output files")
	rootCmd.AddCommand(hydrateCmd)
}

func hydrateAction(cmd *cobra.Command, args []string) error {
	cfg, client, log, err := setup()
	if err != nil {
		return err
	}

	ids, err := readIDs(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Counted %d tweet IDs in %s\n", len(ids), args[0])

	var h handler.Handler
	if hydrateToFile {
		w, err := handler.NewWriter(handler.WriterOptions{
			Limit:  len(ids),
			Gzip:   hydrateGzip,
			Subdir: cfg.Storage.Subdir,
			Prefix: cfg.Storage.Prefix,
		})
		if err != nil {
			return err
		}
		h = w
	} else {
		h = handler.NewView(len(ids))
	}

	query := collect.NewQuery(client, log)

	var handleErr error
	err = query.ExpandIDs(cmd.Context(), ids, func(rec twitter.Record) bool {
		cont, err := handler.Dispatch(h, rec)
		if err != nil {
			handleErr = err
			return false
		}
		return cont
	})
	if err != nil {
		return err
	}
	if handleErr != nil {
		return handleErr
	}

	h.OnFinish()
	return nil
}

// readIDs parses a file of tweet ids, one per line, skipping blanks.
func readIDs(path string) ([]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ids file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var ids []int64
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		id, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid tweet id %q", lineNum, line)
		}
		ids = append(ids, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ids file: %w", err)
	}

	return ids, nil
}
