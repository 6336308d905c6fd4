package main

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Danondso/mfdr-sub001/internal/fileindex"
)

func newIndexCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Build the search index and show its statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			index, err := buildIndexWithProgress(cmd, cfg.Paths.SearchDir, logger)
			if err != nil {
				return err
			}

			stats := index.Stats()
			fmt.Fprintln(cmd.OutOrStdout(), renderCounts("Metric", "Value", [][]string{
				{"Root", index.Root()},
				{"Audio files", strconv.Itoa(stats.Files)},
				{"Distinct sizes", strconv.Itoa(stats.SizeKeys)},
				{"Name tokens", strconv.Itoa(stats.NameTokens)},
				{"Directory tokens", strconv.Itoa(stats.DirTokens)},
			}))
			return nil
		},
	}
}

// buildIndexWithProgress walks the search directory with a spinner so large
// libraries do not look hung.
func buildIndexWithProgress(cmd *cobra.Command, root string, logger *slog.Logger) (*fileindex.Index, error) {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("indexing"),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish())

	index, err := fileindex.BuildFunc(root, logger, func(path string) {
		_ = bar.Add(1)
	})
	_ = bar.Finish()
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	return index, nil
}
