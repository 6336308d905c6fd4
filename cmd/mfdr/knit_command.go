package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Danondso/mfdr-sub001/internal/catalog"
	"github.com/Danondso/mfdr-sub001/internal/knit"
	"github.com/Danondso/mfdr-sub001/internal/lookup"
	"github.com/Danondso/mfdr-sub001/internal/match"
	"github.com/Danondso/mfdr-sub001/internal/report"
)

func newKnitCommand(ctx *commandContext) *cobra.Command {
	var clearCacheFlag bool
	var importFlag bool

	cmd := &cobra.Command{
		Use:   "knit",
		Short: "Find local files that complete partially-present albums",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			lookupSvc, err := lookup.NewService(cfg.Lookup, ctx.tracklistCachePath(), logger)
			if err != nil {
				return fmt.Errorf("build lookup service: %w", err)
			}
			if clearCacheFlag {
				if err := lookupSvc.ClearCache(); err != nil {
					return fmt.Errorf("clear tracklist cache: %w", err)
				}
			}

			library, err := catalog.ParseLibraryFile(cfg.Paths.LibraryXML)
			if err != nil {
				return fmt.Errorf("parse catalog: %w", err)
			}

			index, err := buildIndexWithProgress(cmd, cfg.Paths.SearchDir, logger)
			if err != nil {
				return err
			}

			service := knit.NewService(lookupSvc, index, match.DefaultWeights(), cfg.Knit, logger)

			runCtx, stop := signalContext()
			defer stop()

			reports, summary := service.ProcessAlbums(runCtx, library.Entries)
			if importFlag {
				summary.TracksImported = knit.ImportFound(reports, cfg.Paths.ImportDir, logger)
			}
			printKnitReports(cmd, reports)
			printKnitSummary(cmd, summary)

			if history, err := report.Open(ctx.historyPath()); err == nil {
				defer history.Close()
				recordKnitHistory(cmd, history, cfg.Paths.LibraryXML, reports, summary)
			}
			return runCtx.Err()
		},
	}

	cmd.Flags().BoolVar(&clearCacheFlag, "clear-cache", false, "Drop cached tracklists before running")
	cmd.Flags().BoolVar(&importFlag, "import", false, "Copy found tracks into the import folder")
	return cmd
}

func printKnitReports(cmd *cobra.Command, reports []knit.Report) {
	out := cmd.OutOrStdout()
	for _, r := range reports {
		if r.Err != nil {
			fmt.Fprintf(out, "%s: lookup failed: %v\n", r.Album.Key, r.Err)
			continue
		}
		if len(r.Missing) == 0 {
			continue
		}
		fmt.Fprintf(out, "\n%s (%d of %d tracks, source %s)\n",
			r.Album.Key, len(r.Album.Tracks), r.TracklistCount, r.TracklistSource)
		found := make(map[string]knit.TrackMatch, len(r.Found))
		for _, m := range r.Found {
			found[m.Title] = m
		}
		for _, title := range r.Missing {
			if m, ok := found[title]; ok {
				fmt.Fprintf(out, "  missing %-40s -> %s (%s)\n", title, m.Path, formatScore(m.Score))
			} else {
				fmt.Fprintf(out, "  missing %-40s -> no local file found\n", title)
			}
		}
	}
}

func printKnitSummary(cmd *cobra.Command, summary knit.Summary) {
	rows := [][]string{
		{"Albums processed", strconv.Itoa(summary.AlbumsProcessed)},
		{"Albums skipped (too few tracks)", strconv.Itoa(summary.AlbumsSkipped)},
		{"Albums failed", strconv.Itoa(summary.AlbumsFailed)},
		{"Tracks missing", strconv.Itoa(summary.TracksMissing)},
		{"Tracks found locally", strconv.Itoa(summary.TracksFound)},
	}
	if summary.TracksImported > 0 {
		rows = append(rows, []string{"Tracks imported", strconv.Itoa(summary.TracksImported)})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderCounts("Metric", "Count", rows))
}

func recordKnitHistory(cmd *cobra.Command, history *report.Store, libraryXML string, reports []knit.Report, summary knit.Summary) {
	runCtx := cmd.Context()
	session, err := history.BeginSession(runCtx, report.KindKnit, libraryXML)
	if err != nil {
		return
	}
	for _, r := range reports {
		for _, m := range r.Found {
			_ = history.RecordItem(runCtx, session.ID, report.Item{
				Name:          m.Title,
				Artist:        r.Album.Artist,
				Album:         r.Album.Title,
				Outcome:       report.OutcomeFound,
				Score:         m.Score,
				CandidatePath: m.Path,
			})
		}
	}
	_ = history.FinishSession(runCtx, session.ID, report.Totals{
		Processed: summary.AlbumsProcessed,
		Failed:    summary.AlbumsFailed,
	})
}
