package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Danondso/mfdr-sub001/internal/catalog"
	"github.com/Danondso/mfdr-sub001/internal/checkpoint"
	"github.com/Danondso/mfdr-sub001/internal/integrity"
	"github.com/Danondso/mfdr-sub001/internal/match"
	"github.com/Danondso/mfdr-sub001/internal/report"
	"github.com/Danondso/mfdr-sub001/internal/scan"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var modeFlag string
	var thresholdFlag float64
	var interactiveFlag bool
	var noResumeFlag bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Verify catalog tracks and repair missing or corrupt files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			modeValue := cfg.Replace.Mode
			if modeFlag != "" {
				modeValue = modeFlag
			}
			mode, err := match.ParseMode(modeValue)
			if err != nil {
				return err
			}
			threshold := cfg.Replace.AutoAcceptThreshold
			if thresholdFlag > 0 {
				threshold = thresholdFlag
			}
			interactive := interactiveFlag || cfg.Replace.Interactive
			if interactive && !isatty.IsTerminal(os.Stdin.Fd()) {
				return fmt.Errorf("interactive mode requires a terminal")
			}

			library, err := catalog.ParseLibraryFile(cfg.Paths.LibraryXML)
			if err != nil {
				return fmt.Errorf("parse catalog: %w", err)
			}

			index, err := buildIndexWithProgress(cmd, cfg.Paths.SearchDir, logger)
			if err != nil {
				return err
			}

			var checkpoints *checkpoint.Store
			if path := ctx.checkpointPath(); path != "" {
				checkpoints = checkpoint.NewStore(path, logger)
				if noResumeFlag {
					if err := checkpoints.Clear(); err != nil {
						return fmt.Errorf("clear checkpoint: %w", err)
					}
				}
			}

			var history *report.Store
			if path := ctx.historyPath(); path != "" {
				history, err = report.Open(path)
				if err != nil {
					return fmt.Errorf("open history: %w", err)
				}
				defer history.Close()
			}

			var chooser match.Chooser
			if interactive {
				chooser = newTerminalChooser(cmd.InOrStdin(), cmd.OutOrStdout())
			}

			bar := progressbar.NewOptions(len(library.Entries),
				progressbar.OptionSetDescription("scanning"),
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionClearOnFinish())

			scanner, err := scan.New(scan.Deps{
				Config:  cfg,
				Index:   index,
				Checker: integrity.NewFileChecker(cfg.Integrity, logger),
				Weights: match.DefaultWeights(),
				Options: match.Options{
					Mode:        mode,
					Threshold:   threshold,
					Interactive: interactive,
					MaxPrompt:   cfg.Replace.MaxPromptCandidates,
				},
				Chooser:     chooser,
				Checkpoints: checkpoints,
				History:     history,
				Logger:      logger,
				Progress: func(done, total int) {
					_ = bar.Set(done)
				},
			})
			if err != nil {
				return err
			}

			runCtx, stop := signalContext()
			defer stop()

			summary, runErr := scanner.Run(runCtx, library.Entries)
			_ = bar.Finish()

			printScanSummary(cmd, summary)
			if runErr != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Scan interrupted; progress checkpointed for resume.")
				return runErr
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&modeFlag, "mode", "", "Replace mode: off, conservative, moderate, aggressive")
	cmd.Flags().Float64Var(&thresholdFlag, "threshold", 0, "Override the auto-accept score floor")
	cmd.Flags().BoolVarP(&interactiveFlag, "interactive", "i", false, "Prompt for every candidate decision")
	cmd.Flags().BoolVar(&noResumeFlag, "no-resume", false, "Discard any previous checkpoint and start fresh")
	return cmd
}

func printScanSummary(cmd *cobra.Command, summary scan.Summary) {
	rows := [][]string{
		{"Tracks in catalog", strconv.Itoa(summary.Total)},
		{"Healthy", strconv.Itoa(summary.Healthy)},
		{"Missing", strconv.Itoa(summary.Missing)},
		{"Replaced (auto)", strconv.Itoa(summary.Replaced)},
		{"Replaced (accepted)", strconv.Itoa(summary.Accepted)},
		{"Skipped", strconv.Itoa(summary.Skipped)},
		{"Marked for removal", strconv.Itoa(summary.Removed)},
		{"Quarantined", strconv.Itoa(summary.Quarantined)},
		{"Failed", strconv.Itoa(summary.Failed)},
	}
	if summary.Resumed > 0 {
		rows = append(rows, []string{"Resumed (already done)", strconv.Itoa(summary.Resumed)})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderCounts("Outcome", "Count", rows))
}
