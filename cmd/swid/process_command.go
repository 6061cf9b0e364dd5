package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"songwriterid/internal/catalog"
	"songwriterid/internal/config"
	"songwriterid/internal/tierengine"
)

const timeRound = 10 * time.Millisecond

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool
	var audioBase string

	cmd := &cobra.Command{
		Use:   "process [catalog.csv]",
		Short: "Import a catalog file and identify pending tracks",
		Long: "Runs the identification tiers over every pending track. With a CSV " +
			"argument the file is imported first; without one only already pending " +
			"tracks are processed.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, cfg, err := ctx.newLogger()
			if err != nil {
				return err
			}

			csvPath := ""
			if len(args) == 1 {
				csvPath = args[0]
			}

			if audioBase != "" {
				expanded, err := config.ExpandPath(audioBase)
				if err != nil {
					return err
				}
				cfg.Paths.AudioBaseDir = expanded
			}

			source, err := newSource(cfg, logger)
			if err != nil {
				return err
			}

			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				engine, err := tierengine.New(cfg, store, source, logger)
				if err != nil {
					return err
				}
				summary, err := engine.ProcessCatalog(cmd.Context(), csvPath, limit)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, summary)
				}
				renderSummary(cmd, summary)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of pending tracks to process (0 = all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the run summary as JSON")
	cmd.Flags().StringVar(&audioBase, "audio-base", "", "Directory relative audio paths in the CSV resolve against (overrides paths.audio_base_path)")
	return cmd
}

func renderSummary(cmd *cobra.Command, summary *tierengine.Summary) {
	out := cmd.OutOrStdout()

	if summary.Import != nil {
		fmt.Fprintln(out, renderTable(
			[]string{"Rows", "Imported", "Duplicates", "Invalid"},
			[][]string{{
				strconv.Itoa(summary.Import.Rows),
				strconv.Itoa(summary.Import.Imported),
				strconv.Itoa(summary.Import.Duplicates),
				strconv.Itoa(summary.Import.Invalid),
			}},
			[]columnAlignment{alignRight, alignRight, alignRight, alignRight},
		))
	}

	rows := [][]string{
		{"Processed", strconv.Itoa(summary.Processed)},
		{"Identified (tier 1)", strconv.Itoa(summary.Identified[catalog.StatusIdentifiedTier1])},
		{"Identified (tier 2)", strconv.Itoa(summary.Identified[catalog.StatusIdentifiedTier2])},
		{"Identified (tier 3)", strconv.Itoa(summary.Identified[catalog.StatusIdentifiedTier3])},
		{"Manual review", strconv.Itoa(summary.ManualReview)},
		{"Failed", strconv.Itoa(summary.Failed)},
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Result", "Tracks"},
		rows,
		[]columnAlignment{alignLeft, alignRight},
	))
	fmt.Fprintf(out, "Run %s finished in %s\n", summary.RunID, summary.Elapsed.Round(timeRound))
}
