package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"songwriterid/internal/audiofp"
)

func newFingerprintCommand(ctx *commandContext) *cobra.Command {
	var compare bool
	var jsonOut bool
	var registerID string
	var title string
	var artist string

	cmd := &cobra.Command{
		Use:   "fingerprint <audio-file>",
		Short: "Extract an audio fingerprint, match it, or register it as a reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			probe, err := audiofp.ExtractFile(args[0], cfg.Tier3.WindowFrames)
			if err != nil {
				return err
			}

			if registerID != "" {
				entry := audiofp.ReferenceEntry{
					RecordingID: registerID,
					Title:       title,
					Artist:      artist,
					Fingerprint: probe,
				}
				target := filepath.Join(cfg.Paths.FingerprintDir, registerID+".json")
				if err := audiofp.WriteEntry(target, entry); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Registered reference fingerprint %s\n", target)
				return nil
			}

			type matchJSON struct {
				RecordingID string  `json:"recording_id"`
				Title       string  `json:"title"`
				Artist      string  `json:"artist"`
				Similarity  float64 `json:"similarity"`
			}
			report := struct {
				File   string     `json:"file"`
				Bins   int        `json:"bins"`
				Frames int        `json:"frames"`
				Match  *matchJSON `json:"match,omitempty"`
			}{
				File:   args[0],
				Bins:   audiofp.NumBins,
				Frames: probe.Frames(),
			}

			if compare {
				index, err := audiofp.LoadIndex(cfg.Paths.FingerprintDir)
				if err != nil {
					return err
				}
				if match, ok := index.BestMatch(probe); ok {
					report.Match = &matchJSON{
						RecordingID: match.Entry.RecordingID,
						Title:       match.Entry.Title,
						Artist:      match.Entry.Artist,
						Similarity:  match.Similarity,
					}
				}
			}

			if jsonOut {
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d bins x %d frames\n", report.File, report.Bins, report.Frames)
			switch {
			case report.Match != nil:
				fmt.Fprintf(out, "Best match: %s by %s (%s) similarity %.3f\n",
					report.Match.Title, report.Match.Artist, report.Match.RecordingID, report.Match.Similarity)
			case compare:
				fmt.Fprintln(out, "No reference fingerprints to compare against.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&compare, "compare", false, "Compare against the reference fingerprint index")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the report as JSON")
	cmd.Flags().StringVar(&registerID, "register", "", "Store the fingerprint as a reference for the given recording id")
	cmd.Flags().StringVar(&title, "title", "", "Reference title recorded with --register")
	cmd.Flags().StringVar(&artist, "artist", "", "Reference artist recorded with --register")
	return cmd
}
