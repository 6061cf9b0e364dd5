package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"songwriterid/internal/catalog"
	"songwriterid/internal/config"
	"songwriterid/internal/credits"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Inspect and resolve tracks awaiting manual review",
	}

	reviewCmd.AddCommand(newReviewListCommand(ctx))
	reviewCmd.AddCommand(newReviewResolveCommand(ctx))
	return reviewCmd
}

func newReviewListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracks waiting for human resolution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *catalog.Store) error {
				tracks, err := store.TracksByStatus(cmd.Context(), catalog.StatusManualReview)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, tracks)
				}

				if len(tracks) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No tracks waiting for review.")
					return nil
				}
				rows := make([][]string, 0, len(tracks))
				for _, track := range tracks {
					rows = append(rows, []string{
						strconv.FormatInt(track.ID, 10),
						track.Title,
						track.ArtistName,
						track.ISRC,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Title", "Artist", "ISRC"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the review queue as JSON")
	return cmd
}

func newReviewResolveCommand(ctx *commandContext) *cobra.Command {
	var creditSpecs []string
	var reviewer string

	cmd := &cobra.Command{
		Use:   "resolve <track-id>",
		Short: "Resolve a reviewed track with confirmed credits",
		Long: "Marks a manual_review track as identified with confidence 1.0. Each " +
			"--credit takes \"Name:role\"; the role defaults to composer when omitted.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			trackID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid track id %q", args[0])
			}
			resolved, err := parseCreditSpecs(creditSpecs)
			if err != nil {
				return err
			}
			if len(resolved) == 0 {
				return fmt.Errorf("at least one --credit is required")
			}

			return ctx.withStore(func(_ *config.Config, store *catalog.Store) error {
				if err := store.ResolveReview(cmd.Context(), trackID, resolved, reviewer); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Track %d resolved with %d credits.\n", trackID, len(resolved))
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVar(&creditSpecs, "credit", nil, "Confirmed credit as \"Name:role\" (repeatable)")
	cmd.Flags().StringVar(&reviewer, "reviewer", "", "Reviewer recorded in the audit trail")
	return cmd
}

// parseCreditSpecs converts "Name:role" strings into credit rows. The split
// is on the last colon so names containing colons survive.
func parseCreditSpecs(specs []string) ([]catalog.Credit, error) {
	out := make([]catalog.Credit, 0, len(specs))
	for _, spec := range specs {
		name := strings.TrimSpace(spec)
		role := credits.RoleComposer
		if idx := strings.LastIndex(spec, ":"); idx >= 0 {
			name = strings.TrimSpace(spec[:idx])
			role = credits.StandardizeRole(spec[idx+1:])
		}
		if name == "" {
			return nil, fmt.Errorf("invalid credit spec %q", spec)
		}
		row := catalog.Credit{Name: name, Role: role}
		if role == credits.RolePublisher {
			row.PublisherName = name
		}
		out = append(out, row)
	}
	return out, nil
}
