package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"songwriterid/internal/catalog"
	"songwriterid/internal/config"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show catalog composition by identification status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *catalog.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, statusReport(stats))
				}
				renderStats(cmd, stats)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit statistics as JSON")
	return cmd
}

// statusOrder fixes table row order; map iteration order is useless for
// output.
var statusOrder = []catalog.Status{
	catalog.StatusPending,
	catalog.StatusIdentifiedTier1,
	catalog.StatusIdentifiedTier2,
	catalog.StatusIdentifiedTier3,
	catalog.StatusManualReview,
	catalog.StatusIdentified,
}

type statusJSON struct {
	Total         int                    `json:"total"`
	ByStatus      map[catalog.Status]int `json:"by_status"`
	AvgConfidence float64                `json:"avg_confidence"`
	WithCredits   int                    `json:"with_credits"`
}

func statusReport(stats *catalog.Stats) statusJSON {
	return statusJSON{
		Total:         stats.Total,
		ByStatus:      stats.ByStatus,
		AvgConfidence: stats.AvgConf,
		WithCredits:   stats.WithCredit,
	}
}

func renderStats(cmd *cobra.Command, stats *catalog.Stats) {
	rows := make([][]string, 0, len(statusOrder))
	for _, status := range statusOrder {
		rows = append(rows, []string{string(status), strconv.Itoa(stats.ByStatus[status])})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(
		[]string{"Status", "Tracks"},
		rows,
		[]columnAlignment{alignLeft, alignRight},
	))
	fmt.Fprintf(out, "%d tracks total, %d with credits, average confidence %.2f\n",
		stats.Total, stats.WithCredit, stats.AvgConf)
}
