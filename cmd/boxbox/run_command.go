package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	service "github.com/okian/boxbox/internal/app"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var writeMetrics bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full analytics pipeline and write the export documents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := ctx.cfg
			if writeMetrics {
				cfg.WriteMetrics = true
			}

			primary, secondary, closeCache, err := buildProviders(cfg)
			if err != nil {
				return err
			}
			if closeCache != nil {
				defer func() { _ = closeCache() }()
			}

			summary, err := service.New(cfg, primary, secondary).Run(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(summary.Rounds))
			for _, outcome := range summary.Rounds {
				status := "ok"
				if outcome.Skipped {
					status = "skipped: " + outcome.SkipReason
				} else if outcome.UsedPitFallback {
					status = "ok (pit fallback)"
				}
				rows = append(rows, []string{
					strconv.Itoa(outcome.Round),
					outcome.Event,
					strconv.Itoa(outcome.PitRows),
					strconv.Itoa(outcome.PassRows),
					status,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Round", "Event", "Pit rows", "Pass rows", "Status"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "rounds processed: %d (skipped: %d)\n", summary.RoundsProcessed, summary.RoundsSkipped)
			fmt.Fprintf(out, "total stops: %d\n", summary.TotalStops)
			fmt.Fprintf(out, "total overtakes: %d\n", summary.TotalOvertakes)
			fmt.Fprintf(out, "pit stops: %s\n", summary.PitStopsPath)
			fmt.Fprintf(out, "overtakes: %s\n", summary.OvertakesPath)
			if summary.MetricsPath != "" {
				fmt.Fprintf(out, "metrics: %s\n", summary.MetricsPath)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&writeMetrics, "write-metrics", false, "dump pipeline metrics next to the documents")
	return cmd
}
