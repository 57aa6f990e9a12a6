package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	service "github.com/okian/boxbox/internal/app"
	"github.com/okian/boxbox/internal/export"
)

func newPitStopsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "pitstops",
		Short: "Run the pipeline and write only the pit-stop document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			primary, secondary, closeCache, err := buildProviders(ctx.cfg)
			if err != nil {
				return err
			}
			if closeCache != nil {
				defer func() { _ = closeCache() }()
			}

			svc := service.New(ctx.cfg, primary, secondary,
				service.WithDocuments(service.DocumentSelection{PitStops: true}))
			summary, err := svc.Run(cmd.Context())
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(summary.PitStopsPath)
			if err != nil {
				return err
			}
			var doc export.PitStopsDocument
			if err := json.Unmarshal(raw, &doc); err != nil {
				return err
			}

			rows := make([][]string, 0, len(doc.TeamSeason))
			for _, row := range doc.TeamSeason {
				undercut := "-"
				if row.UndercutSuccess != nil {
					undercut = formatSeconds(*row.UndercutSuccess)
				}
				rows = append(rows, []string{
					row.Team,
					formatSeconds(row.AvgPitS),
					formatSeconds(row.BestPitS),
					formatSeconds(row.ConsistencyS),
					strconv.Itoa(row.Stops),
					undercut,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Team", "Avg pit (s)", "Best pit (s)", "Consistency (s)", "Stops", "Undercut rate"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
			))
			fmt.Fprintf(out, "total stops: %d\n", summary.TotalStops)
			fmt.Fprintf(out, "pit stops: %s\n", summary.PitStopsPath)
			return nil
		},
	}
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
