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

func newOvertakesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "overtakes",
		Short: "Run the pipeline and write only the overtaking document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			primary, secondary, closeCache, err := buildProviders(ctx.cfg)
			if err != nil {
				return err
			}
			if closeCache != nil {
				defer func() { _ = closeCache() }()
			}

			svc := service.New(ctx.cfg, primary, secondary,
				service.WithDocuments(service.DocumentSelection{Overtakes: true}))
			summary, err := svc.Run(cmd.Context())
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(summary.OvertakesPath)
			if err != nil {
				return err
			}
			var doc export.OvertakesDocument
			if err := json.Unmarshal(raw, &doc); err != nil {
				return err
			}

			rows := make([][]string, 0, len(doc.Races))
			for _, race := range doc.Races {
				drs := "-"
				if race.DRSShare != nil {
					drs = strconv.FormatFloat(*race.DRSShare, 'f', 3, 64)
				}
				rows = append(rows, []string{
					strconv.Itoa(race.Round),
					race.Event,
					strconv.Itoa(race.TotalOvertakes),
					strconv.FormatFloat(race.PassRate, 'f', 5, 64),
					drs,
					strconv.Itoa(race.ProcessionalIndex),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Round", "Event", "Overtakes", "Pass rate", "DRS share", "Processional"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignRight},
			))
			fmt.Fprintf(out, "total overtakes: %d\n", summary.TotalOvertakes)
			fmt.Fprintf(out, "overtakes: %s\n", summary.OvertakesPath)
			return nil
		},
	}
}
