package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/okian/boxbox/internal/rounds"
)

func newRoundsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rounds",
		Short: "Resolve and list the season's rounds without running the pipeline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			primary, secondary, closeCache, err := buildProviders(ctx.cfg)
			if err != nil {
				return err
			}
			if closeCache != nil {
				defer func() { _ = closeCache() }()
			}

			resolved, err := rounds.New(secondary, primary).Resolve(cmd.Context(), ctx.cfg.Year)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(resolved))
			for _, round := range resolved {
				rows = append(rows, []string{
					strconv.Itoa(round.Number),
					round.Event,
					round.DateString(),
					strconv.Itoa(round.SessionKey),
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Round", "Event", "Date", "Session key"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
}
