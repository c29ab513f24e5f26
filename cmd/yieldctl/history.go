package main

import (
	"github.com/spf13/cobra"

	"YieldDesk/pkg/date"
	"YieldDesk/pkg/util"
)

func newHistoryCommand(opts *rootOptions) *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "history <label>...",
		Short: "Join several series over a date range",
		Long: `Join several series over a date range. With exactly two populated
series a Spread column (first minus second) is added.`,
		Example: `  yieldctl history "10 Year" "2 Year" --start 2020-01-01 --end 2024-01-01 --format csv`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := date.Parse(start)
			if err != nil {
				return err
			}
			to, err := util.ParseDateDefault(end, date.Today())
			if err != nil {
				return err
			}

			deps, err := opts.build(cmd)
			if err != nil {
				return err
			}
			table, err := deps.history.Join(cmd.Context(), util.SplitList(args...), date.Range{From: from, To: to})
			if err != nil {
				return err
			}
			return opts.emit(cmd.OutOrStdout(), table)
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "first date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "last date (default today)")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}
