package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"YieldDesk/internal/di"
	"YieldDesk/internal/domain/catalog"
	"YieldDesk/pkg/date"
	"YieldDesk/pkg/util"
)

func newArchiveCommand(opts *rootOptions) *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "archive <label>",
		Short: "Read archived observations from ClickHouse",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seriesID, ok := catalog.Treasury().Lookup(args[0])
			if !ok {
				seriesID = args[0]
			}
			from, err := util.ParseDateDefault(start, date.Today().Add(-30))
			if err != nil {
				return err
			}
			to, err := util.ParseDateDefault(end, date.Today())
			if err != nil {
				return err
			}
			r := date.Range{From: from, To: to}

			deps, err := opts.build(cmd)
			if err != nil {
				return err
			}
			if !deps.cfg.Archive.Enabled {
				return fmt.Errorf("archive is disabled in %s", opts.configPath)
			}
			ch, err := di.ProvideClickHouseClient(deps.cfg)
			if err != nil {
				return err
			}
			defer ch.Close()

			store, err := di.ProvideObservationStorage(ch)
			if err != nil {
				return err
			}
			obs, err := store.Query(cmd.Context(), seriesID, r)
			if err != nil {
				return err
			}
			return opts.emit(cmd.OutOrStdout(), obs)
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "first date (default 30 days ago)")
	cmd.Flags().StringVar(&end, "end", "", "last date (default today)")
	return cmd
}
