package main

import (
	"github.com/spf13/cobra"

	"YieldDesk/pkg/util"
)

func newCurveCommand(opts *rootOptions) *cobra.Command {
	var (
		on         string
		maturities []string
	)

	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Yield curve on one date",
		Long: `Yield curve on one date, each maturity aligned to its last published
value on or before the date. Defaults to today, or Friday on a weekend.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := util.ParseDate(on)
			if err != nil {
				return err
			}
			deps, err := opts.build(cmd)
			if err != nil {
				return err
			}
			row, err := deps.curve.CrossSection(cmd.Context(), d, selected(cmd, "maturities", maturities))
			if err != nil {
				return err
			}
			return opts.emit(cmd.OutOrStdout(), row)
		},
	}

	cmd.Flags().StringVar(&on, "date", "", "date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVarP(&maturities, "maturities", "m", nil, "maturity labels, e.g. \"2 Year,10 Year\"")
	return cmd
}

func newCompareCommand(opts *rootOptions) *cobra.Command {
	var (
		d1, d2     string
		maturities []string
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the yield curve on two dates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			first, err := util.ParseDate(d1)
			if err != nil {
				return err
			}
			second, err := util.ParseDate(d2)
			if err != nil {
				return err
			}
			deps, err := opts.build(cmd)
			if err != nil {
				return err
			}
			cmp, err := deps.curve.Compare(cmd.Context(), first, second, selected(cmd, "maturities", maturities))
			if err != nil {
				return err
			}
			return opts.emit(cmd.OutOrStdout(), cmp)
		},
	}

	cmd.Flags().StringVar(&d1, "date1", "", "first date (default today)")
	cmd.Flags().StringVar(&d2, "date2", "", "second date (default one year before date1)")
	cmd.Flags().StringSliceVarP(&maturities, "maturities", "m", nil, "maturity labels")
	return cmd
}

// selected is nil when the flag was not given, so the whole catalog is used.
func selected(cmd *cobra.Command, flag string, values []string) []string {
	if !cmd.Flags().Changed(flag) {
		return nil
	}
	if labels := util.SplitList(values...); labels != nil {
		return labels
	}
	return []string{}
}
