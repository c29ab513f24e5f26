package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"YieldDesk/internal/di"
	"YieldDesk/internal/domain/catalog"
	"YieldDesk/internal/service/cache"
	"YieldDesk/internal/usecase"
	"YieldDesk/pkg/config"
	xhttp "YieldDesk/pkg/http"
	"YieldDesk/pkg/logger"
	"YieldDesk/pkg/metrics"
)

type rootOptions struct {
	configPath string
	format     string
	verbose    bool
}

var validFormats = []string{"json", "csv"}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "yieldctl",
		Short: "Treasury yield curves, spreads and market news",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(validFormats, opts.format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.format, validFormats)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "config/config.yaml", "config file path")
	cmd.PersistentFlags().StringVar(&opts.format, "format", "json", "output format (json|csv)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")

	cmd.AddCommand(newCatalogCommand(opts))
	cmd.AddCommand(newCurveCommand(opts))
	cmd.AddCommand(newCompareCommand(opts))
	cmd.AddCommand(newHistoryCommand(opts))
	cmd.AddCommand(newNewsCommand(opts))
	cmd.AddCommand(newArchiveCommand(opts))

	return cmd
}

// deps are the use cases a command runs, built without the HTTP layer.
type deps struct {
	cfg     *config.Config
	log     *logger.Logger
	catalog *catalog.Catalog
	curve   *usecase.CurveUseCase
	history *usecase.HistoricalUseCase
	news    *usecase.NewsUseCase
}

func (o *rootOptions) build(cmd *cobra.Command) (*deps, error) {
	cfg, err := config.LoadWithEnv(o.configPath)
	if err != nil {
		return nil, err
	}

	log := logger.NewNop()
	if o.verbose {
		log = logger.NewWriter(cmd.ErrOrStderr())
	}

	var m metrics.Nop
	cat := di.ProvideCatalog()
	memo := di.ProvideMemo(di.ProvideMemoStore(cfg, nil), cfg, m, log)
	fetcher := di.ProvideSeriesFetcher(cat, di.ProvideMacroProvider(cfg, log), nil, m, log)
	news := di.ProvideNewsUseCase(di.ProvideNewsProvider(cfg), cache.NewTTLCache(16), m, log, cfg)

	return &deps{
		cfg:     cfg,
		log:     log,
		catalog: cat,
		curve:   di.ProvideCurveUseCase(cat, fetcher, memo, m, log, cfg),
		history: di.ProvideHistoricalUseCase(fetcher, memo, m, log),
		news:    news,
	}, nil
}

// emit writes v as indented JSON, or as CSV when requested and supported.
func (o *rootOptions) emit(w io.Writer, v interface{}) error {
	if o.format == "csv" {
		if c, ok := v.(xhttp.CSVWriter); ok {
			return c.WriteCSV(w)
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newCatalogCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the maturities and their FRED series",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.emit(cmd.OutOrStdout(), catalog.Treasury().Entries())
		},
	}
}
