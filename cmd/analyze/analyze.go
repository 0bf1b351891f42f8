// Package analyze implements the analyze subcommand, the full estimation
// pipeline from survey tables to rendered report tables.
package analyze

import (
	"sync"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"

	"github.com/jlammi/troutpop-go/internal/analysis"
	"github.com/jlammi/troutpop-go/internal/conf"
	"github.com/jlammi/troutpop-go/internal/report"
)

// Command creates the analyze command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Estimate regional density and abundance from the survey tables",
		Long: `Run the whole pipeline: load and validate the pass, fish and site
tables, fit the removal model per site, compute the regional density and the
per size class abundance totals with confidence intervals, and project the
precision of the adult estimate against larger sample sizes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := analysis.Options{}
			if settings.Output.Progress {
				opts.Progress = progressBar()
				uiprogress.Start()
				defer uiprogress.Stop()
			}

			results, err := analysis.Run(cmd.Context(), settings, opts)
			if err != nil {
				return err
			}
			defer analysis.CloseLogger() //nolint:errcheck // log close failure has nowhere to go

			return report.Render(results, settings.Output.Dir, settings.Output.Format)
		},
	}

	setupFlags(cmd, settings)
	return cmd
}

// progressBar returns a progress callback backed by uiprogress, created
// lazily because the site count is unknown until the tables are loaded.
func progressBar() func(done, total int) {
	var once sync.Once
	var bar *uiprogress.Bar
	return func(done, total int) {
		once.Do(func() {
			bar = uiprogress.AddBar(total).AppendCompleted().PrependElapsed()
		})
		_ = bar.Set(done)
	}
}

func setupFlags(cmd *cobra.Command, settings *conf.Settings) {
	cmd.Flags().StringVarP(&settings.Output.Dir, "output", "o", settings.Output.Dir, "Output directory, empty writes to stdout")
	cmd.Flags().StringVarP(&settings.Output.Format, "format", "f", settings.Output.Format, "Output format: table, csv")
	cmd.Flags().BoolVar(&settings.Output.Progress, "progress", settings.Output.Progress, "Show a progress bar during site fitting")
	cmd.Flags().IntVar(&settings.Removal.Workers, "workers", settings.Removal.Workers, "Parallel site fit workers")
	cmd.Flags().StringVar(&settings.Removal.Method, "method", settings.Removal.Method, "Removal estimator: carlestrub, zippin")
}
