// Package validate implements the validate subcommand: run every input
// integrity check over the survey tables and list all findings, without
// estimating anything.
package validate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jlammi/troutpop-go/internal/conf"
	"github.com/jlammi/troutpop-go/internal/survey"
)

// Command creates the validate command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the survey tables for integrity problems",
		Long: `Load the pass, fish and site tables and report every integrity
violation found: unknown site references, broken pass sequences, negative
catches, length disagreements. Exits non-zero when any finding remains, so
the check can gate a data ingestion pipeline.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			frame := survey.Frame{
				Reaches:     settings.Frame.Reaches,
				TotalLength: settings.Frame.TotalLength,
			}
			ds, err := survey.LoadDataset(frame,
				settings.Input.PassTable, settings.Input.FishTable, settings.Input.SiteTable)
			if err != nil {
				return err
			}

			findings := survey.Validate(ds)
			if len(findings) == 0 {
				fmt.Printf("OK: %d sites, %d pass rows, %d fish\n",
					len(ds.Sites), len(ds.Passes), len(ds.Fish))
				return nil
			}

			for _, finding := range findings {
				fmt.Println(" -", finding)
			}
			return fmt.Errorf("%d integrity findings", len(findings))
		},
	}
}
