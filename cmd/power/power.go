// Package power implements the power subcommand: the full pipeline runs,
// but only the precision projection table is rendered, for sizing the next
// field season.
package power

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jlammi/troutpop-go/internal/analysis"
	"github.com/jlammi/troutpop-go/internal/conf"
	"github.com/jlammi/troutpop-go/internal/report"
)

// Command creates the power command.
func Command(settings *conf.Settings) *cobra.Command {
	var multipliers string

	cmd := &cobra.Command{
		Use:   "power",
		Short: "Project adult estimate precision against larger sample sizes",
		Long: `Estimate as analyze does, then report only how the coefficient of
variation of the adult abundance estimate would shrink if the sample were
replicated by each multiplier.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if multipliers != "" {
				parsed, err := parseMultipliers(multipliers)
				if err != nil {
					return err
				}
				settings.Estimate.Multipliers = parsed
			}

			results, err := analysis.Run(cmd.Context(), settings, analysis.Options{})
			if err != nil {
				return err
			}
			defer analysis.CloseLogger() //nolint:errcheck // log close failure has nowhere to go

			if results.PowerErr != nil {
				return results.PowerErr
			}
			return report.WritePowerTable(os.Stdout, results, settings.Output.Format)
		},
	}

	cmd.Flags().StringVarP(&multipliers, "multipliers", "m", "", "Comma-separated sample size multipliers, e.g. 1,2,3,4")
	cmd.Flags().StringVarP(&settings.Output.Format, "format", "f", settings.Output.Format, "Output format: table, csv")
	return cmd
}

func parseMultipliers(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		m, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid multiplier %q: %w", part, err)
		}
		if m < 1 {
			return nil, fmt.Errorf("multiplier must be at least 1, got %d", m)
		}
		out = append(out, m)
	}
	return out, nil
}
