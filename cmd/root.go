// Package cmd wires the troutpop command tree: analyze runs the whole
// estimation pipeline, power reruns it for the precision projection only,
// validate checks the survey tables without estimating anything.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jlammi/troutpop-go/cmd/analyze"
	"github.com/jlammi/troutpop-go/cmd/power"
	"github.com/jlammi/troutpop-go/cmd/validate"
	"github.com/jlammi/troutpop-go/internal/buildinfo"
	"github.com/jlammi/troutpop-go/internal/conf"
	"github.com/jlammi/troutpop-go/internal/logging"
)

// RootCommand creates and returns the root command.
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "troutpop",
		Short:   "Regional trout abundance from removal sampling",
		Version: buildinfo.String(),
		Long: `troutpop estimates regional stream trout density and abundance from
multi-pass removal (depletion) sampling of short reaches, using ratio
estimators over the sample frame with t-based confidence intervals.`,
	}

	if err := setupFlags(rootCmd, settings); err != nil {
		// Flag registration only fails on programming errors.
		panic(err)
	}

	rootCmd.AddCommand(
		analyze.Command(settings),
		power.Command(settings),
		validate.Command(settings),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Bind the invoked command's local flags before the re-unmarshal,
		// otherwise the config values would overwrite the parsed flags.
		if err := bindLocalFlags(cmd); err != nil {
			return err
		}
		// Re-unmarshal so flag overrides merged by viper reach the struct.
		if err := viper.Unmarshal(settings); err != nil {
			return fmt.Errorf("error applying flag overrides: %w", err)
		}
		logging.SetDebug(settings.Debug)
		return nil
	}

	return rootCmd
}

// setupFlags defines the persistent flags shared by every subcommand and
// binds them to their configuration keys.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	flags.StringVar(&settings.Input.PassTable, "passes", viper.GetString("input.passtable"), "CSV of per-pass catches")
	flags.StringVar(&settings.Input.FishTable, "fish", viper.GetString("input.fishtable"), "CSV of handled fish fork lengths")
	flags.StringVar(&settings.Input.SiteTable, "sites", viper.GetString("input.sitetable"), "CSV of all visited sites including dry ones")
	flags.IntVar(&settings.Frame.Reaches, "reaches", viper.GetInt("frame.reaches"), "Number of short reaches in the sample frame (N)")
	flags.Float64Var(&settings.Frame.TotalLength, "frame-length", viper.GetFloat64("frame.totallength"), "Total frame length in meters")
	flags.Float64Var(&settings.Frame.WetFraction, "wet-fraction", viper.GetFloat64("frame.wetfraction"), "Override the wet fraction derived from the site table")

	bindings := map[string]string{
		"debug":        "debug",
		"passes":       "input.passtable",
		"fish":         "input.fishtable",
		"sites":        "input.sitetable",
		"reaches":      "frame.reaches",
		"frame-length": "frame.totallength",
		"wet-fraction": "frame.wetfraction",
	}
	for flag, key := range bindings {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("error binding flag %s: %w", flag, err)
		}
	}
	return nil
}

// localBindings maps subcommand flag names to their configuration keys.
// These bind per invocation in bindLocalFlags so that sibling commands can
// share a flag name (analyze and power both take --format).
var localBindings = map[string]string{
	"output":   "output.dir",
	"format":   "output.format",
	"progress": "output.progress",
	"workers":  "removal.workers",
	"method":   "removal.method",
}

// bindLocalFlags binds the invoked command's local flags to viper so their
// parsed values survive the configuration re-unmarshal.
func bindLocalFlags(cmd *cobra.Command) error {
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := localBindings[f.Name]
		if !ok || bindErr != nil {
			return
		}
		if err := viper.BindPFlag(key, f); err != nil {
			bindErr = fmt.Errorf("error binding flag %s: %w", f.Name, err)
		}
	})
	return bindErr
}
