// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "troutpop")
	viper.SetDefault("main.log.enabled", false)
	viper.SetDefault("main.log.path", "logs/troutpop.log")

	viper.SetDefault("frame.reaches", 0)
	viper.SetDefault("frame.totallength", 0.0)
	viper.SetDefault("frame.wetfraction", 0.0)

	// Fork length thresholds in millimeters. A fish strictly below the
	// juvenile threshold is a juvenile, strictly above the adult threshold
	// an adult, and enigmatic in between (inclusive on both ends).
	viper.SetDefault("sizeclass.juvenilebelow", 150.0)
	viper.SetDefault("sizeclass.adultabove", 200.0)

	viper.SetDefault("removal.method", MethodCarleStrub)
	viper.SetDefault("removal.cache", true)
	viper.SetDefault("removal.workers", 1)
	viper.SetDefault("removal.onfitfailure", FitFailureAbort)

	viper.SetDefault("estimate.confidence", 0.95)
	viper.SetDefault("estimate.multipliers", []int{1, 2, 3, 4})

	viper.SetDefault("input.passtable", "")
	viper.SetDefault("input.fishtable", "")
	viper.SetDefault("input.sitetable", "")

	viper.SetDefault("output.dir", "")
	viper.SetDefault("output.format", FormatTable)
	viper.SetDefault("output.progress", false)
}
