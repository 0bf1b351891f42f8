// Package conf loads and validates troutpop configuration from config.yaml,
// environment variables and command line flags, in that order of precedence
// (viper handles the merge).
package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Fit failure policies, see Removal.OnFitFailure.
const (
	FitFailureAbort = "abort"
	FitFailureSkip  = "skip"
)

// Removal estimator methods.
const (
	MethodCarleStrub = "carlestrub"
	MethodZippin     = "zippin"
)

// Output formats.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
)

// Settings contains all user configuration for a troutpop run.
type Settings struct {
	Debug bool `yaml:"debug"` // Debug logging

	Main struct {
		Name string      `yaml:"name"` // Survey program name stamped into report headers
		Log  LogSettings `yaml:"log"`  // File log settings
	} `yaml:"main"`

	Frame struct {
		Reaches     int     `yaml:"reaches"`     // N, total short reaches in the sample frame
		TotalLength float64 `yaml:"totallength"` // Total frame length in meters, L1_bar = totallength / reaches
		WetFraction float64 `yaml:"wetfraction"` // Override for fw; 0 means derive from the site table
	} `yaml:"frame"`

	SizeClass struct {
		JuvenileBelow float64 `yaml:"juvenilebelow"` // Fork length (mm) below which a fish is a juvenile
		AdultAbove    float64 `yaml:"adultabove"`    // Fork length (mm) above which a fish is an adult
	} `yaml:"sizeclass"`

	Removal struct {
		Method       string `yaml:"method"`       // carlestrub or zippin
		Cache        bool   `yaml:"cache"`        // Memoize fits for repeated catch vectors
		Workers      int    `yaml:"workers"`      // Parallel fit workers, 0 = number of CPUs
		OnFitFailure string `yaml:"onfitfailure"` // abort (default) or skip with bias warning
	} `yaml:"removal"`

	Estimate struct {
		Confidence  float64 `yaml:"confidence"`  // Two-sided confidence level for intervals
		Multipliers []int   `yaml:"multipliers"` // Sample size inflation factors for the power table
	} `yaml:"estimate"`

	Input struct {
		PassTable string `yaml:"passtable"` // CSV of per-pass catches (required)
		FishTable string `yaml:"fishtable"` // CSV of handled fish lengths (required)
		SiteTable string `yaml:"sitetable"` // CSV of all visited sites incl. dry ones (optional)
	} `yaml:"input"`

	Output struct {
		Dir      string `yaml:"dir"`      // Output directory, empty writes to stdout
		Format   string `yaml:"format"`   // table or csv
		Progress bool   `yaml:"progress"` // Show a progress bar during site fitting
	} `yaml:"output"`
}

// LogSettings controls the rotating JSON file log.
type LogSettings struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads the configuration file and environment into a Settings struct
// and validates it.
func Load() (*Settings, error) {
	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	return settings, nil
}

// initViper initializes viper with defaults, config paths and env bindings.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	viper.SetEnvPrefix("troutpop")
	viper.AutomaticEnv()

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// No config file anywhere, write one with defaults so the user
			// has something to edit.
			return createDefaultConfig(configPaths[0])
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPaths returns the directories searched for config.yaml:
// the working directory first, then the OS user config directory.
func GetDefaultConfigPaths() ([]string, error) {
	paths := []string{"."}
	userDir, err := os.UserConfigDir()
	if err == nil {
		paths = append(paths, filepath.Join(userDir, "troutpop"))
	}
	return paths, nil
}
