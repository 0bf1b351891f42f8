package conf

import (
	"fmt"
	"strings"
)

// ValidationError collects every invalid setting so the user can fix the
// config in one go instead of replaying failures.
type ValidationError struct {
	Errors []string
}

func (ve ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", strings.Join(ve.Errors, "; "))
}

// ValidateSettings checks value ranges and enum memberships. Requiredness of
// input tables and frame constants is enforced by the commands that need
// them, so that validate-only invocations stay usable.
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validateFrameSettings(settings); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}
	if err := validateSizeClassSettings(settings); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}
	if err := validateRemovalSettings(settings); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}
	if err := validateEstimateSettings(settings); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}
	if err := validateOutputSettings(settings); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateFrameSettings(settings *Settings) error {
	if settings.Frame.Reaches < 0 {
		return fmt.Errorf("frame.reaches must not be negative, got %d", settings.Frame.Reaches)
	}
	if settings.Frame.TotalLength < 0 {
		return fmt.Errorf("frame.totallength must not be negative, got %g", settings.Frame.TotalLength)
	}
	if settings.Frame.WetFraction < 0 || settings.Frame.WetFraction > 1 {
		return fmt.Errorf("frame.wetfraction must be between 0 and 1, got %g", settings.Frame.WetFraction)
	}
	return nil
}

func validateSizeClassSettings(settings *Settings) error {
	juvenile := settings.SizeClass.JuvenileBelow
	adult := settings.SizeClass.AdultAbove
	if juvenile <= 0 {
		return fmt.Errorf("sizeclass.juvenilebelow must be positive, got %g", juvenile)
	}
	if adult < juvenile {
		return fmt.Errorf("sizeclass.adultabove (%g) must not be below sizeclass.juvenilebelow (%g)", adult, juvenile)
	}
	return nil
}

func validateRemovalSettings(settings *Settings) error {
	switch settings.Removal.Method {
	case MethodCarleStrub, MethodZippin:
	default:
		return fmt.Errorf("removal.method must be %q or %q, got %q", MethodCarleStrub, MethodZippin, settings.Removal.Method)
	}
	switch settings.Removal.OnFitFailure {
	case FitFailureAbort, FitFailureSkip:
	default:
		return fmt.Errorf("removal.onfitfailure must be %q or %q, got %q", FitFailureAbort, FitFailureSkip, settings.Removal.OnFitFailure)
	}
	if settings.Removal.Workers < 0 {
		return fmt.Errorf("removal.workers must not be negative, got %d", settings.Removal.Workers)
	}
	return nil
}

func validateEstimateSettings(settings *Settings) error {
	if settings.Estimate.Confidence <= 0 || settings.Estimate.Confidence >= 1 {
		return fmt.Errorf("estimate.confidence must be strictly between 0 and 1, got %g", settings.Estimate.Confidence)
	}
	seen := make(map[int]bool, len(settings.Estimate.Multipliers))
	for _, m := range settings.Estimate.Multipliers {
		if m < 1 {
			return fmt.Errorf("estimate.multipliers must all be at least 1, got %d", m)
		}
		if seen[m] {
			return fmt.Errorf("estimate.multipliers contains %d twice", m)
		}
		seen[m] = true
	}
	return nil
}

func validateOutputSettings(settings *Settings) error {
	switch settings.Output.Format {
	case FormatTable, FormatCSV:
	default:
		return fmt.Errorf("output.format must be %q or %q, got %q", FormatTable, FormatCSV, settings.Output.Format)
	}
	return nil
}
