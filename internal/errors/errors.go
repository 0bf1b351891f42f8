// Package errors provides centralized error handling for the troutpop
// analysis pipeline. Errors carry a category and optional context data so
// the CLI and logs can group failures by kind without string matching.
package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"time"
)

// ErrorCategory represents the type of error for better categorization
type ErrorCategory string

// CategorizedError is an interface for errors that can specify their own category
type CategorizedError interface {
	error
	ErrorCategory() ErrorCategory
}

const (
	CategoryInputIntegrity     ErrorCategory = "input-integrity"     // malformed or inconsistent survey tables
	CategoryDegenerateSite     ErrorCategory = "degenerate-site"     // removal model cannot fit a site
	CategoryInsufficientSample ErrorCategory = "insufficient-sample" // too few sites or no handled fish
	CategoryNonFiniteResult    ErrorCategory = "non-finite-result"   // zero denominator or exhausted correction term
	CategoryModelFit           ErrorCategory = "model-fit"           // removal estimator internals
	CategoryFileIO             ErrorCategory = "file-io"
	CategoryFileParsing        ErrorCategory = "file-parsing"
	CategoryConfiguration      ErrorCategory = "configuration"
	CategoryValidation         ErrorCategory = "validation"
	CategoryGeneric            ErrorCategory = "generic"
)

// ComponentUnknown is used when the component has not been set by the caller.
const ComponentUnknown = "unknown"

// EnhancedError wraps an error with a category, component and context data.
type EnhancedError struct {
	Err       error          // Original error
	Component string         // Component where the error occurred
	Category  ErrorCategory  // Error category for grouping
	Context   map[string]any // Additional context data
	Timestamp time.Time      // When the error occurred
}

// Error implements the error interface
func (ee *EnhancedError) Error() string {
	return ee.Err.Error()
}

// Unwrap implements the error unwrapping interface
func (ee *EnhancedError) Unwrap() error {
	return ee.Err
}

// Is reports category equality against other enhanced errors and defers to
// the wrapped chain otherwise.
func (ee *EnhancedError) Is(target error) bool {
	if other, ok := target.(*EnhancedError); ok {
		return ee.Category == other.Category
	}
	return Is(ee.Err, target)
}

// ErrorCategory implements CategorizedError.
func (ee *EnhancedError) ErrorCategory() ErrorCategory {
	return ee.Category
}

// GetContext returns a copy of the error context data.
func (ee *EnhancedError) GetContext() map[string]any {
	if ee.Context == nil {
		return nil
	}
	contextCopy := make(map[string]any, len(ee.Context))
	maps.Copy(contextCopy, ee.Context)
	return contextCopy
}

// ErrorBuilder provides a fluent interface for creating enhanced errors
type ErrorBuilder struct {
	err       error
	component string
	category  ErrorCategory
	context   map[string]any
}

// New creates a new error builder wrapping err.
func New(err error) *ErrorBuilder {
	return &ErrorBuilder{err: err}
}

// Newf creates a new builder around a formatted error.
func Newf(format string, args ...any) *ErrorBuilder {
	return New(fmt.Errorf(format, args...))
}

// Wrap is an alias for New, reads better when err is known non-nil.
func Wrap(err error) *ErrorBuilder {
	return New(err)
}

// Component sets the component name.
func (eb *ErrorBuilder) Component(component string) *ErrorBuilder {
	eb.component = component
	return eb
}

// Category sets the error category for better grouping
func (eb *ErrorBuilder) Category(category ErrorCategory) *ErrorBuilder {
	eb.category = category
	return eb
}

// Context adds context data to the error
func (eb *ErrorBuilder) Context(key string, value any) *ErrorBuilder {
	if eb.context == nil {
		eb.context = make(map[string]any)
	}
	eb.context[key] = value
	return eb
}

// SiteContext adds site identification context.
func (eb *ErrorBuilder) SiteContext(siteID string) *ErrorBuilder {
	return eb.Context("site_id", siteID)
}

// TargetContext adds the estimation target (e.g. "adult", "density") that
// failed, so per-target errors stay attributable after aggregation.
func (eb *ErrorBuilder) TargetContext(target string) *ErrorBuilder {
	return eb.Context("target", target)
}

// Build creates the EnhancedError.
func (eb *ErrorBuilder) Build() *EnhancedError {
	ee := &EnhancedError{
		Err:       eb.err,
		Component: eb.component,
		Category:  eb.category,
		Context:   eb.context,
		Timestamp: time.Now(),
	}
	if ee.Component == "" {
		ee.Component = ComponentUnknown
	}
	if ee.Category == "" {
		ee.Category = CategoryGeneric
	}
	return ee
}

// NewStd returns a plain standard library error without enhancement.
// Use for sentinel errors that callers match with Is.
func NewStd(text string) error {
	return stderrors.New(text)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Unwrap returns the result of calling Unwrap on err.
func Unwrap(err error) error {
	return stderrors.Unwrap(err)
}

// Join wraps a list of errors into a single error.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}

// IsCategory reports whether err or anything it wraps carries the category.
func IsCategory(err error, category ErrorCategory) bool {
	for err != nil {
		if ce, ok := err.(CategorizedError); ok && ce.ErrorCategory() == category {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// CategoryOf returns the first category found in err's chain, or
// CategoryGeneric when none is carried.
func CategoryOf(err error) ErrorCategory {
	for err != nil {
		if ce, ok := err.(CategorizedError); ok {
			return ce.ErrorCategory()
		}
		err = stderrors.Unwrap(err)
	}
	return CategoryGeneric
}
