package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joe/fairwatch/internal/statusapi"
	"github.com/joe/fairwatch/internal/tracker"
)

// Field names reported by ValidateTestConfig.
const (
	FieldBands     = "bands"
	FieldPrefix    = "prefix"
	FieldWorkflows = "workflows"
)

// Validation failures.
var (
	ErrBandCount      = errors.New("Count cannot be negative")       //nolint:staticcheck // Shown verbatim in the form
	ErrBandKey        = errors.New("Key is required")                //nolint:staticcheck // Shown verbatim in the form
	ErrBandWeight     = errors.New("Weight must be at least 1")      //nolint:staticcheck // Shown verbatim in the form
	ErrNoBands        = errors.New("Add at least one band")          //nolint:staticcheck // Shown verbatim in the form
	ErrPrefixRequired = errors.New("Workflow ID prefix is required") //nolint:staticcheck // Shown verbatim in the form
	ErrWorkflowCount  = errors.New("Must be at least 1")             //nolint:staticcheck // Shown verbatim in the form
)

// FieldError is a validation failure of one form field.
type FieldError struct {
	Field string
	Err   error
}

// Error implements error.
func (e FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

// Unwrap returns the underlying validation failure.
func (e FieldError) Unwrap() error {
	return e.Err
}

// ValidationErrors collects every field failure of a submission.
type ValidationErrors []FieldError

// Error implements error.
func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fe.Error())
	}

	return "invalid test configuration: " + strings.Join(msgs, "; ")
}

// For returns the message for a field, or "".
func (v ValidationErrors) For(field string) string {
	for _, fe := range v {
		if fe.Field == field {
			return fe.Err.Error()
		}
	}

	return ""
}

// Unwrap exposes each failure to errors.Is and errors.As.
func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(v))
	for _, fe := range v {
		errs = append(errs, fe)
	}

	return errs
}

// BandField names a field of the i-th band ("bands[0].key").
func BandField(i int, name string) string {
	return fmt.Sprintf("%s[%d].%s", FieldBands, i, name)
}

// ValidateTestConfig checks a submission before it is sent. It returns nil or a
// ValidationErrors listing every problem.
func ValidateTestConfig(cfg statusapi.TestConfig) error {
	var errs ValidationErrors

	if strings.TrimSpace(cfg.WorkflowIDPrefix) == "" {
		errs = append(errs, FieldError{Field: FieldPrefix, Err: ErrPrefixRequired})
	}

	hasCounts := false

	if cfg.Mode == tracker.ModeFairness {
		if len(cfg.Bands) == 0 {
			errs = append(errs, FieldError{Field: FieldBands, Err: ErrNoBands})
		}

		for i, band := range cfg.Bands {
			if strings.TrimSpace(band.Key) == "" {
				errs = append(errs, FieldError{Field: BandField(i, "key"), Err: ErrBandKey})
			}

			if band.Weight < 1 {
				errs = append(errs, FieldError{Field: BandField(i, "weight"), Err: ErrBandWeight})
			}

			if band.Count < 0 {
				errs = append(errs, FieldError{Field: BandField(i, "count"), Err: ErrBandCount})
			}

			if band.Count > 0 {
				hasCounts = true
			}
		}
	}

	if !hasCounts && cfg.NumberOfWorkflows < 1 {
		errs = append(errs, FieldError{Field: FieldWorkflows, Err: ErrWorkflowCount})
	}

	if len(errs) == 0 {
		return nil
	}

	return errs
}
