// Package errors provides actionable error handling with context-aware suggestions.
//
// This package enriches transport and API errors raised while talking to the workflow
// backend with a category and actionable suggestions, so the TUI error banner can tell
// the user what to try next instead of only showing "connection refused".
//
// Basic Usage:
//
//	enricher := errors.NewEnricher()
//	_, err := client.FetchPriority(ctx, "Test-010125-1200")
//	if err != nil {
//	    actionableErr := enricher.Enrich(err, "http://localhost:7080/run-status")
//	    fmt.Println(actionableErr.Error())
//	    fmt.Println(errors.FormatSuggestions(actionableErr))
//	}
//
// The enricher first looks for an HTTP status code on the error chain (any error
// implementing StatusCoder) and falls back to matching the error text.
package errors

import "strings"

// Exported constants.
const (
	CategoryBadRequest ErrorCategory = "bad_request"
	CategoryConnection ErrorCategory = "connection"
	CategoryDecode     ErrorCategory = "decode"
	CategoryNotFound   ErrorCategory = "not_found"
	CategoryServer     ErrorCategory = "server"
	CategoryTimeout    ErrorCategory = "timeout"
	CategoryUnknown    ErrorCategory = "unknown"
)

// ActionableError represents an error with actionable suggestions for the user.
type ActionableError interface {
	error
	OriginalError() string
	Category() ErrorCategory
	Suggestions() []string
	Endpoint() string
}

// NewActionableError creates a new ActionableError with the given details.
func NewActionableError(
	originalError string,
	category ErrorCategory,
	suggestions []string,
	endpoint string,
) ActionableError {
	return &actionableError{
		originalError: originalError,
		category:      category,
		suggestions:   suggestions,
		endpoint:      endpoint,
	}
}

// ErrorCategory represents the type of error that occurred.
type ErrorCategory string

// FormatSuggestions formats the suggestions from an ActionableError as a bulleted list
// for display in the TUI. Returns empty string if the error is nil or has no suggestions.
func FormatSuggestions(err error) string {
	if err == nil {
		return ""
	}

	actionable, ok := err.(ActionableError)
	if !ok {
		return ""
	}

	suggestions := actionable.Suggestions()
	if len(suggestions) == 0 {
		return ""
	}

	var builder strings.Builder
	for i, suggestion := range suggestions {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString("  • ")
		builder.WriteString(suggestion)
	}

	return builder.String()
}

// actionableError is the concrete implementation of ActionableError.
type actionableError struct {
	originalError string
	category      ErrorCategory
	suggestions   []string
	endpoint      string
}

// Category returns the error category.
func (e *actionableError) Category() ErrorCategory {
	return e.category
}

// Endpoint returns the URL or API path the failing request targeted.
func (e *actionableError) Endpoint() string {
	return e.endpoint
}

// Error implements the error interface.
func (e *actionableError) Error() string {
	return e.originalError
}

// OriginalError returns the original error message.
func (e *actionableError) OriginalError() string {
	return e.originalError
}

// Suggestions returns the list of actionable suggestions.
func (e *actionableError) Suggestions() []string {
	return e.suggestions
}
