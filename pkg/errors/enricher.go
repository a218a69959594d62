package errors

import (
	"errors"
)

// StatusCoder is implemented by errors that carry an HTTP status code.
type StatusCoder interface {
	StatusCode() int
}

// Enricher enriches standard errors with actionable suggestions.
type Enricher interface {
	Enrich(err error, endpoint string) error
}

// NewEnricher creates a new Enricher with default pattern matcher and suggestion generator.
func NewEnricher() Enricher {
	return &enricher{
		matcher:   NewPatternMatcher(),
		generator: NewSuggestionGenerator(),
	}
}

// enricher is the concrete implementation of Enricher.
type enricher struct {
	matcher   PatternMatcher
	generator SuggestionGenerator
}

// Enrich takes a standard error and enriches it with category and actionable suggestions.
// If the error is already an ActionableError, it is returned unchanged.
func (e *enricher) Enrich(err error, endpoint string) error {
	if err == nil {
		return nil
	}

	var actionableErr ActionableError
	if errors.As(err, &actionableErr) {
		return actionableErr
	}

	errMsg := err.Error()

	category := CategoryUnknown

	var coder StatusCoder
	if errors.As(err, &coder) {
		category = MatchStatus(coder.StatusCode())
	}

	if category == CategoryUnknown {
		category = e.matcher.Match(errMsg)
	}

	suggestions := e.generator.Generate(category, endpoint)

	return NewActionableError(
		errMsg,
		category,
		suggestions,
		endpoint,
	)
}
