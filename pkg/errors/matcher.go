package errors

import (
	"net/http"
	"strings"
)

// PatternMatcher matches error messages to categories using string patterns.
type PatternMatcher interface {
	Match(errorMsg string) ErrorCategory
}

// MatchStatus maps an HTTP status code to a category.
func MatchStatus(status int) ErrorCategory {
	switch {
	case status == http.StatusNotFound:
		return CategoryNotFound
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return CategoryTimeout
	case status >= http.StatusInternalServerError:
		return CategoryServer
	case status >= http.StatusBadRequest:
		return CategoryBadRequest
	default:
		return CategoryUnknown
	}
}

// NewPatternMatcher creates a new PatternMatcher with predefined patterns.
// Patterns are checked in order, so more specific categories come first.
func NewPatternMatcher() PatternMatcher {
	return &patternMatcher{
		patterns: []categoryPatterns{
			{CategoryTimeout, []string{
				"context deadline exceeded",
				"i/o timeout",
				"timeout awaiting",
				"client.timeout exceeded",
			}},
			{CategoryConnection, []string{
				"connection refused",
				"no such host",
				"connection reset",
				"network is unreachable",
				"dial tcp",
				": eof",
			}},
			{CategoryDecode, []string{
				"invalid character",
				"cannot unmarshal",
				"unexpected end of json",
				"malformed response",
			}},
			{CategoryNotFound, []string{
				"404",
				"not found",
			}},
			{CategoryServer, []string{
				"500",
				"502",
				"503",
				"internal server error",
				"bad gateway",
				"service unavailable",
			}},
			{CategoryBadRequest, []string{
				"400",
				"bad request",
			}},
		},
	}
}

type categoryPatterns struct {
	category ErrorCategory
	patterns []string
}

// patternMatcher is the concrete implementation of PatternMatcher.
type patternMatcher struct {
	patterns []categoryPatterns
}

// Match returns the error category based on pattern matching.
func (m *patternMatcher) Match(errorMsg string) ErrorCategory {
	lowerMsg := strings.ToLower(errorMsg)

	for _, entry := range m.patterns {
		for _, pattern := range entry.patterns {
			if strings.Contains(lowerMsg, pattern) {
				return entry.category
			}
		}
	}

	return CategoryUnknown
}
