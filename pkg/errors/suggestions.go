package errors

// SuggestionGenerator generates actionable suggestions based on error category.
type SuggestionGenerator interface {
	Generate(category ErrorCategory, endpoint string) []string
}

// NewSuggestionGenerator creates a new SuggestionGenerator.
func NewSuggestionGenerator() SuggestionGenerator {
	return &suggestionGenerator{}
}

// suggestionGenerator is the concrete implementation of SuggestionGenerator.
type suggestionGenerator struct{}

// Generate returns actionable suggestions based on the error category and endpoint.
func (g *suggestionGenerator) Generate(category ErrorCategory, endpoint string) []string {
	switch category {
	case CategoryConnection:
		return g.generateConnectionSuggestions(endpoint)
	case CategoryTimeout:
		return g.generateTimeoutSuggestions()
	case CategoryNotFound:
		return g.generateNotFoundSuggestions(endpoint)
	case CategoryServer:
		return g.generateServerSuggestions()
	case CategoryBadRequest:
		return g.generateBadRequestSuggestions()
	case CategoryDecode:
		return g.generateDecodeSuggestions(endpoint)
	case CategoryUnknown:
		return g.generateUnknownSuggestions()
	default:
		return g.generateUnknownSuggestions()
	}
}

func (g *suggestionGenerator) generateBadRequestSuggestions() []string {
	return []string{
		"Check the run prefix and test configuration values",
		"Fairness bands need a non-empty key and a weight of at least 1",
	}
}

func (g *suggestionGenerator) generateConnectionSuggestions(endpoint string) []string {
	suggestions := []string{
		"Make sure the workflow API server is running",
	}

	if endpoint != "" {
		suggestions = append(suggestions, "Verify the API address is reachable: "+endpoint)
	}

	suggestions = append(suggestions,
		"Start the simulated backend with 'fairsim' for an offline demo",
		"Polling continues automatically; results resume once the server answers",
	)

	return suggestions
}

func (g *suggestionGenerator) generateDecodeSuggestions(endpoint string) []string {
	suggestions := []string{
		"The server answered with something other than a status report",
	}

	if endpoint != "" {
		suggestions = append(suggestions, "Check that --api points at the workflow API, not the UI: "+endpoint)
	} else {
		suggestions = append(suggestions, "Check that --api points at the workflow API, not the UI")
	}

	return suggestions
}

func (g *suggestionGenerator) generateNotFoundSuggestions(endpoint string) []string {
	suggestions := []string{
		"Check whether the API base URL needs an '/api' suffix (UI proxy) or not (direct)",
	}

	if endpoint != "" {
		suggestions = append(suggestions, "Requested endpoint: "+endpoint)
	}

	return suggestions
}

func (g *suggestionGenerator) generateServerSuggestions() []string {
	return []string{
		"The workflow API reported an internal error; check its logs",
		"Verify the API can reach the orchestration backend",
		"Polling continues automatically; the last good results stay on screen",
	}
}

func (g *suggestionGenerator) generateTimeoutSuggestions() []string {
	return []string{
		"The server took too long to answer; it may be overloaded listing workflows",
		"Try a longer --poll-interval for large runs",
	}
}

func (g *suggestionGenerator) generateUnknownSuggestions() []string {
	return []string{
		"Check the error message for more details",
		"Run with --log-file and --log-level debug to capture request logs",
	}
}
