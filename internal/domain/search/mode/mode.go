package mode

// Mode is the backend access path used for a search.
type Mode string

// Dispatch mode constants.
const (
	// DirectIndex sends a compiled query body to a named index.
	DirectIndex Mode = "direct"
	// Application invokes a stored search application with flattened params.
	Application Mode = "application"
)

// Tag identifies the backend that served a response.
const Tag = "elasticsearch"

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == DirectIndex || m == Application
}

// Select picks the dispatch mode from static configuration.
// Application mode needs both the flag and an application name.
func Select(useApplication bool, application string) Mode {
	if useApplication && application != "" {
		return Application
	}
	return DirectIndex
}

// Strategy is the scoring strategy of a compiled query.
type Strategy string

// Strategy constants.
const (
	Lexical Strategy = "lexical"
	Hybrid  Strategy = "hybrid"
)
