package doctor

import "fmt"

// UserError reports a condition the user can fix directly: a missing
// dependency, an out-of-date package, a missing schema option. Hint is an
// optional one-line suggestion.
type UserError struct {
	Message string
	Hint    string
}

func (e *UserError) Error() string { return e.Message }

// ExternalError wraps a failure surfaced by a collaborator (config
// resolution, schema loading). The cause is always kept for diagnostic
// chaining.
type ExternalError struct {
	Message string
	Cause   error
}

func (e *ExternalError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *ExternalError) Unwrap() error { return e.Cause }
