// Package errors defines caller-visible domain errors with stable wire codes.
// Infrastructure failures are never exposed through these; handlers collapse
// them into a generic server_error instead.
package errors

// DomainError carries a stable string code for API clients plus the HTTP
// status the handlers should respond with.
type DomainError struct {
	Code    string
	Message string
	Status  int
}

func (e *DomainError) Error() string { return e.Message }
