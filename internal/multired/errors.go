package multired

import "fmt"

// ValidationError reports bad local input. It is recovered before any request
// is issued and never reaches the network layer.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// TimeoutError is returned when a dispatch exceeded its mode-specific budget
// and the in-flight request was cancelled.
type TimeoutError struct {
	Budget string
}

func (e TimeoutError) Error() string {
	if e.Budget == "" {
		return "request timed out"
	}
	return fmt.Sprintf("request timed out after %s", e.Budget)
}

// NetworkError wraps a transport-level failure (connection refused, DNS).
type NetworkError struct {
	Err error
}

func (e NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e NetworkError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx response with the detail message already extracted
// per the backend's {detail: string | {mensaje?, error?}} convention.
type HTTPError struct {
	StatusCode int
	Detail     string
}

func (e HTTPError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Detail)
}
