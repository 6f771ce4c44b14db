package domain

import "fmt"

// ConfigError reports an invalid pipeline parameter. Detected before any
// I/O happens; never retried.
type ConfigError struct {
	Param  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Reason)
}

// ServiceError reports a failed call to an external service (embedding,
// chat completion, vector store), tagged with the pipeline stage that made
// the call. Retry policy lives at the service-client boundary, not here.
type ServiceError struct {
	Stage string
	Err   error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}
