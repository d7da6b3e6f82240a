package config

import "fmt"

// ValidationError reports a configuration value the server cannot start
// with. Field names the environment variable.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Message)
}
