package orchestrator

import "fmt"

// ConfigurationError is fatal before any invocation runs (spec §7,
// class 1): bad flags, malformed scenario file, unknown scenario name.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

func newConfigurationError(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// ScenarioFailedError is raised once, at the very end of the run, when
// one or more ScenarioExecutions failed (spec §4.8 step 5). It chains
// the first failure encountered, in execution order.
type ScenarioFailedError struct {
	ScenarioName string
	Version      string
	First        error
}

func (e *ScenarioFailedError) Error() string {
	return fmt.Sprintf("scenario '%s' (%s) failed: %v", e.ScenarioName, e.Version, e.First)
}

func (e *ScenarioFailedError) Unwrap() error { return e.First }
