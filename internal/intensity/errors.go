package intensity

import "fmt"

// ConfigError reports an input that is not a recognized array value. It is
// raised before any compute work starts.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return "intensity: " + e.Msg
}

// RangeError reports a degenerate scaling range or an element type that
// cannot be safely converted to the working float32 representation.
type RangeError struct {
	Msg string
}

func (e *RangeError) Error() string {
	return "intensity: " + e.Msg
}

// LaunchError reports a failure while dispatching or reading back the kernel
// pass. It is fatal: the kernel is deterministic, so retrying cannot help.
type LaunchError struct {
	Op  string
	Err error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("intensity: %s failed: %v", e.Op, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

func configErrorf(format string, args ...any) error {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

func rangeErrorf(format string, args ...any) error {
	return &RangeError{Msg: fmt.Sprintf(format, args...)}
}
