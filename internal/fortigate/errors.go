package fortigate

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDeviceNotFound matches any NotFoundError via errors.Is.
	ErrDeviceNotFound = errors.New("device not found")
	// ErrDeviceExists matches any DuplicateError via errors.Is.
	ErrDeviceExists = errors.New("device already exists")
)

// ConfigError reports an invalid or incomplete device configuration. It is
// fatal at load or add time and never retried.
type ConfigError struct {
	DeviceID string
	Reason   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("device '%s': %s", e.DeviceID, e.Reason)
}

// DuplicateError reports an Add with an identifier that is already
// registered. The registry is left unchanged.
type DuplicateError struct {
	DeviceID string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("device '%s' already exists", e.DeviceID)
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDeviceExists
}

// NotFoundError reports an operation against an unknown device identifier.
// Available carries the currently registered ids for diagnostics.
type NotFoundError struct {
	DeviceID  string
	Available []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("device '%s' not found, available devices: [%s]",
		e.DeviceID, strings.Join(e.Available, ", "))
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrDeviceNotFound
}

// TransportError reports a network-level failure (DNS, connect, timeout,
// TLS) before any HTTP response was received. It carries no status code.
type TransportError struct {
	DeviceID string
	Method   string
	Path     string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("Network error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteError reports an HTTP response with status >= 400. The status code
// and a snippet of the response body are preserved for the caller; friendly
// wording for common codes is the presentation layer's job.
type RemoteError struct {
	DeviceID   string
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API request failed: %d", e.StatusCode)
	}
	return fmt.Sprintf("API request failed: %d: %s", e.StatusCode, e.Body)
}
