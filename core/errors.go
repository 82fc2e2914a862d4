package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// UpstreamError indicates that an external dependency (auth backend, database,
// payment provider) returned a non-success or was unreachable. The wrapped
// cause stays server-side; only a generic message reaches the client.
type UpstreamError struct {
	Service string
	Err     error
}

func NewUpstreamError(service string, err error) error {
	return &UpstreamError{Service: service, Err: err}
}

func (err UpstreamError) Error() string {
	return err.Service + ": " + err.Err.Error()
}

func (err UpstreamError) Unwrap() error { return err.Err }

func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// ConfigError indicates a required external credential or config value is
// missing. Fatal at startup of the affected handler; the missing key's value
// is never included in the message.
type ConfigError struct {
	Key string
}

func NewConfigError(key string) error {
	return &ConfigError{Key: key}
}

func (err ConfigError) Error() string {
	return "missing required config: " + err.Key
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
