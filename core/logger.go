package core

// Logger is the application-wide logging interface. Implementations may
// forward to an error-tracking service; args may carry structured values,
// errors or an identity.Identity for person tagging.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
