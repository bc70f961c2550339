package core

// Logger is the application-wide logging contract.
// Implementations may inspect args for well-known types (errors, domain entities)
// to enrich reports; anything else is printed as-is.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
