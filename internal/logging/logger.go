package logging

// Logger is a small, framework-agnostic logging interface. Components take one
// in their constructor; audit results never depend on what it does.
type Logger interface {
	// Debug logs a debug-level message.
	Debug(msg string, fields ...Field)

	// Info logs an informational message.
	Info(msg string, fields ...Field)

	// Warn logs a warning.
	Warn(msg string, fields ...Field)

	// Error logs an error.
	Error(msg string, fields ...Field)

	// With returns a child logger with persistent fields.
	With(fields ...Field) Logger
}

// Field is a key/value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// F is shorthand for building a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Nop discards everything. Useful for library callers that do not care.
type Nop struct{}

func (Nop) Debug(string, ...Field) {}
func (Nop) Info(string, ...Field) {}
func (Nop) Warn(string, ...Field) {}
func (Nop) Error(string, ...Field) {}
func (n Nop) With(...Field) Logger { return n }
