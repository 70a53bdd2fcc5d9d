package logging

import "log/slog"

// RedactedValue is what a secret is replaced with in log output.
const RedactedValue = "[REDACTED]"

// Redacted wraps a secret so it never reaches a log sink in clear text.
type Redacted string

// LogValue implements slog.LogValuer.
func (Redacted) LogValue() slog.Value {
	return slog.StringValue(RedactedValue)
}

// String keeps fmt verbs from printing the secret either.
func (Redacted) String() string {
	return RedactedValue
}
