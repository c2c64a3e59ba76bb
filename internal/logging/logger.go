// Package logging defines the structured-logging interface used by the
// logbook packages and its log/slog implementation.
package logging

import "context"

// Logger is a context-aware, structured logger. Arguments after msg are
// alternating keys and values:
//
//	log.Warn(ctx, "entry skipped", "entry_id", id, "hint", hint)
//
// Never pass passphrases, derived keys or decrypted payloads. The JSON
// implementation masks a few well-known key names as a last line only.
type Logger interface {
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that adds args to every record.
	With(args ...any) Logger
}
