// Package logger configures the global zerolog logger and carries the
// per-request id through contexts.
package logger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// Millisecond timestamps line up with the epoch-millis the wire protocol
// and game logs use.
const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// Init configures the global logger from the environment: LOG_LEVEL picks
// the level (default info), LOG_FILE adds a file sink next to the console,
// and DEV=true turns on colored output.
func Init() {
	zerolog.TimeFieldFormat = timeFormat
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return fmt.Sprintf("%-30s", fmt.Sprintf("%s:%d", filepath.Base(file), line))
	}

	level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	dev := os.Getenv("DEV") == "true"
	var out io.Writer = zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: timeFormat,
		NoColor:    !dev,
	}
	if path := os.Getenv("LOG_FILE"); path != "" {
		if f, ferr := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); ferr == nil {
			out = io.MultiWriter(out, f)
		}
	}

	log.Logger = log.Output(out).With().Caller().Logger()
	log.Info().Str("level", level.String()).Bool("dev", dev).Msg("Logger initialized")
}

// Get returns the global logger.
func Get() zerolog.Logger {
	return log.Logger
}

// NewRequestID returns a random 8-character hex id. IDs only need to tell
// concurrent requests apart in the logs, not be globally unique.
func NewRequestID() string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("t%07d", time.Now().UnixNano()%10000000)
	}
	return hex.EncodeToString(b[:])
}

// WithRequestID stores the request id on the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the stored request id, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// ForRequest returns the global logger tagged with the request id from the
// context, when one is present.
func ForRequest(ctx context.Context) zerolog.Logger {
	id := RequestIDFromContext(ctx)
	if id == "" {
		return log.Logger
	}
	return log.Logger.With().Str("requestId", id).Logger()
}
