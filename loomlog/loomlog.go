// Package loomlog adapts github.com/rs/zerolog to loom.Logger, the
// structured-logging shape applications actually want to hand the runtime
// (loom itself stays free of any concrete logging dependency).
package loomlog

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/quarrystack/loom"
)

// Logger wraps a zerolog.Logger to satisfy loom.Logger.
type Logger struct {
	z zerolog.Logger
}

// New builds a Logger writing human-readable output to os.Stderr, the
// teacher's own default console format.
func New() Logger {
	return Logger{z: zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()}
}

// Wrap adapts an already-configured zerolog.Logger.
func Wrap(z zerolog.Logger) Logger {
	return Logger{z: z}
}

func (l Logger) event(e *zerolog.Event, msg string, kv ...any) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, kv[i+1])
	}
	e.Msg(msg)
}

func (l Logger) Debug(msg string, kv ...any) { l.event(l.z.Debug(), msg, kv...) }
func (l Logger) Info(msg string, kv ...any)  { l.event(l.z.Info(), msg, kv...) }
func (l Logger) Warn(msg string, kv ...any)  { l.event(l.z.Warn(), msg, kv...) }
func (l Logger) Error(msg string, kv ...any) { l.event(l.z.Error(), msg, kv...) }

// With returns a Logger with kv (alternating key/value pairs) attached to
// every subsequent event, per loom.Logger's contract.
func (l Logger) With(kv ...any) loom.Logger {
	ctx := l.z.With()
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, kv[i+1])
	}
	return Logger{z: ctx.Logger()}
}

var _ loom.Logger = Logger{}
