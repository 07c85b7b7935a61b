package loom

import (
	"fmt"
	"os"

	"github.com/TheBitDrifter/bark"
)

// Logger is the ambient logging seam spec.md §1 assumes is "available from
// the surrounding platform layer". Loom never imports a concrete logging
// library itself; applications inject an implementation (the loomlog
// subpackage adapts github.com/rs/zerolog for this) through RunnerConfig or
// World options.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
	With(kv ...any) Logger
}

// nopLogger is the default Logger when none is supplied: silent, so that a
// definition/world/runner can always be built without requiring a platform
// logging library to exist.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any)    {}
func (nopLogger) Info(string, ...any)     {}
func (nopLogger) Warn(string, ...any)     {}
func (nopLogger) Error(string, ...any)    {}
func (nopLogger) With(...any) Logger      { return nopLogger{} }

// Abort is the single exit point for spec.md §7's "programmer errors":
// invariant violations are never caught or recovered. It logs one
// diagnostic line identifying the failed invariant through logger (or
// stderr if logger is nil), then exits the process with a non-zero code.
func Abort(logger Logger, err error) {
	traced := bark.AddTrace(err)
	if logger != nil {
		logger.Error("loom: aborting on invariant violation", "err", traced)
	} else {
		fmt.Fprintln(os.Stderr, "loom: aborting on invariant violation:", traced)
	}
	os.Exit(1)
}
