package loom

// RunnerFlag toggles optional Runner behavior, combined with bitwise OR.
type RunnerFlag uint8

const (
	// FlagSingleThreaded forces the Runner to execute the system graph
	// in-order on the calling goroutine instead of submitting it to the
	// work-stealing scheduler. Useful for deterministic debugging and for
	// environments where spawning goroutines is undesirable.
	FlagSingleThreaded RunnerFlag = 1 << iota
	// FlagDumpGraph logs the computed system dependency graph once, the
	// first time RunSync is called.
	FlagDumpGraph
	// FlagRecordStats enables per-tick timing through RunnerConfig.Metrics.
	FlagRecordStats
)

func (f RunnerFlag) has(flags RunnerFlag) bool { return flags&f != 0 }

// RunnerConfig configures a Runner (spec.md §4.7). WorkerCount of 0 selects
// runtime.GOMAXPROCS(0)-1 (floored at 1), the teacher's own convention for
// sizing a worker pool against the host.
type RunnerConfig struct {
	WorkerCount uint16
	Flags       RunnerFlag
	Metrics     *Metrics
	Logger      Logger
}
