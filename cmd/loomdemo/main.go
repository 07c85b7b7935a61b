// Command loomdemo is a minimal runnable demonstration of loom: it builds a
// definition with a couple of components/views/systems, runs it for a fixed
// number of ticks, and optionally serves Prometheus metrics, the same shape
// the teacher's own cmd/ binaries use to exercise the library end to end.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quarrystack/loom"
	"github.com/quarrystack/loom/loomlog"
)

type position struct{ X, Y float64 }
type velocity struct{ DX, DY float64 }

func buildDefinition() (*loom.Definition, loom.Component[position], loom.Component[velocity], error) {
	builder := loom.NewBuilder()
	pos := loom.RegisterComponent[position](builder, "Position", nil, nil)
	vel := loom.RegisterComponent[velocity](builder, "Velocity", nil, nil)

	motion := builder.RegisterView("Motion", loom.AccessSpec{
		Access: []loom.ComponentAccess{
			{Component: pos.ID(), Mode: loom.AccessWrite},
			{Component: vel.ID(), Mode: loom.AccessRead},
		},
	})

	builder.RegisterSystem("Integrate", 0, 0, false, []loom.ViewID{motion}, func(w *loom.WorldHandle) {
		cur := w.View(motion)
		for cur.Next() {
			p := pos.Get(cur)
			v := vel.Get(cur)
			p.X += v.DX
			p.Y += v.DY
		}
	})

	def, err := builder.Finalize()
	return def, pos, vel, err
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("LOOM")
	v.AutomaticEnv()
	v.SetDefault("entities", 1000)
	v.SetDefault("ticks", 60)
	v.SetDefault("workers", 0)
	v.SetDefault("metrics-addr", "")

	cmd := &cobra.Command{
		Use:   "loomdemo",
		Short: "Run a small loom simulation for a fixed number of ticks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(v)
		},
	}
	flags := cmd.Flags()
	flags.Int("entities", v.GetInt("entities"), "number of entities to spawn")
	flags.Int("ticks", v.GetInt("ticks"), "number of ticks to run")
	flags.Uint16("workers", uint16(v.GetInt("workers")), "worker count (0 = auto)")
	flags.String("metrics-addr", v.GetString("metrics-addr"), "if set, serve Prometheus metrics on this address (e.g. :9090)")
	_ = v.BindPFlags(flags)

	return cmd
}

func run(v *viper.Viper) error {
	logger := loomlog.New()

	def, pos, vel, err := buildDefinition()
	if err != nil {
		return fmt.Errorf("loomdemo: building definition: %w", err)
	}

	world := loom.NewWorld(def, loom.WithLogger(logger))
	for i := 0; i < v.GetInt("entities"); i++ {
		if _, err := world.CreateEntity(
			pos.Value(position{X: 0, Y: 0}),
			vel.Value(velocity{DX: 1, DY: 0.5}),
		); err != nil {
			return fmt.Errorf("loomdemo: creating entity: %w", err)
		}
	}

	registry := prometheus.NewRegistry()
	metrics := loom.NewMetrics(registry)

	if addr := v.GetString("metrics-addr"); addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Error("loomdemo: metrics server exited", "err", err)
			}
		}()
		logger.Info("loomdemo: serving metrics", "addr", addr)
	}

	runner := loom.NewRunner(world, loom.RunnerConfig{
		WorkerCount: uint16(v.GetInt("workers")),
		Flags:       loom.FlagRecordStats,
		Metrics:     metrics,
		Logger:      logger,
	})

	ticks := v.GetInt("ticks")
	for i := 0; i < ticks; i++ {
		if err := runner.RunSync(); err != nil {
			return fmt.Errorf("loomdemo: tick %d: %w", i, err)
		}
		if world.ExitRequested() {
			break
		}
	}

	logger.Info("loomdemo: finished", "ticks", ticks, "entities", v.GetInt("entities"))
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
