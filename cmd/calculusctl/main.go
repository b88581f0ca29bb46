// Command calculusctl bundles runnable example programs for the session
// runtime, the Go-native analogue of original_source/examples/*.rs: a
// hand-assembled Def value per demo rather than a declarative syntax (spec
// §6 explicitly leaves "user-facing declarative syntax" out of scope).
// Grounded on linkerd-linkerd2's cobra-based CLI layout (root command,
// one file per subcommand, persistent flags threaded through a shared
// runtime struct).
package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/jabolina/calculus/definition"
)

// runtime carries the flags every subcommand consults: whether to run the
// program or just print its dataflow/FSM dotfile, the logger's debug level,
// and a Prometheus collector fresh for each invocation.
type runtime struct {
	logger  *definition.DefaultLogger
	stats   *definition.Collector
	dotOnly bool
	config  demoConfig
}

func newRuntime(debug bool, config demoConfig) *runtime {
	logger := definition.NewDefaultLogger()
	logger.ToggleDebug(debug)
	stats := definition.NewCollector(prometheus.NewRegistry())
	return &runtime{logger: logger, stats: stats, config: config}
}

func main() {
	var debug bool
	var dotOnly bool
	var configPath string

	root := &cobra.Command{
		Use:   "calculusctl",
		Short: "Run bundled example session-calculus programs",
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug-level logging")
	root.PersistentFlags().BoolVar(&dotOnly, "dot", false, "print the dataflow/FSM dotfile instead of running")
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML file overriding demo tick/count constants")

	rt := func() *runtime {
		cfg, err := loadConfig(configPath)
		if err != nil {
			cfg = demoConfig{TickMs: 20, SendCount: 40, TargetPerPID: 10}
		}
		r := newRuntime(debug, cfg)
		r.dotOnly = dotOnly
		return r
	}

	root.AddCommand(
		newReadmeCmd(rt),
		newSimplexCmd(rt),
		newSinkDisconnectCmd(rt),
		newSourceDisconnectCmd(rt),
		newFanOutCmd(rt),
		newProgramCmd(rt),
		newInteractiveCmd(rt),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
