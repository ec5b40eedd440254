// cmd/estrace sends traced requests to an elasticsearch cluster and inspects
// the tracing configuration.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	logging "github.com/ipfs/go-log/v2"
	"github.com/spf13/cobra"
)

var log = logging.Logger("estrace/cmd")

type rootOptions struct {
	configFile string
	debug      bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "estrace",
		Short: "Tracing for the go-elasticsearch clients",
		Long: `estrace traces the requests of the go-elasticsearch clients.

Spans are exported as configured by the OTEL_* environment variables, see
OTEL_TRACES_EXPORTER. Integration settings are read from the config file
(~/.estrace/config, or $ESTRACE_PATH/config) and the ESTRACE_* variables.
`,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.debug {
				logging.SetDebugLogging()
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Path to the configuration file")
	cmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "D", false, "Enable debug logging")

	cmd.AddCommand(newRequestCommand(opts))
	cmd.AddCommand(newVariantsCommand(opts))
	cmd.AddCommand(newConfigCommand(opts))
	cmd.AddCommand(newVersionCommand())
	return cmd
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}
