package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flowengine/application/dispatch"
	"flowengine/application/ports"
	"flowengine/application/queries/bus"
	"flowengine/application/queries/handlers"
	"flowengine/domain/services"
	"flowengine/infrastructure/observability"
)

type options struct {
	logLevel string
	logger   *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "flowctl",
		Short: "Run flowengine analyses from the command line",
		Long: `flowctl runs request envelopes through the analysis engine in-process,
without a server. Responses are printed as JSON.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			logger, _, err := observability.NewLogger(false, opts.logLevel)
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")

	rootCmd.AddCommand(
		newRunCmd(opts),
		newOperationsCmd(),
		newTokenCmd(),
	)
	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newDispatcher builds the engine without any transport or event publishing
func newDispatcher(logger *zap.Logger) (*dispatch.Dispatcher, error) {
	clock := ports.SystemClock{}
	b := bus.NewQueryBus()
	if err := handlers.RegisterAll(b,
		handlers.NewAnalyzeComplexityHandler(services.NewComplexityAnalyzer(), logger),
		handlers.NewAnalyzeProgressHandler(clock, logger),
		handlers.NewDetectBottlenecksHandler(),
		handlers.NewFindCriticalPathHandler(),
	); err != nil {
		return nil, err
	}
	return dispatch.NewDispatcher(b, nil, clock, logger), nil
}
