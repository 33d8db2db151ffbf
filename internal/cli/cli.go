package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vk/gridbridge/internal/app"
)

// EnvLogLevel sets the log level when --log-level is not given.
const EnvLogLevel = "GRIDBRIDGE_LOG_LEVEL"

// options holds the flags shared by every subcommand.
type options struct {
	modules   string
	graph     string
	logLevel  string
	logFormat string
	output    string
	workers   int
}

// load validates the shared flags and loads the app. Logs go to stderr so
// stdout carries only the report.
func (o *options) load(cmd *cobra.Command) (*app.App, *app.Config, error) {
	level := o.logLevel
	if level == "" {
		level = os.Getenv(EnvLogLevel)
	}
	cfg, err := app.NewConfig(app.Config{
		ModulesPath: o.modules,
		GraphPath:   o.graph,
		LogFormat:   o.logFormat,
		LogLevel:    level,
		Output:      o.output,
		Workers:     o.workers,
	})
	if err != nil {
		return nil, nil, usageError(err)
	}
	a, err := app.New(cmd.Context(), cmd.ErrOrStderr(), cfg)
	if err != nil {
		return nil, nil, failure(err)
	}
	return a, cfg, nil
}

// Run executes the command line args. Every returned error is an *ExitError.
func Run(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(outW)
	root.SetErr(errW)
	if err := root.ExecuteContext(ctx); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr
		}
		return usageError(err)
	}
	return nil
}

// NewRootCommand builds the gridbridge command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "gridbridge",
		Short: "Generic type resolution and cable bridging for node graphs",
		Long: `gridbridge loads type, converter and node class manifests plus a graph
fixture, and answers the questions an editor asks while a cable is dragged:
can these ports be joined, and if not, which specialization or converter
would make the connection legal.

Ports are addressed as node.port, list ports as node.port[index].`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.modules, "modules", "m", "modules", "Path to the directory containing module manifests.")
	flags.StringVarP(&opts.graph, "graph", "g", "", "Path to the graph file or directory.")
	flags.StringVar(&opts.logLevel, "log-level", "", "Logging level: 'debug', 'info', 'warn', 'error'. Defaults to $"+EnvLogLevel+", then 'info'.")
	flags.StringVar(&opts.logFormat, "log-format", "text", "Log output format: 'text' or 'json'.")
	flags.StringVarP(&opts.output, "output", "o", "yaml", "Report format: 'yaml' or 'text'.")
	flags.IntVar(&opts.workers, "workers", 4, "Number of concurrent workers for eligibility scans.")

	root.AddCommand(
		newAnalyzeCommand(opts),
		newBridgeCommand(opts),
		newNetworkCommand(opts),
		newRevertCommand(opts),
		newEligibleCommand(opts),
	)
	return root
}

// connectionFlags registers the flags naming a candidate connection.
func connectionFlags(cmd *cobra.Command, req *app.Request) {
	cmd.Flags().StringVar(&req.From, "from", "", "Output port the cable starts at.")
	cmd.Flags().StringVar(&req.To, "to", "", "Input port the cable ends at.")
	cmd.Flags().StringVar(&req.Replacing, "replacing", "", "Name of the cable being re-dragged, if any.")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
}

func newAnalyzeCommand(opts *options) *cobra.Command {
	var req app.Request
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Classify a connection as direct, needing specialization, or needing bridging",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			rep, err := a.Analyze(cmd.Context(), req)
			if err != nil {
				return failure(err)
			}
			return render(cmd.OutOrStdout(), cfg.Output, rep)
		},
	}
	connectionFlags(cmd, &req)
	cmd.Flags().BoolVar(&req.EventOnly, "event-only", false, "Treat the cable as carrying events only.")
	return cmd
}

func newBridgeCommand(opts *options) *cobra.Command {
	var req app.Request
	var dragTo string
	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "List the ways to make a connection legal, best first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch dragTo {
			case "to":
				req.DragTo = true
			case "from":
				req.DragTo = false
			default:
				return usageError(fmt.Errorf("invalid drag-to %q: must be 'from' or 'to'", dragTo))
			}
			a, cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			rep, err := a.Bridge(cmd.Context(), req)
			if err != nil {
				return failure(err)
			}
			return render(cmd.OutOrStdout(), cfg.Output, rep)
		},
	}
	connectionFlags(cmd, &req)
	cmd.Flags().StringVar(&dragTo, "drag-to", "to", "Port the cable was dropped on: 'from' or 'to'.")
	return cmd
}

func newNetworkCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "network PORT",
		Short: "Show the generic network of a port and the types it can resolve to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			rep, err := a.Network(cmd.Context(), args[0])
			if err != nil {
				return failure(err)
			}
			return render(cmd.OutOrStdout(), cfg.Output, rep)
		},
	}
}

func newRevertCommand(opts *options) *cobra.Command {
	var replacing string
	cmd := &cobra.Command{
		Use:   "revert PORT",
		Short: "Check whether a specialized port can return to its generic type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			rep, err := a.Revert(cmd.Context(), args[0], replacing)
			if err != nil {
				return failure(err)
			}
			return render(cmd.OutOrStdout(), cfg.Output, rep)
		},
	}
	cmd.Flags().StringVar(&replacing, "replacing", "", "Name of the cable being re-dragged, if any.")
	return cmd
}

func newEligibleCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "eligible PORT",
		Short: "Show how every port facing PORT could be reached by a cable dragged from it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			rep, err := a.Eligible(cmd.Context(), args[0])
			if err != nil {
				return failure(err)
			}
			return render(cmd.OutOrStdout(), cfg.Output, rep)
		},
	}
}
