package terminal

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fortuna-labs/report-funnel/pkg/terminal/commands"
	"github.com/fortuna-labs/report-funnel/pkg/terminal/export"

	"github.com/fortuna-labs/report-funnel/pkg/services/report"
	"github.com/fortuna-labs/report-funnel/pkg/services/session"
)

// CLI is the operator console for the funnel: inspect sessions, dump
// reports, sanity-check score normalization.
type CLI struct {
	sessions session.Service
	reports  report.Service
	reporter *export.Reporter
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Sessions session.Service
	Reports  report.Service
	Output   io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		sessions: opts.Sessions,
		reports:  opts.Reports,
		reporter: export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "funnel",
		Short: "Report funnel admin tool",
	}

	cmd.AddCommand(commands.NewSessionsCmd(cli.sessions, cli.reporter))
	cmd.AddCommand(commands.NewReportCmd(cli.sessions, cli.reports, cli.reporter))
	cmd.AddCommand(commands.NewNormalizeCmd(cli.reporter))

	return cmd
}
