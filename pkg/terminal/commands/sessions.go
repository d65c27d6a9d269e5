package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fortuna-labs/report-funnel/pkg/services/session"
	"github.com/fortuna-labs/report-funnel/pkg/terminal/export"
)

type SessionsCmd struct {
	sessions session.Service
	reporter *export.Reporter
}

func NewSessionsCmd(sessions session.Service, reporter *export.Reporter) *cobra.Command {
	sc := &SessionsCmd{sessions: sessions, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List issued sessions",
		RunE:  sc.run,
	}
	return cmd
}

func (sc *SessionsCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	sessions, err := sc.sessions.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	return sc.reporter.Sessions(sessions)
}
