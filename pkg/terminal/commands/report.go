package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fortuna-labs/report-funnel/pkg/services/report"
	"github.com/fortuna-labs/report-funnel/pkg/services/session"
	"github.com/fortuna-labs/report-funnel/pkg/terminal/export"
)

type ReportCmd struct {
	token    string
	sessions session.Service
	reports  report.Service
	reporter *export.Reporter
}

func NewReportCmd(sessions session.Service, reports report.Service, reporter *export.Reporter) *cobra.Command {
	rc := &ReportCmd{sessions: sessions, reports: reports, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the report for a session token",
		RunE:  rc.run,
	}

	cmd.Flags().StringVar(&rc.token, "token", "", "Session access token")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}

func (rc *ReportCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	sess, err := rc.sessions.Resolve(ctx, rc.token)
	if err != nil {
		return fmt.Errorf("failed to resolve session: %w", err)
	}

	rep, decision, err := rc.reports.View(ctx, sess)
	if err != nil {
		return fmt.Errorf("failed to load report: %w", err)
	}

	return rc.reporter.Report(rep, decision)
}
