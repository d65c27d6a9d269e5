package main

import (
	"fmt"
	"os"

	"github.com/fortuna-labs/report-funnel/pkg/services/report"
	"github.com/fortuna-labs/report-funnel/pkg/services/session"
	"github.com/fortuna-labs/report-funnel/pkg/store/duckdb"
	duckdbpayment "github.com/fortuna-labs/report-funnel/pkg/store/duckdb/payment"
	duckdbreport "github.com/fortuna-labs/report-funnel/pkg/store/duckdb/report"
	duckdbsession "github.com/fortuna-labs/report-funnel/pkg/store/duckdb/session"
	"github.com/fortuna-labs/report-funnel/pkg/terminal"
)

func main() {
	dbPath := os.Getenv("FUNNEL_DB")
	if dbPath == "" {
		dbPath = "report-funnel.db"
	}

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: dbPath})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	sessionStore, err := duckdbsession.NewStore(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	paymentStore, err := duckdbpayment.NewStore(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	reportStore, err := duckdbreport.NewStore(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	sessions := session.NewService(sessionStore)
	reports := report.NewService(reportStore, paymentStore)

	cli := terminal.NewCLI(terminal.Options{
		Sessions: sessions,
		Reports:  reports,
		Output:   os.Stdout,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
