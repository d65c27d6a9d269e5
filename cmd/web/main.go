package main

import (
	"fmt"
	"net"
	"os"
	"os/user"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fortuna-labs/report-funnel/pkg/gateway"
	"github.com/fortuna-labs/report-funnel/pkg/generator"
	"github.com/fortuna-labs/report-funnel/pkg/server"
	"github.com/fortuna-labs/report-funnel/pkg/services/config"
	"github.com/fortuna-labs/report-funnel/pkg/services/generation"
	"github.com/fortuna-labs/report-funnel/pkg/services/payment"
	"github.com/fortuna-labs/report-funnel/pkg/services/report"
	"github.com/fortuna-labs/report-funnel/pkg/services/session"
	"github.com/fortuna-labs/report-funnel/pkg/store/duckdb"
	duckdbpayment "github.com/fortuna-labs/report-funnel/pkg/store/duckdb/payment"
	duckdbreport "github.com/fortuna-labs/report-funnel/pkg/store/duckdb/report"
	duckdbsession "github.com/fortuna-labs/report-funnel/pkg/store/duckdb/session"
)

var (
	credentialsPath string
	configPath      string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the report funnel web server",
		RunE:  runServer,
	}

	usr, _ := user.Current()
	defaultCredentials := fmt.Sprintf("%s/.funnelcfg", usr.HomeDir)

	rootCmd.Flags().StringVarP(&credentialsPath, "credentials", "c", defaultCredentials,
		"Path to the collaborator credentials file (default is $HOME/.funnelcfg)")
	rootCmd.Flags().StringVar(&configPath, "config", "funnel.yaml",
		"Path to the server config file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	registry, err := config.NewRegistry(credentialsPath)
	if err != nil {
		return fmt.Errorf("failed to create config registry: %w", err)
	}

	serverCfg, err := config.LoadServer(configPath)
	if err != nil {
		return fmt.Errorf("failed to load server config: %w", err)
	}

	gatewayEndpoint, err := registry.GetEndpoint(ctx, "gateway")
	if err != nil {
		return fmt.Errorf("failed to resolve gateway endpoint: %w", err)
	}
	generatorEndpoint, err := registry.GetEndpoint(ctx, "generator")
	if err != nil {
		return fmt.Errorf("failed to resolve generator endpoint: %w", err)
	}

	db, err := duckdb.NewDB(duckdb.Settings{
		DbPath: serverCfg.DBPath,
	})
	if err != nil {
		return fmt.Errorf("failed to create DuckDB instance: %w", err)
	}

	sessionStore, err := duckdbsession.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create session store: %w", err)
	}
	paymentStore, err := duckdbpayment.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create payment store: %w", err)
	}
	reportStore, err := duckdbreport.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create report store: %w", err)
	}

	sessions := session.NewService(sessionStore)
	reports := report.NewService(reportStore, paymentStore)
	gate := payment.NewGate(sessions, paymentStore, reportStore, gateway.NewClient(*gatewayEndpoint))

	orchestrator := generation.NewOrchestrator(
		generator.NewClient(*generatorEndpoint),
		reports,
		paymentStore,
		generation.RunnerConfig{
			PollInterval: serverCfg.PollInterval(),
			MaxDuration:  serverCfg.MaxPollDuration(),
			ProgressRate: serverCfg.ProgressRate,
		},
		logger,
	)
	defer orchestrator.Shutdown()

	profiles, _ := registry.GetProfiles(ctx)
	logger.Info().Msgf("Credentials found at `%s` successfully loaded.", credentialsPath)
	for _, profile := range profiles {
		logger.Info().Msgf("Collaborator profile: `%s`", profile)
	}

	host := os.Getenv("SERVER_HOST")
	port := os.Getenv("SERVER_PORT")

	if host == "" || port == "" {
		logger.Error().Msgf("Missing server configuration from .env file")
		os.Exit(1)
	}

	api := server.NewWebAPI(server.Config{
		Addr:            net.JoinHostPort(host, port),
		ShutdownTimeout: 10 * time.Second,
		Dependencies: server.Dependencies{
			Sessions:     sessions,
			Gate:         gate,
			Reports:      reports,
			Orchestrator: orchestrator,
			Logger:       logger,
		},
	})

	return api.Start()
}
