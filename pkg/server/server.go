package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	paymenthandler "github.com/fortuna-labs/report-funnel/pkg/handlers/payment"
	reporthandler "github.com/fortuna-labs/report-funnel/pkg/handlers/report"
	sessionhandler "github.com/fortuna-labs/report-funnel/pkg/handlers/session"
	funnelmiddleware "github.com/fortuna-labs/report-funnel/pkg/server/middleware"
	"github.com/fortuna-labs/report-funnel/pkg/services/generation"
	"github.com/fortuna-labs/report-funnel/pkg/services/payment"
	"github.com/fortuna-labs/report-funnel/pkg/services/report"
	"github.com/fortuna-labs/report-funnel/pkg/services/session"
)

type WebAPI struct {
	router *chi.Mux
	logger *zerolog.Logger
	server *http.Server
}

type Dependencies struct {
	Sessions     session.Service
	Gate         payment.Gate
	Reports      report.Service
	Orchestrator generation.Orchestrator
	Logger       zerolog.Logger
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

func ConfigureRouter(config Config) *chi.Mux {
	deps := config.Dependencies

	sessHandler := sessionhandler.NewHandler(deps.Sessions)
	payHandler := paymenthandler.NewHandler(deps.Gate)
	repHandler := reporthandler.NewHandler(deps.Sessions, deps.Reports, deps.Orchestrator)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(funnelmiddleware.Logger(&deps.Logger))
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/session", sessHandler.CreateSession)
		r.Post("/session/verify", sessHandler.VerifySession)
		r.Post("/payment/intent", payHandler.CreateIntent)
		r.Post("/payment/verify", payHandler.VerifyPayment)
		r.Post("/report/generate", repHandler.Generate)
		r.Get("/report/status", repHandler.Status)
		r.Get("/report", repHandler.GetReport)
		r.Get("/report/basic", repHandler.GetBasic)
	})

	return router
}

func NewWebAPI(config Config) *WebAPI {
	router := ConfigureRouter(config)
	logger := config.Dependencies.Logger

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: router,
		},
	}
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
