package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cimillas/shelfwise/internal/app"
	"github.com/cimillas/shelfwise/internal/clock"
	"github.com/cimillas/shelfwise/internal/storage/postgres"
	transporthttp "github.com/cimillas/shelfwise/internal/transport/http"
	"github.com/cimillas/shelfwise/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
)

const tracerName = "github.com/cimillas/shelfwise/internal/transport/http"

func newServeCmd(logger *log.Logger, cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Apply migrations and serve the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(logger, cfg)
		},
	}
	cmd.Flags().StringVar(&cfg.port, "port", envString(logger, "PORT", defaultPort, "default "+defaultPort), "listen port")
	cmd.Flags().StringVar(&cfg.corsOrigins, "cors-origins", envString(logger, "CORS_ORIGINS", defaultCORSOrigins, "default local origins"), "comma-separated allowed origins")
	return cmd
}

func serve(logger *log.Logger, cfg *config) error {
	pool, err := openPool(cfg.databaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	startupCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	if err := migrations.Apply(startupCtx, pool); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	clk := clock.NewSystem()
	history := app.NewHistoryService(postgres.NewHistoryRepository(pool), clk)

	router := transporthttp.NewRouter(transporthttp.Services{
		Members: postgres.NewMemberRepository(pool),
		Circulation: app.NewCirculationService(postgres.NewCirculationRepository(pool), clk,
			app.WithLoanPeriod(cfg.loanPeriodDays)),
		Loans: history,
		Reservations: app.NewReservationService(postgres.NewReservationRepository(pool), clk,
			app.WithHoldDuration(cfg.reservationHold())),
		ReservationHistory: history,
		DB:                 pool,
	})

	var handler http.Handler = router
	handler = transporthttp.CORS(parseCSV(cfg.corsOrigins), handler)
	handler = transporthttp.Recover(handler, logger)
	handler = transporthttp.Tracing(otel.Tracer(tracerName), handler)
	handler = transporthttp.RequestLogger(handler, logger)

	server := &http.Server{
		Addr:    ":" + cfg.port,
		Handler: handler,
	}

	logger.Printf("api listening on :%s (loan period %dd, reservation hold %dd)",
		cfg.port, cfg.loanPeriodDays, cfg.reservationHoldDays)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("server error: %v", err)
		}
	case <-stopCtx.Done():
		logger.Printf("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Printf("server shutdown error: %v", err)
	}
	logger.Printf("server stopped")
	return nil
}

func openPool(dsn string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return pool, nil
}
