package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/kendall-kelly/printshop-api/metrics"
	"github.com/kendall-kelly/printshop-api/router"
	"github.com/kendall-kelly/printshop-api/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var (
	servePort    string
	overdueSweep time.Duration

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
)

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (overrides PORT)")
	serveCmd.Flags().DurationVar(&overdueSweep, "overdue-sweep", time.Hour, "how often past-due invoices are marked Overdue; 0 disables")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if _, err := services.InitArtworkStorage(ctx, a.cfg); err != nil {
		return err
	}

	m := metrics.New(a.cfg.MetricsNamespace)
	metrics.SetDefault(m)

	port := a.cfg.Port
	if servePort != "" {
		port = servePort
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router.SetupRouter(a.cfg, m),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if overdueSweep > 0 {
		go sweepOverdue(ctx, overdueSweep)
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// sweepOverdue periodically marks past-due Sent invoices Overdue until ctx ends
func sweepOverdue(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := newInvoiceService().MarkPastDueOverdue(ctx); err != nil {
				zap.L().Error("overdue sweep failed", zap.Error(err))
			}
		}
	}
}
