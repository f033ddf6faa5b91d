package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nidhogg/animseq/internal/api"
	"github.com/nidhogg/animseq/internal/sequence"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve simulations over HTTP",
	RunE:  serve,
}

func init() {
	addSimulationFlags(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address override (default from config, :3210)")
	rootCmd.AddCommand(serveCmd)
}

func serve(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := a.cfg.Server.Addr
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		addr = v
	}

	// Role picks use their own generator; the simulator's is owned by Run.
	handler := api.NewHandler(a.sim, a.roles, sequence.NewRand(a.seed+1), a.providers, a.publisher, a.logger)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		a.logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			a.logger.Error("server failed", zap.Error(err))
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
