package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"filefield/internal/bridge"
	"filefield/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveAddr string

// serveCmd exposes the local host over HTTP
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve existence checks and the file dialog over HTTP",
	Long: `Exposes this machine's capabilities to another filefield (or any client)
via a small JSON bridge:

  POST /api/file_exists  {"file": "...", "type": "..."} -> {"exists": true}
  POST /api/get_file     {}                             -> {"path": "..."}

Point a client at it with host.url or FILEFIELD_HOST_URL.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default host.listen_addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := serveAddr
	if addr == "" {
		addr = cfg.Host.ListenAddr
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logging.Get(logging.CategoryBridge).Info("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "serving on http://%s\n", ln.Addr())
	return serveBridge(ctx, ln, bridge.NewServer(newLocalHost(cfg, nativePicker(cfg))))
}

// serveBridge serves handler on ln until ctx is done, then shuts down.
func serveBridge(ctx context.Context, ln net.Listener, handler http.Handler) error {
	log := logging.Get(logging.CategoryBridge)
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("bridge listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("bridge stopped")
	return nil
}
