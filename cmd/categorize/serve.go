package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Veraticus/spice-categorizer/internal/api"
	"github.com/Veraticus/spice-categorizer/internal/certs"
	"github.com/Veraticus/spice-categorizer/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the categorization HTTP API",
		RunE:  runServe,
	}

	cmd.Flags().String("addr", api.DefaultConfig().Addr, "Listen address")
	cmd.Flags().Int("max-batch", api.DefaultConfig().MaxBatch, "Largest accepted batch")
	cmd.Flags().Bool("tls", false, "Serve HTTPS with a self-signed certificate")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.max_batch", cmd.Flags().Lookup("max-batch"))
	_ = viper.BindPFlag("server.tls", cmd.Flags().Lookup("tls"))

	return cmd
}

func serverConfig(v *viper.Viper) api.Config {
	cfg := api.DefaultConfig()
	if addr := v.GetString("server.addr"); addr != "" {
		cfg.Addr = addr
	}
	if n := v.GetInt("server.max_batch"); n > 0 {
		cfg.MaxBatch = n
	}
	if d := v.GetDuration("server.read_timeout"); d > 0 {
		cfg.ReadTimeout = d
	}
	if d := v.GetDuration("server.write_timeout"); d > 0 {
		cfg.WriteTimeout = d
	}
	return cfg
}

// serverTLS loads or creates the self-signed certificate under server.cert_dir,
// covering the host part of addr.
func serverTLS(v *viper.Viper, addr string) (*tls.Config, error) {
	certDir := v.GetString("server.cert_dir")
	if certDir == "" {
		certDir = "$HOME/.config/categorize/certs"
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid listen address %q: %w", addr, err)
	}

	manager := certs.NewFileManager(config.ExpandPath(certDir), host)
	tlsConfig, err := manager.TLSConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to prepare TLS certificate: %w", err)
	}
	return tlsConfig, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := buildRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	cfg := serverConfig(viper.GetViper())
	if viper.GetBool("server.tls") {
		tlsConfig, err := serverTLS(viper.GetViper(), cfg.Addr)
		if err != nil {
			return err
		}
		cfg.TLS = tlsConfig
	}

	server := api.NewServer(cfg, rt.engine, version, rt.checks...)
	slog.Info("Starting API server", "addr", cfg.Addr, "tls", cfg.TLS != nil, "version", version)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	slog.Info("Server stopped")
	return nil
}
