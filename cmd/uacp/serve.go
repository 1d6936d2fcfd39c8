package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/uacp-protocol/uacp-go/pkg/config"
	"github.com/uacp-protocol/uacp-go/pkg/transport"
	"github.com/uacp-protocol/uacp-go/pkg/wire"
)

func serveCmd(configPath *string) *cobra.Command {
	var (
		scheme string
		port   int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run an echo server",
		Long: `Listen for connections, answer handshakes and echo every MSG chunk
back to its sender.

Examples:
  uacp serve
  uacp serve --scheme ws --port 8080
  uacp serve --config uacp.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if scheme != "" {
				cfg.Server.Scheme = scheme
			}
			if port > 0 {
				host, _, err := net.SplitHostPort(cfg.Server.Address)
				if err != nil {
					host = ""
				}
				cfg.Server.Address = net.JoinHostPort(host, strconv.Itoa(port))
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&scheme, "scheme", "", "Transport scheme: opc.tcp or ws (default from config)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	lg, err := setupLogging(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer lg.Close()
	logger := lg.logger

	lc := cfg.ListenerConfig()
	lc.Connection.Logger = logger
	lc.Connection.ProtocolLogger = lg.protocol
	lc.Connection.Handler = func(c *transport.Connection, ev transport.Event) {
		switch ev := ev.(type) {
		case transport.MessageReceived:
			if wire.MessageType(ev.Chunk[:3]) != wire.MessageMessage {
				return
			}
			if err := c.Write(ev.Chunk); err != nil {
				logger.Warn("echo failed", slog.String("conn_id", c.ID()), slog.Any("error", err))
			}
		case transport.ConnectionBreak:
			logger.Info("connection lost", slog.String("conn_id", c.ID()), slog.Any("error", ev.Err))
		}
	}
	lc.OnAccept = func(c *transport.Connection) {
		n, _ := c.Negotiated()
		logger.Info("connection accepted",
			slog.String("conn_id", c.ID()),
			slog.Uint64("receive_buffer", uint64(n.ReceiveBufferSize)),
			slog.Uint64("send_buffer", uint64(n.SendBufferSize)),
			slog.Uint64("max_message", uint64(n.MaxMessageSize)),
			slog.Uint64("max_chunks", uint64(n.MaxChunkCount)))
	}

	l, err := transport.NewServer(cfg.Server.Scheme, lc)
	if err != nil {
		return err
	}
	if err := l.Listen(ctx); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer l.Close()

	if lg.registry != nil {
		srv := startMetrics(cfg.Metrics, newRouter(lg, cfg.Metrics.Path, l), logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down", slog.Int("connections", l.ConnectionCount()))

	if err := l.Close(); err != nil {
		logger.Warn("listener close failed", slog.Any("error", err))
	}
	for _, c := range l.Connections() {
		_ = c.Close()
	}
	return nil
}

// newRouter serves the metrics registry at path and a health check that
// reports the listener state.
func newRouter(lg *logging, path string, l *transport.Listener) http.Handler {
	if path == "" {
		path = "/metrics"
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Method(http.MethodGet, path, promhttp.HandlerFor(lg.registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if !l.IsListening() {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		fmt.Fprintf(w, "%s connections=%d\n", l.State(), l.ConnectionCount())
	})
	return r
}

func startMetrics(mc config.MetricsConfig, handler http.Handler, logger *slog.Logger) *http.Server {
	srv := &http.Server{
		Addr:              mc.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("metrics listening", slog.String("addr", mc.Addr), slog.String("path", mc.Path))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", slog.Any("error", err))
		}
	}()
	return srv
}
