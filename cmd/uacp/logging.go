package main

import (
	"errors"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/uacp-protocol/uacp-go/pkg/config"
	"github.com/uacp-protocol/uacp-go/pkg/log"
	"github.com/uacp-protocol/uacp-go/pkg/metrics"
)

// logging bundles the operational logger and the protocol event sinks.
type logging struct {
	logger   *slog.Logger
	protocol log.Logger
	registry *prometheus.Registry

	closers []func() error
}

// setupLogging builds the loggers selected by cfg. Operational logs go to w.
func setupLogging(cfg *config.Config, w io.Writer) (*logging, error) {
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	l := &logging{}
	var sinks []log.Logger

	opts := &slog.HandlerOptions{Level: level}
	switch cfg.Log.Format {
	case "json":
		l.logger = slog.New(slog.NewJSONHandler(w, opts))
		sinks = append(sinks, log.NewSlogAdapter(l.logger))
	case "zap":
		zl := newZap(level, w)
		l.closers = append(l.closers, func() error {
			_ = zl.Sync()
			return nil
		})
		l.logger = slog.New(slog.NewJSONHandler(w, opts))
		sinks = append(sinks, log.NewZapAdapter(zl))
	default:
		l.logger = slog.New(slog.NewTextHandler(w, opts))
		sinks = append(sinks, log.NewSlogAdapter(l.logger))
	}

	if cfg.Log.ProtocolLog != "" {
		fl, err := log.NewFileLogger(cfg.Log.ProtocolLog)
		if err != nil {
			return nil, err
		}
		l.closers = append(l.closers, fl.Close)
		sinks = append(sinks, fl)
	}

	if cfg.Metrics.Enabled {
		l.registry = prometheus.NewRegistry()
		l.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		sinks = append(sinks, metrics.New(l.registry))
	}

	l.protocol = log.NewMultiLogger(sinks...)
	return l, nil
}

func (l *logging) Close() error {
	var errs []error
	for i := len(l.closers) - 1; i >= 0; i-- {
		errs = append(errs, l.closers[i]())
	}
	return errors.Join(errs...)
}

func newZap(level slog.Level, w io.Writer) *zap.Logger {
	zapLevel := zapcore.InfoLevel
	switch {
	case level <= slog.LevelDebug:
		zapLevel = zapcore.DebugLevel
	case level >= slog.LevelError:
		zapLevel = zapcore.ErrorLevel
	case level >= slog.LevelWarn:
		zapLevel = zapcore.WarnLevel
	}

	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(enc, zapcore.AddSync(w), zapLevel)
	return zap.New(core)
}

// loadConfig returns the file config or the defaults.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
