// Package logging owns the recorder's slog stack: console plus session
// log file, with an optional OTel bridge fanned in.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

const otelBridgeName = "fleet-recorder"

// SlogManager holds the active logger and the OTel log provider it may
// need to flush on shutdown.
type SlogManager struct {
	logger      *slog.Logger
	logProvider *sdklog.LoggerProvider
}

// NewSlogManager creates an unconfigured manager; Logger falls back to
// slog.Default until Setup runs.
func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// parseLevel maps a config level string to a slog.Level, defaulting to
// info on anything unrecognized.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// textHandlerOpts renders timestamps as RFC3339 UTC.
func textHandlerOpts(lvl slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}
}

// Setup (re)builds the logger: stdout always, the given file when
// non-nil, and the OTel bridge when a provider is supplied. Safe to
// call again once the session log file exists.
func (m *SlogManager) Setup(file io.Writer, level string, provider *sdklog.LoggerProvider) {
	opts := textHandlerOpts(parseLevel(level))
	m.logProvider = provider

	var handlers []slog.Handler
	handlers = append(handlers, slog.NewTextHandler(os.Stdout, opts))
	if file != nil {
		handlers = append(handlers, slog.NewTextHandler(file, opts))
	}
	if provider != nil {
		handlers = append(handlers,
			otelslog.NewHandler(otelBridgeName, otelslog.WithLoggerProvider(provider)))
	}

	m.logger = slog.New(NewMultiHandler(handlers...))
	m.logger.Info("Logging initialized", "level", level)
}

// Logger returns the configured logger, or slog.Default before Setup.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Flush forces the OTel log provider to export, when one is attached.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.logProvider == nil {
		return nil
	}
	return m.logProvider.ForceFlush(ctx)
}
