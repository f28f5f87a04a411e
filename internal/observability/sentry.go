package observability

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/agrisense/agrisense-go/internal/conf"
	"github.com/agrisense/agrisense-go/internal/logger"
)

// flushTimeout bounds the final event drain on shutdown.
const flushTimeout = 2 * time.Second

// InitSentry enables error reporting when a DSN is configured and returns a
// flush function to call on shutdown. Without a DSN it is a no-op and
// CaptureError calls are silently dropped.
func InitSentry(cfg conf.SentrySettings, log logger.Logger) (func(), error) {
	if cfg.DSN == "" {
		return func() {}, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		EnableTracing:    cfg.TracesSampleRate > 0,
		TracesSampleRate: cfg.TracesSampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sentry: %w", err)
	}

	log.Info("sentry error reporting enabled",
		logger.String("environment", cfg.Environment))
	return func() { sentry.Flush(flushTimeout) }, nil
}

// CaptureError reports err to Sentry with the given tags. Safe to call when
// reporting was never initialized.
func CaptureError(err error, tags map[string]string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for key, value := range tags {
			scope.SetTag(key, value)
		}
		sentry.CaptureException(err)
	})
}
